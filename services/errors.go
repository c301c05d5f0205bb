package services

import "errors"

var (
	// ErrNotFound is returned when an id does not exist or belongs to another user.
	ErrNotFound     = errors.New("not found")
	ErrNoOwnedItems = errors.New("outfit needs at least one of your items")

	ErrTripCompleted = errors.New("trip is already completed")
	ErrNoPackingList = errors.New("packing list not found for this trip")
)
