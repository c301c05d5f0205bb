package services

import (
	"context"
	"time"

	"wewearapi/laundry"
	"wewearapi/models"

	"gorm.io/gorm"
)

// TripRepository persists trips with their packing lists. Completing a trip is
// the only path here that touches wear state.
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func withPackingList(tx *gorm.DB) *gorm.DB {
	return tx.Preload("PackingList").Preload("PackingList.Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

func (r *TripRepository) CreateTrip(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Omit("PackingList").Create(trip).Error
}

func (r *TripRepository) ListTrips(ctx context.Context, ownerID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := withPackingList(r.db.WithContext(ctx)).Where("owner_id = ?", ownerID).Order("start_date DESC, id DESC").Find(&trips).Error
	return trips, err
}

func (r *TripRepository) GetTrip(ctx context.Context, ownerID, tripID uint) (models.Trip, error) {
	var trip models.Trip
	err := withPackingList(r.db.WithContext(ctx)).Where("owner_id = ?", ownerID).First(&trip, tripID).Error
	return trip, notFound(err, "trip", tripID)
}

func deletePackingList(tx *gorm.DB, tripID uint) error {
	lists := tx.Model(&models.PackingList{}).Select("id").Where("trip_id = ?", tripID)
	if err := tx.Where("packing_list_id IN (?)", lists).Delete(&models.PackingListItem{}).Error; err != nil {
		return err
	}
	return tx.Where("trip_id = ?", tripID).Delete(&models.PackingList{}).Error
}

// UpdateTrip applies mutate to a planned trip. When mutate reports that the
// destination or dates changed, the packing list is dropped so it is regenerated.
func (r *TripRepository) UpdateTrip(ctx context.Context, ownerID, tripID uint, mutate func(*models.Trip) (bool, error)) (models.Trip, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := forUpdate(tx).Where("owner_id = ?", ownerID).First(&trip, tripID).Error; err != nil {
			return notFound(err, "trip", tripID)
		}
		if trip.Completed() {
			return ErrTripCompleted
		}
		invalidate, err := mutate(&trip)
		if err != nil {
			return err
		}
		if invalidate {
			if err := deletePackingList(tx, trip.ID); err != nil {
				return err
			}
		}
		return tx.Omit("Owner", "PackingList").Save(&trip).Error
	})
	if err != nil {
		return models.Trip{}, err
	}
	return r.GetTrip(ctx, ownerID, tripID)
}

func (r *TripRepository) DeleteTrip(ctx context.Context, ownerID, tripID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.Where("owner_id = ?", ownerID).First(&trip, tripID).Error; err != nil {
			return notFound(err, "trip", tripID)
		}
		if err := deletePackingList(tx, trip.ID); err != nil {
			return err
		}
		return tx.Delete(&trip).Error
	})
}

// SavePackingList stores list for its trip unless one already exists, in which
// case the stored list wins.
func (r *TripRepository) SavePackingList(ctx context.Context, list *models.PackingList) (models.PackingList, error) {
	var saved models.PackingList
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			Where("trip_id = ?", list.TripID).Limit(1).Find(&saved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		for i := range list.Items {
			list.Items[i].OwnerID = list.OwnerID
		}
		if err := tx.Create(list).Error; err != nil {
			return err
		}
		saved = *list
		return nil
	})
	return saved, err
}

// TogglePackedItem flips the packed flag of a line on a trip that is not completed yet.
func (r *TripRepository) TogglePackedItem(ctx context.Context, ownerID, itemID uint) (models.PackingListItem, error) {
	var item models.PackingListItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("owner_id = ?", ownerID).First(&item, itemID).Error; err != nil {
			return notFound(err, "packing list item", itemID)
		}
		var trip models.Trip
		trips := tx.Model(&models.PackingList{}).Select("trip_id").Where("id = ?", item.PackingListID)
		if err := tx.Where("id IN (?)", trips).First(&trip).Error; err != nil {
			return notFound(err, "trip for packing list", item.PackingListID)
		}
		if trip.Completed() {
			return ErrTripCompleted
		}
		item.IsPacked = !item.IsPacked
		return tx.Model(&item).Update("is_packed", item.IsPacked).Error
	})
	return item, err
}

// CompleteTrip closes the trip and marks every packed wardrobe item dirty,
// counting one wear each, in a single transaction. Packed items deleted from
// the wardrobe since are skipped.
func (r *TripRepository) CompleteTrip(ctx context.Context, ownerID, tripID uint, th laundry.Thresholds, now time.Time) (models.Trip, []laundry.Transition, error) {
	var transitions []laundry.Transition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := withPackingList(forUpdate(tx)).Where("owner_id = ?", ownerID).First(&trip, tripID).Error; err != nil {
			return notFound(err, "trip", tripID)
		}
		if trip.Completed() {
			return ErrTripCompleted
		}
		if trip.PackingList == nil {
			return ErrNoPackingList
		}

		ids := uniqueIDs(trip.PackingList.PackedClothingIDs())
		if len(ids) > 0 {
			var items []models.ClothingItem
			if err := forUpdate(tx).Where("owner_id = ? AND id IN ?", ownerID, ids).Order("id").Find(&items).Error; err != nil {
				return err
			}
			for i := range items {
				transitions = append(transitions, laundry.MarkDirty(&items[i], th, now))
				if err := tx.Save(&items[i]).Error; err != nil {
					return err
				}
			}
		}

		completed := now
		return tx.Model(&trip).Updates(map[string]interface{}{
			"status":       models.TripCompleted,
			"completed_at": &completed,
		}).Error
	})
	if err != nil {
		return models.Trip{}, nil, err
	}
	trip, err := r.GetTrip(ctx, ownerID, tripID)
	return trip, transitions, err
}
