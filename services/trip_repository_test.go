package services_test

import (
	"context"
	"testing"
	"time"

	"wewearapi/dbhelper"
	"wewearapi/laundry"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func fakeTrip(t *testing.T, repo *services.TripRepository, owner *models.UserAccount) models.Trip {
	start, _ := time.Parse(models.TripDateLayout, "2025-07-01")
	trip := models.Trip{
		OwnerID:     owner.ID,
		Destination: "Lisbon",
		StartDate:   datatypes.Date(start),
		EndDate:     datatypes.Date(start.AddDate(0, 0, 3)),
		Status:      models.TripPlanned,
	}
	require.NoError(t, repo.CreateTrip(context.Background(), &trip))
	return trip
}

func linkedLine(item *models.ClothingItem, packed bool) models.PackingListItem {
	id := item.ID
	return models.PackingListItem{Category: "tops", ItemName: item.Name, Quantity: 1, ClothingItemID: &id, IsPacked: packed}
}

func TestCompleteTripDirtiesPackedItemsOnly(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()
	repo := services.NewTripRepository(db)

	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	trip := fakeTrip(t, repo, user)
	_, err := repo.SavePackingList(ctx, &models.PackingList{
		TripID:  trip.ID,
		OwnerID: user.ID,
		Items: []models.PackingListItem{
			linkedLine(wardrobe[0], true),
			linkedLine(wardrobe[1], false),
			linkedLine(wardrobe[2], true),
			{Category: "essentials", ItemName: "Socks", Quantity: 4, IsPacked: true},
		},
	})
	require.NoError(t, err)

	done, transitions, err := repo.CompleteTrip(ctx, user.ID, trip.ID, laundry.DefaultThresholds(), time.Now())
	require.NoError(t, err)
	assert.True(t, done.Completed())
	assert.NotNil(t, done.CompletedAt)
	require.Len(t, transitions, 2)
	assert.Equal(t, wardrobe[0].ID, transitions[0].ItemID)
	assert.Equal(t, wardrobe[2].ID, transitions[1].ItemID)

	var items []models.ClothingItem
	require.NoError(t, db.Order("id").Find(&items, "owner_id = ?", user.ID).Error)
	for _, item := range items {
		packed := item.ID == wardrobe[0].ID || item.ID == wardrobe[2].ID
		assert.Equal(t, !packed, item.IsClean, item.Name)
		if packed {
			assert.Equal(t, 1, item.WearCountSinceWash, item.Name)
			assert.Equal(t, models.LaundryDirty, item.LaundryState, item.Name)
		} else {
			assert.Equal(t, 0, item.WearCountSinceWash, item.Name)
		}
	}

	_, _, err = repo.CompleteTrip(ctx, user.ID, trip.ID, laundry.DefaultThresholds(), time.Now())
	assert.ErrorIs(t, err, services.ErrTripCompleted)
}

func TestCompleteTripNeedsPackingList(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	repo := services.NewTripRepository(db)
	user := test.FakeUser(db, "")
	trip := fakeTrip(t, repo, user)

	_, _, err := repo.CompleteTrip(context.Background(), user.ID, trip.ID, laundry.DefaultThresholds(), time.Now())
	assert.ErrorIs(t, err, services.ErrNoPackingList)
}

func TestTripsAreScopedToOwner(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()
	repo := services.NewTripRepository(db)
	owner := test.FakeUser(db, "")
	other := test.FakeUser(db, "other@example.com")
	trip := fakeTrip(t, repo, owner)

	_, err := repo.GetTrip(ctx, other.ID, trip.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTrip(ctx, other.ID, trip.ID), services.ErrNotFound)
	_, _, err = repo.CompleteTrip(ctx, other.ID, trip.ID, laundry.DefaultThresholds(), time.Now())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestSavePackingListKeepsExisting(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()
	repo := services.NewTripRepository(db)
	user := test.FakeUser(db, "")
	trip := fakeTrip(t, repo, user)

	first, err := repo.SavePackingList(ctx, &models.PackingList{TripID: trip.ID, OwnerID: user.ID, Reasoning: "first",
		Items: []models.PackingListItem{{Category: "essentials", ItemName: "Socks", Quantity: 4}}})
	require.NoError(t, err)
	second, err := repo.SavePackingList(ctx, &models.PackingList{TripID: trip.ID, OwnerID: user.ID, Reasoning: "second"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first", second.Reasoning)
	require.Len(t, second.Items, 1)
	assert.Equal(t, user.ID, second.Items[0].OwnerID)
}
