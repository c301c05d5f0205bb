package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wewearapi/laundry"
	"wewearapi/models"
	"wewearapi/style"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxOutfitsPerPage = 50

// WardrobeRepository owns every write to item wear state. Each method runs in
// its own transaction.
type WardrobeRepository struct {
	db *gorm.DB
}

func NewWardrobeRepository(db *gorm.DB) *WardrobeRepository {
	return &WardrobeRepository{db: db}
}

func (r *WardrobeRepository) DB() *gorm.DB {
	return r.db
}

// forUpdate locks the selected rows where the dialect supports it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

func (r *WardrobeRepository) ListItems(ctx context.Context, ownerID uint) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&items).Error
	return items, err
}

func (r *WardrobeRepository) ListItemsNeedingWash(ctx context.Context, ownerID uint) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND (needs_washing = ? OR is_clean = ?)", ownerID, true, false).
		Order("id").Find(&items).Error
	return items, err
}

func (r *WardrobeRepository) GetItem(ctx context.Context, ownerID, itemID uint) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, itemID).First(&item).Error
	return item, notFound(err, "item", itemID)
}

// ItemsByIDs returns the owned items among ids. Missing ids are silently skipped.
func (r *WardrobeRepository) ItemsByIDs(ctx context.Context, ownerID uint, ids []uint) ([]models.ClothingItem, error) {
	if len(ids) == 0 {
		return []models.ClothingItem{}, nil
	}
	var items []models.ClothingItem
	err := r.db.WithContext(ctx).Where("owner_id = ? AND id IN ?", ownerID, uniqueIDs(ids)).Find(&items).Error
	return items, err
}

func (r *WardrobeRepository) CreateItem(ctx context.Context, item *models.ClothingItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *WardrobeRepository) SaveItem(ctx context.Context, item *models.ClothingItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *WardrobeRepository) DeleteItem(ctx context.Context, ownerID, itemID uint) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, itemID).Delete(&models.ClothingItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// UpdateItem loads the item under lock, applies mutate and saves it.
func (r *WardrobeRepository) UpdateItem(ctx context.Context, ownerID, itemID uint, mutate func(*models.ClothingItem) error) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("owner_id = ? AND id = ?", ownerID, itemID).First(&item).Error; err != nil {
			return notFound(err, "item", itemID)
		}
		if err := mutate(&item); err != nil {
			return err
		}
		return tx.Save(&item).Error
	})
	return item, err
}

func (r *WardrobeRepository) ToggleItem(ctx context.Context, ownerID, itemID uint, now time.Time) (models.ClothingItem, error) {
	return r.UpdateItem(ctx, ownerID, itemID, func(item *models.ClothingItem) error {
		laundry.Toggle(item, now)
		return nil
	})
}

// lockOwned loads exactly the given ids or fails with ErrNotFound.
func lockOwned(tx *gorm.DB, ownerID uint, ids []uint) ([]models.ClothingItem, error) {
	ids = uniqueIDs(ids)
	var items []models.ClothingItem
	if len(ids) == 0 {
		return items, nil
	}
	if err := forUpdate(tx).Where("owner_id = ? AND id IN ?", ownerID, ids).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, fmt.Errorf("%d of %d items: %w", len(ids)-len(items), len(ids), ErrNotFound)
	}
	return items, nil
}

// MarkWashed resets all listed items or none of them.
func (r *WardrobeRepository) MarkWashed(ctx context.Context, ownerID uint, ids []uint, now time.Time) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		items, err = lockOwned(tx, ownerID, ids)
		if err != nil {
			return err
		}
		for i := range items {
			laundry.MarkWashed(&items[i], now)
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MarkDirty counts one wear per item and flags them for washing, all or nothing.
func (r *WardrobeRepository) MarkDirty(ctx context.Context, ownerID uint, ids []uint, th laundry.Thresholds, now time.Time) ([]laundry.Transition, error) {
	var transitions []laundry.Transition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := lockOwned(tx, ownerID, ids)
		if err != nil {
			return err
		}
		for i := range items {
			transitions = append(transitions, laundry.MarkDirty(&items[i], th, now))
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// RefreshUrgency recomputes the stored urgency of the owner's items and
// persists the rows that drifted. It returns the refreshed items.
func (r *WardrobeRepository) RefreshUrgency(ctx context.Context, ownerID uint, th laundry.Thresholds) ([]models.ClothingItem, int, error) {
	var items []models.ClothingItem
	changed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("owner_id = ?", ownerID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			if !laundry.Recompute(&items[i], th) {
				continue
			}
			changed++
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, changed, nil
}

// SaveOutfit stores the outfit with the owned subset of itemIDs and records a
// wear on each of them. Unknown ids are ignored.
func (r *WardrobeRepository) SaveOutfit(ctx context.Context, outfit *models.Outfit, itemIDs []uint, th laundry.Thresholds, now time.Time) ([]laundry.Transition, error) {
	var transitions []laundry.Transition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := uniqueIDs(itemIDs)
		if len(ids) == 0 {
			return ErrNoOwnedItems
		}
		var items []models.ClothingItem
		if err := forUpdate(tx).Where("owner_id = ? AND id IN ?", outfit.OwnerID, ids).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrNoOwnedItems
		}
		byID := make(map[uint]*models.ClothingItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		outfit.Items = nil
		for _, id := range ids {
			if _, ok := byID[id]; ok {
				outfit.Items = append(outfit.Items, models.OutfitItem{ClothingItemID: id, Position: len(outfit.Items)})
			}
		}
		if err := tx.Create(outfit).Error; err != nil {
			return err
		}

		for _, link := range outfit.Items {
			item := byID[link.ClothingItemID]
			transitions = append(transitions, laundry.RecordWear(item, th, now))
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

func (r *WardrobeRepository) GetOutfit(ctx context.Context, ownerID, outfitID uint) (models.Outfit, error) {
	var outfit models.Outfit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("owner_id = ? AND id = ?", ownerID, outfitID).
		First(&outfit).Error
	return outfit, notFound(err, "outfit", outfitID)
}

// ListOutfits pages through the owner's outfits, newest first.
func (r *WardrobeRepository) ListOutfits(ctx context.Context, ownerID uint, page, perPage int) ([]models.Outfit, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxOutfitsPerPage {
		perPage = MaxOutfitsPerPage
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Outfit{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var outfits []models.Outfit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&outfits).Error
	return outfits, total, err
}

// RecentOutfits returns outfits created after since, oldest first.
func (r *WardrobeRepository) RecentOutfits(ctx context.Context, ownerID uint, since time.Time) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Order("created_at, id").
		Find(&outfits).Error
	return outfits, err
}

func (r *WardrobeRepository) UpdateOutfit(ctx context.Context, ownerID, outfitID uint, mutate func(*models.Outfit)) (models.Outfit, error) {
	var outfit models.Outfit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, outfitID).First(&outfit).Error; err != nil {
			return notFound(err, "outfit", outfitID)
		}
		mutate(&outfit)
		return tx.Omit(clause.Associations).Save(&outfit).Error
	})
	if err != nil {
		return outfit, err
	}
	return r.GetOutfit(ctx, ownerID, outfitID)
}

// DeleteOutfit leaves the wear counters of its items untouched.
func (r *WardrobeRepository) DeleteOutfit(ctx context.Context, ownerID, outfitID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outfit models.Outfit
		if err := tx.Select("id").Where("owner_id = ? AND id = ?", ownerID, outfitID).First(&outfit).Error; err != nil {
			return notFound(err, "outfit", outfitID)
		}
		if err := tx.Where("outfit_id = ?", outfit.ID).Delete(&models.OutfitItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Outfit{}, outfit.ID).Error
	})
}

func (r *WardrobeRepository) CountOutfits(ctx context.Context, ownerID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Outfit{}).Where("owner_id = ?", ownerID).Count(&total).Error
	return total, err
}

func (r *WardrobeRepository) CountItems(ctx context.Context, ownerID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ClothingItem{}).Where("owner_id = ?", ownerID).Count(&total).Error
	return total, err
}

// ItemsForOutfits loads every still-existing item referenced by the outfits, keyed by id.
func (r *WardrobeRepository) ItemsForOutfits(ctx context.Context, ownerID uint, outfits []models.Outfit) (map[uint]models.ClothingItem, error) {
	var ids []uint
	for _, o := range outfits {
		ids = append(ids, o.ItemIDs()...)
	}
	items, err := r.ItemsByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.ClothingItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

// RecentHistory returns outfits since the given time with their items resolved.
// Items deleted since are dropped from the entry.
func (r *WardrobeRepository) RecentHistory(ctx context.Context, ownerID uint, since time.Time) ([]style.HistoryEntry, error) {
	outfits, err := r.RecentOutfits(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}
	return r.HistoryEntries(ctx, ownerID, outfits)
}

func (r *WardrobeRepository) HistoryEntries(ctx context.Context, ownerID uint, outfits []models.Outfit) ([]style.HistoryEntry, error) {
	byID, err := r.ItemsForOutfits(ctx, ownerID, outfits)
	if err != nil {
		return nil, err
	}
	entries := make([]style.HistoryEntry, 0, len(outfits))
	for _, o := range outfits {
		entry := style.HistoryEntry{Mood: o.Mood}
		for _, id := range o.ItemIDs() {
			if item, ok := byID[id]; ok {
				entry.Items = append(entry.Items, item)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AllOutfits is used for style DNA, which looks at the whole history.
func (r *WardrobeRepository) AllOutfits(ctx context.Context, ownerID uint) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("owner_id = ?", ownerID).
		Order("created_at, id").
		Find(&outfits).Error
	return outfits, err
}
