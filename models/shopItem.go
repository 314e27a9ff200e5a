package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/shopspring/decimal"
)

type ShopItem struct {
	ID          int               `gorm:"primary_key" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"price"`
	ItemTypeId  int               `gorm:"index;not null" json:"item_type_id"`
	ItemType    *ShopItemType     `gorm:"foreignKey:ItemTypeId" json:"shop_item_type,omitempty"`
	Variants    []ShopItemVariant `gorm:"foreignKey:ShopItemId" json:"variants,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShopItem struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	ItemTypeId  int             `json:"item_type_id"`
}

// validate input for both create & edit. Field messages follow the admin
// form's inline error copy.
func (input *NewShopItem) validate(ctx context.Context) *ValidationError {

	ve := &ValidationError{Message: "Missed fields, failed to save item."}

	checkRequiredFields(ve, input)
	if !input.Price.IsPositive() {
		ve.add("price", "Price should be greater than 0")
	}
	if err := utils.ValidateResourceId[ShopItemType](ctx, input.ItemTypeId); err != nil {
		ve.add("item_type_id", "Item type not found")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func mergeValidationErrors(a, b *ValidationError) *ValidationError {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	for field, msgs := range b.Errors {
		for _, msg := range msgs {
			a.add(field, msg)
		}
	}
	return a
}

// CreateShopItem validates the parent fields and the inventory form, then
// persists the item and one variant row per checked (color, size) inside one
// transaction. Image uploads happen per checked color; all size rows of a
// color share the uploaded locator. Nothing is written on validation failure.
func CreateShopItem(ctx context.Context, storage utils.ObjectStorage, input *NewShopItem, form *InventoryFormData) (*ReconcileResult, error) {

	if ve := mergeValidationErrors(input.validate(ctx), form.Validate()); ve != nil {
		return nil, ve
	}

	plan := planVariantChanges(nil, form, false)

	db := config.GetDB()
	tx := db.Begin()

	item := ShopItem{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ItemTypeId:  input.ItemTypeId,
	}
	if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	variants, err := applyVariantPlan(ctx, tx, storage, item.ID, plan)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit item: %w", err)
	}

	return &ReconcileResult{Item: &item, Variants: variants}, nil
}

// EditShopItem reconciles an item against a new submission.
//
// Unchanged type: previously-stocked colors that are now unchecked lose their
// rows (and, after commit, their images); checked colors are upserted per
// size, reusing a carried-over locator as-is or uploading a new binary.
//
// Changed type: the item is replaced wholesale. Old rows, images and the
// parent row are removed and a fresh item is created with every checked
// color inserted as new; carried-over locators are ignored, so each checked
// color needs a new upload.
func EditShopItem(ctx context.Context, storage utils.ObjectStorage, itemId int, input *NewShopItem, form *InventoryFormData, typeChanged bool) (*ReconcileResult, error) {

	item, err := utils.FetchModel[ShopItem](ctx, itemId)
	if err != nil {
		return nil, err
	}

	if typeChanged {
		// the old item's objects are about to be purged; a carried-over
		// locator would dangle
		for _, entry := range form.Colors {
			entry.ImageURL = ""
		}
	}

	if ve := mergeValidationErrors(input.validate(ctx), form.Validate()); ve != nil {
		return nil, ve
	}

	// Best-effort lease against two admins racing the same item. Redis is an
	// optimization only; on lock failure we proceed unlocked.
	if unlock := obtainItemLease(ctx, itemId); unlock != nil {
		defer unlock()
	}

	existing, err := GetShopItemVariants(ctx, itemId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variants: %w", err)
	}

	plan := planVariantChanges(existing, form, typeChanged)

	db := config.GetDB()
	tx := db.Begin()

	result := item
	var variants []ShopItemVariant

	if typeChanged {
		if err := tx.WithContext(ctx).Where("shop_item_id = ?", itemId).Delete(&ShopItemVariant{}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to delete variants: %w", err)
		}
		if err := tx.WithContext(ctx).Delete(&ShopItem{}, itemId).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to delete item: %w", err)
		}

		replacement := ShopItem{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			ItemTypeId:  input.ItemTypeId,
		}
		if err := tx.WithContext(ctx).Create(&replacement).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert item: %w", err)
		}
		result = &replacement

		// old rows are gone with the old item
		plan.PurgeColorIds = nil
		variants, err = applyVariantPlan(ctx, tx, storage, replacement.ID, plan)
	} else {
		if err := tx.WithContext(ctx).Model(&ShopItem{ID: itemId}).Updates(map[string]interface{}{
			"Name":        input.Name,
			"Description": input.Description,
			"Price":       input.Price,
			"ItemTypeId":  input.ItemTypeId,
		}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
		result.Name = input.Name
		result.Description = input.Description
		result.Price = input.Price
		result.ItemTypeId = input.ItemTypeId

		variants, err = applyVariantPlan(ctx, tx, storage, itemId, plan)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit item: %w", err)
	}

	// storage cleanup after commit so a failed transaction never leaves rows
	// pointing at deleted objects
	warnings := removePlanImages(ctx, storage, plan.RemoveImageURLs)

	return &ReconcileResult{Item: result, Variants: variants, Warnings: warnings}, nil
}

// DeleteShopItem removes the item, its variant rows and, best effort, their
// images.
func DeleteShopItem(ctx context.Context, storage utils.ObjectStorage, id int) (*ReconcileResult, error) {

	item, err := utils.FetchModel[ShopItem](ctx, id)
	if err != nil {
		return nil, err
	}
	variants, err := GetShopItemVariants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variants: %w", err)
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("shop_item_id = ?", id).Delete(&ShopItemVariant{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete variants: %w", err)
	}
	if err := tx.WithContext(ctx).Delete(&ShopItem{}, id).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	var urls []string
	for _, v := range variants {
		if v.ImageUrl != "" {
			urls = append(urls, v.ImageUrl)
		}
	}
	warnings := removePlanImages(ctx, storage, utils.UniqueSlice(urls))

	return &ReconcileResult{Item: item, Warnings: warnings}, nil
}

func GetShopItem(ctx context.Context, id int) (*ShopItem, error) {
	return utils.FetchModel[ShopItem](ctx, id, "ItemType", "Variants", "Variants.Color", "Variants.Size")
}

func GetShopItems(ctx context.Context) ([]*ShopItem, error) {
	return utils.FetchAllModels[ShopItem](ctx, "ItemType", "Variants", "Variants.Color", "Variants.Size")
}

func obtainItemLease(ctx context.Context, itemId int) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("shop_item:reconcile:%d", itemId), 30*time.Second, nil)
	if err != nil {
		config.LogWarn(config.GetLogger(), "shopItem.go", "obtainItemLease", "locker.Obtain",
			fmt.Sprintf("could not obtain lease for item %d, proceeding unlocked", itemId))
		return nil
	}
	return func() {
		if err := lock.Release(ctx); err != nil {
			config.LogError(config.GetLogger(), "shopItem.go", "obtainItemLease", "lock.Release", itemId, err)
		}
	}
}
