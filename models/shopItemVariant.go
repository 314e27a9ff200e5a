package models

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"gorm.io/gorm"
)

// ShopItemVariant is one (color, size) combination of a shop item. All sizes
// of the same color share one image locator; the image is per color.
type ShopItemVariant struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ShopItemId int       `gorm:"not null;uniqueIndex:idx_item_color_size" json:"shop_item_id"`
	ColorId    int       `gorm:"not null;uniqueIndex:idx_item_color_size" json:"color_id"`
	SizeId     int       `gorm:"not null;uniqueIndex:idx_item_color_size" json:"size_id"`
	Quantity   int       `gorm:"not null;default:0" json:"quantity"`
	ImageUrl   string    `gorm:"size:500" json:"image_url"`
	Color      *Color    `gorm:"foreignKey:ColorId" json:"color,omitempty"`
	Size       *Size     `gorm:"foreignKey:SizeId" json:"size,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ShopItemVariant) TableName() string { return "shop_item_variant" }

// ReconcileResult reports what a reconciliation pass persisted, including
// non-fatal storage cleanup failures so callers and tests can assert on them.
type ReconcileResult struct {
	Item     *ShopItem         `json:"item"`
	Variants []ShopItemVariant `json:"variants"`
	Warnings []string          `json:"warnings,omitempty"`
}

/* planning */

type variantUpsert struct {
	SizeId     int
	Quantity   int
	ExistingId int // 0 means insert
}

type colorPlan struct {
	Color Color
	// Upload is the new binary to store for this color; nil means ReuseURL
	// is kept as-is (no delete, no reupload).
	Upload   *FormFile
	ReuseURL string
	Upserts  []variantUpsert
}

type variantPlan struct {
	PurgeColorIds   []int
	RemoveImageURLs []string // de-duplicated locators to remove from storage
	Colors          []colorPlan
}

// planVariantChanges diffs the persisted variant set against the validated
// form and computes the row and storage operations to reach the new state.
// Pure: no I/O, fully unit-testable.
//
// When typeChanged is set the item is being replaced wholesale: every
// existing row and image is purged and every checked color is inserted as
// new, ignoring carried-over image references.
func planVariantChanges(existing []ShopItemVariant, form *InventoryFormData, typeChanged bool) variantPlan {

	var plan variantPlan

	// index existing rows by color and (color, size)
	existingByColor := make(map[int][]ShopItemVariant)
	existingIds := make(map[[2]int]int)
	for _, v := range existing {
		existingByColor[v.ColorId] = append(existingByColor[v.ColorId], v)
		existingIds[[2]int{v.ColorId, v.SizeId}] = v.ID
	}

	// colors to purge: every previously-stocked color that is unchecked now,
	// or all of them when the item is being replaced
	var removedURLs []string
	for colorId, rows := range existingByColor {
		entry := form.Colors[colorId]
		if typeChanged || entry == nil || !entry.Checked {
			plan.PurgeColorIds = append(plan.PurgeColorIds, colorId)
			for _, row := range rows {
				if row.ImageUrl != "" {
					removedURLs = append(removedURLs, row.ImageUrl)
				}
			}
		}
	}
	sort.Ints(plan.PurgeColorIds)

	// checked colors in deterministic catalog order
	colorIds := make([]int, 0, len(form.Colors))
	for id := range form.Colors {
		colorIds = append(colorIds, id)
	}
	sort.Ints(colorIds)

	for _, colorId := range colorIds {
		entry := form.Colors[colorId]
		if !entry.Checked {
			continue
		}

		cp := colorPlan{Color: entry.Color}
		if entry.NewImage != nil && len(entry.NewImage.Data) > 0 {
			cp.Upload = entry.NewImage
			// a fresh upload supersedes this color's stored image
			for _, row := range existingByColor[colorId] {
				if row.ImageUrl != "" {
					removedURLs = append(removedURLs, row.ImageUrl)
				}
			}
		} else if !typeChanged {
			cp.ReuseURL = entry.ImageURL
		}

		sizeIds := make([]int, 0, len(entry.Quantities))
		for sizeId := range entry.Quantities {
			sizeIds = append(sizeIds, sizeId)
		}
		sort.Ints(sizeIds)

		for _, sizeId := range sizeIds {
			up := variantUpsert{SizeId: sizeId, Quantity: entry.Quantities[sizeId]}
			if !typeChanged {
				up.ExistingId = existingIds[[2]int{colorId, sizeId}]
			}
			cp.Upserts = append(cp.Upserts, up)
		}
		plan.Colors = append(plan.Colors, cp)
	}

	plan.RemoveImageURLs = utils.UniqueSlice(removedURLs)
	return plan
}

/* applying */

// applyVariantPlan executes the row operations of a plan inside the caller's
// transaction: purge deletes first (the (item, color, size) uniqueness would
// otherwise collide), then per-color uploads and upserts. Storage deletes are
// NOT performed here; they run after commit (see removePlanImages) so a
// rolled-back transaction never leaves rows pointing at deleted objects.
func applyVariantPlan(ctx context.Context, tx *gorm.DB, storage utils.ObjectStorage, itemId int, plan variantPlan) ([]ShopItemVariant, error) {

	if len(plan.PurgeColorIds) > 0 {
		if err := tx.WithContext(ctx).
			Where("shop_item_id = ? AND color_id IN ?", itemId, plan.PurgeColorIds).
			Delete(&ShopItemVariant{}).Error; err != nil {
			return nil, fmt.Errorf("failed to delete variants: %w", err)
		}
	}

	variants := make([]ShopItemVariant, 0)
	for _, cp := range plan.Colors {

		imageUrl := cp.ReuseURL
		if cp.Upload != nil {
			url, err := uploadColorImage(ctx, storage, itemId, cp.Color.Name, cp.Upload)
			if err != nil {
				return nil, fmt.Errorf("failed to upload image for color %s: %w", cp.Color.Name, err)
			}
			imageUrl = url
		}

		for _, up := range cp.Upserts {
			if up.ExistingId > 0 {
				if err := tx.WithContext(ctx).Model(&ShopItemVariant{}).
					Where("id = ?", up.ExistingId).
					Updates(map[string]interface{}{
						"Quantity": up.Quantity,
						"ImageUrl": imageUrl,
					}).Error; err != nil {
					return nil, fmt.Errorf("failed to update variant: %w", err)
				}
				variants = append(variants, ShopItemVariant{
					ID:         up.ExistingId,
					ShopItemId: itemId,
					ColorId:    cp.Color.ID,
					SizeId:     up.SizeId,
					Quantity:   up.Quantity,
					ImageUrl:   imageUrl,
				})
			} else {
				variant := ShopItemVariant{
					ShopItemId: itemId,
					ColorId:    cp.Color.ID,
					SizeId:     up.SizeId,
					Quantity:   up.Quantity,
					ImageUrl:   imageUrl,
				}
				if err := tx.WithContext(ctx).Create(&variant).Error; err != nil {
					return nil, fmt.Errorf("failed to insert variant: %w", err)
				}
				variants = append(variants, variant)
			}
		}
	}

	return variants, nil
}

// removePlanImages deletes the purged image objects, fanning the deletes out
// concurrently. Each failure is logged and returned as a warning; none blocks
// the others or the surrounding operation.
func removePlanImages(ctx context.Context, storage utils.ObjectStorage, urls []string) []string {

	logger := config.GetLogger()

	var (
		mu       sync.Mutex
		warnings []string
		wg       sync.WaitGroup
	)
	for _, url := range urls {
		objectKey := utils.ExtractObjectKeyFromURL(url)
		if objectKey == "" {
			mu.Lock()
			warnings = append(warnings, fmt.Sprintf("cannot resolve object key for %s, skipping delete", url))
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := storage.Remove(ctx, key); err != nil {
				config.LogError(logger, "shopItemVariant.go", "removePlanImages", "storage.Remove", key, err)
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("failed to delete image %s", key))
				mu.Unlock()
			}
		}(objectKey)
	}
	wg.Wait()
	return warnings
}

func uploadColorImage(ctx context.Context, storage utils.ObjectStorage, itemId int, colorName string, file *FormFile) (string, error) {

	data, contentType, err := normalizeImage(file)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	objectKey := fmt.Sprintf("shop_items/%d/colors/%s/%s%s", itemId, colorName, utils.GenerateUniqueFilename(), ext)

	return storage.Upload(ctx, objectKey, data, contentType)
}

// GetShopItemVariants lists an item's persisted variants with their catalog rows.
func GetShopItemVariants(ctx context.Context, itemId int) ([]ShopItemVariant, error) {
	db := config.GetDB()
	var variants []ShopItemVariant
	err := db.WithContext(ctx).
		Preload("Color").Preload("Size").
		Where("shop_item_id = ?", itemId).
		Order("color_id, size_id").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}
