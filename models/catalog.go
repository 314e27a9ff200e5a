package models

import (
	"context"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

// Catalog lookup sets. Read-only at runtime; rows are created by
// cmd/seed-catalog and edited directly in the database when the
// merch line changes.

// SizeNameDefault is the sentinel size used for item types that do not
// vary by size (caps, totes). Quantity for such items lives on a single
// variant row pointing at this size.
const SizeNameDefault = "default"

type Color struct {
	ID        int    `gorm:"primary_key" json:"id"`
	Name      string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	HashColor string `gorm:"size:7" json:"hash_color"`
}

// lookup tables keep their legacy singular names

func (Color) TableName() string { return "color" }

type Size struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:20;not null;uniqueIndex" json:"name"`
}

func (Size) TableName() string { return "size" }

type ShopItemType struct {
	ID       int    `gorm:"primary_key" json:"id"`
	Type     string `gorm:"size:50;not null;uniqueIndex" json:"type"`
	HasSizes *bool  `gorm:"not null;default:false" json:"has_sizes"`
}

func (ShopItemType) TableName() string { return "shop_item_type" }

// list catalog rows, redis first, db on miss, cache result
func listCatalog[T any](ctx context.Context, cacheKey string) ([]*T, error) {

	var results []*T
	found, err := config.GetRedisObject(cacheKey, &results)
	if err != nil {
		return nil, err
	}
	if found {
		return results, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(cacheKey, results, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return results, nil
}

func GetColors(ctx context.Context) ([]*Color, error) {
	return listCatalog[Color](ctx, "AllColors")
}

func GetSizes(ctx context.Context) ([]*Size, error) {
	return listCatalog[Size](ctx, "AllSizes")
}

func GetShopItemTypes(ctx context.Context) ([]*ShopItemType, error) {
	return listCatalog[ShopItemType](ctx, "AllShopItemTypes")
}

// RealSizes filters out the sentinel row.
func RealSizes(sizes []*Size) []*Size {
	out := make([]*Size, 0, len(sizes))
	for _, s := range sizes {
		if s.Name != SizeNameDefault {
			out = append(out, s)
		}
	}
	return out
}

// DefaultSize returns the sentinel size row.
// (may return RecordNotFound if the catalog was never seeded)
func DefaultSize(sizes []*Size) (*Size, error) {
	for _, s := range sizes {
		if s.Name == SizeNameDefault {
			return s, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}
