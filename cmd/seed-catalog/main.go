// seed-catalog creates the read-only lookup rows the shop admin form renders:
// colors, sizes (plus the sentinel "default" size for sizeless item types)
// and item types. Safe to rerun; existing rows are left untouched.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-catalog
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	colors := []models.Color{
		{Name: "black", HashColor: "#000000"},
		{Name: "white", HashColor: "#ffffff"},
		{Name: "red", HashColor: "#dc2626"},
		{Name: "navy", HashColor: "#1e3a5f"},
		{Name: "olive", HashColor: "#556b2f"},
	}
	for _, color := range colors {
		if err := upsertByName(ctx, db, "name", color.Name, &color); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed color %q: %v\n", color.Name, err)
			os.Exit(1)
		}
	}

	sizes := []models.Size{
		{Name: models.SizeNameDefault},
		{Name: "S"},
		{Name: "M"},
		{Name: "L"},
		{Name: "XL"},
		{Name: "XXL"},
	}
	for _, size := range sizes {
		if err := upsertByName(ctx, db, "name", size.Name, &size); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed size %q: %v\n", size.Name, err)
			os.Exit(1)
		}
	}

	itemTypes := []models.ShopItemType{
		{Type: "SHIRT", HasSizes: utils.NewTrue()},
		{Type: "HOODIE", HasSizes: utils.NewTrue()},
		{Type: "CAP", HasSizes: utils.NewFalse()},
		{Type: "TOTE", HasSizes: utils.NewFalse()},
	}
	for _, itemType := range itemTypes {
		if err := upsertByName(ctx, db, "type", itemType.Type, &itemType); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed item type %q: %v\n", itemType.Type, err)
			os.Exit(1)
		}
	}

	fmt.Println("catalog seeded")
}

func upsertByName[T any](ctx context.Context, db *gorm.DB, column string, value string, row *T) error {
	err := db.WithContext(ctx).Where(column+" = ?", value).First(new(T)).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.WithContext(ctx).Create(row).Error
}
