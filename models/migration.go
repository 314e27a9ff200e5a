package models

import (
	"log"

	"bitbucket.org/sxnics/sxnics_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Color{}, &Size{}, &ShopItemType{},
		&ShopItem{}, &ShopItemVariant{},
		&Artist{}, &Episode{}, &VideoEpisode{}, &Release{}, &Event{},
		&TopPick{},
		&Order{}, &OrderItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
