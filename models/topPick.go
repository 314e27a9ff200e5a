package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

// GenreTags is the curated tag list the admin forms offer for top picks and
// episodes.
var GenreTags = []string{
	"Deep-House",
	"Soulful-House",
	"Lounge",
	"Broken-Beats",
	"Afro-House",
	"Minimal-House",
}

func validGenreTag(tag string) bool {
	for _, t := range GenreTags {
		if t == tag {
			return true
		}
	}
	return false
}

// TopPick is a highlighted record on the landing page, linking out to where
// it can be bought.
type TopPick struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Artist       string    `gorm:"size:100;not null" json:"artist"`
	PurchaseLink string    `gorm:"size:500;not null" json:"purchase_link"`
	Tag          string    `gorm:"size:50" json:"tag"`
	ImageUrl     string    `gorm:"size:500" json:"image_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TopPick) TableName() string { return "top_picks" }

type NewTopPick struct {
	Name         string `json:"name" binding:"required"`
	Artist       string `json:"artist" binding:"required"`
	PurchaseLink string `json:"purchase_link" binding:"required"`
	Tag          string `json:"tag"`
	Image        *FormFile
}

func (input *NewTopPick) validate() *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save top pick."}
	checkRequiredFields(ve, input)
	if input.Tag != "" && !validGenreTag(input.Tag) {
		ve.add("tag", "Unknown tag")
	}
	if input.Image != nil && len(input.Image.Data) > MaxImageSizeBytes {
		ve.add("image", "File size must be less than 5MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateTopPick(ctx context.Context, storage utils.ObjectStorage, input *NewTopPick) (*TopPick, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}
	if input.Image == nil || len(input.Image.Data) == 0 {
		ve := &ValidationError{Message: "Missed fields, failed to save top pick."}
		ve.add("image", "Image is required")
		return nil, ve
	}

	imageUrl, err := uploadEntityImage(ctx, storage, "top_picks", input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	pick := TopPick{
		Name:         input.Name,
		Artist:       input.Artist,
		PurchaseLink: input.PurchaseLink,
		Tag:          input.Tag,
		ImageUrl:     imageUrl,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&pick).Error; err != nil {
		return nil, fmt.Errorf("failed to insert top pick: %w", err)
	}
	return &pick, nil
}

// EditTopPick keeps the stored cover unless a new one is uploaded.
func EditTopPick(ctx context.Context, storage utils.ObjectStorage, id int, input *NewTopPick) (*TopPick, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}

	pick, err := utils.FetchModel[TopPick](ctx, id)
	if err != nil {
		return nil, err
	}

	imageUrl := pick.ImageUrl
	if input.Image != nil && len(input.Image.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, pick.ImageUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "topPick.go", "EditTopPick", "removeStoredObject", warn)
		}
		imageUrl, err = uploadEntityImage(ctx, storage, "top_picks", input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(pick).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Artist":       input.Artist,
		"PurchaseLink": input.PurchaseLink,
		"Tag":          input.Tag,
		"ImageUrl":     imageUrl,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update top pick: %w", err)
	}
	return pick, nil
}

func DeleteTopPick(ctx context.Context, storage utils.ObjectStorage, id int) error {

	pick, err := utils.FetchModel[TopPick](ctx, id)
	if err != nil {
		return err
	}

	if warn := removeStoredObject(ctx, storage, pick.ImageUrl); warn != "" {
		config.LogWarn(config.GetLogger(), "topPick.go", "DeleteTopPick", "removeStoredObject", warn)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&TopPick{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete top pick: %w", err)
	}
	return nil
}

func GetTopPicks(ctx context.Context) ([]*TopPick, error) {
	return utils.FetchAllModels[TopPick](ctx)
}

func GetTopPick(ctx context.Context, id int) (*TopPick, error) {
	return utils.FetchModel[TopPick](ctx, id)
}
