package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

type Artist struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Instagram string    `gorm:"size:255" json:"instagram"`
	X         string    `gorm:"size:255" json:"x"`
	ImageUrl  string    `gorm:"size:500" json:"image_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewArtist struct {
	Name      string `json:"name" binding:"required"`
	Bio       string `json:"bio"`
	Instagram string `json:"instagram"`
	X         string `json:"x"`
	Image     *FormFile
}

func (input *NewArtist) validate() *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save artist."}
	checkRequiredFields(ve, input)
	if input.Image != nil && len(input.Image.Data) > MaxImageSizeBytes {
		ve.add("image", "File size must be less than 5MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateArtist(ctx context.Context, storage utils.ObjectStorage, input *NewArtist) (*Artist, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}
	if input.Image == nil || len(input.Image.Data) == 0 {
		ve := &ValidationError{Message: "Missed fields, failed to save artist."}
		ve.add("image", "Image is required")
		return nil, ve
	}

	imageUrl, err := uploadEntityImage(ctx, storage, "artists", input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	artist := Artist{
		Name:      input.Name,
		Bio:       input.Bio,
		Instagram: input.Instagram,
		X:         input.X,
		ImageUrl:  imageUrl,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&artist).Error; err != nil {
		return nil, fmt.Errorf("failed to insert artist: %w", err)
	}
	return &artist, nil
}

// EditArtist keeps the stored image unless a new one is uploaded; a new
// upload replaces the old object.
func EditArtist(ctx context.Context, storage utils.ObjectStorage, id int, input *NewArtist) (*Artist, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}

	artist, err := utils.FetchModel[Artist](ctx, id)
	if err != nil {
		return nil, err
	}

	imageUrl := artist.ImageUrl
	if input.Image != nil && len(input.Image.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, artist.ImageUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "artist.go", "EditArtist", "removeStoredObject", warn)
		}
		imageUrl, err = uploadEntityImage(ctx, storage, "artists", input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(artist).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Bio":       input.Bio,
		"Instagram": input.Instagram,
		"X":         input.X,
		"ImageUrl":  imageUrl,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update artist: %w", err)
	}
	return artist, nil
}

func DeleteArtist(ctx context.Context, storage utils.ObjectStorage, id int) error {

	artist, err := utils.FetchModel[Artist](ctx, id)
	if err != nil {
		return err
	}

	if warn := removeStoredObject(ctx, storage, artist.ImageUrl); warn != "" {
		config.LogWarn(config.GetLogger(), "artist.go", "DeleteArtist", "removeStoredObject", warn)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&Artist{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	return nil
}

func GetArtists(ctx context.Context) ([]*Artist, error) {
	return utils.FetchAllModels[Artist](ctx)
}

func GetArtist(ctx context.Context, id int) (*Artist, error) {
	return utils.FetchModel[Artist](ctx, id)
}
