package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

type ReleaseType string

const (
	ReleaseTypeDigital ReleaseType = "Digital"
	ReleaseTypeVinyl   ReleaseType = "Vinyl"
	ReleaseTypeCD      ReleaseType = "CD"
)

func validReleaseType(t ReleaseType) bool {
	switch t {
	case ReleaseTypeDigital, ReleaseTypeVinyl, ReleaseTypeCD:
		return true
	}
	return false
}

type Release struct {
	ID           int         `gorm:"primary_key" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Artist       string      `gorm:"size:100;not null" json:"artist"`
	About        string      `gorm:"type:text" json:"about"`
	PurchaseLink string      `gorm:"size:500" json:"purchase_link"`
	Type         ReleaseType `gorm:"type:enum('Digital','Vinyl','CD');not null;default:'Digital'" json:"type"`
	Tag          string      `gorm:"size:50" json:"tag"`
	ImageUrl     string      `gorm:"size:500" json:"image_url"`
	ReleaseDate  time.Time   `json:"release_date"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRelease struct {
	Name         string      `json:"name" binding:"required"`
	Artist       string      `json:"artist" binding:"required"`
	About        string      `json:"about"`
	PurchaseLink string      `json:"purchase_link"`
	Type         ReleaseType `json:"type"`
	Tag          string      `json:"tag"`
	ReleaseDate  time.Time   `json:"release_date"`
	Image        *FormFile
}

func (input *NewRelease) validate() *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save release."}
	checkRequiredFields(ve, input)
	if !validReleaseType(input.Type) {
		ve.add("type", "Type must be Digital, Vinyl or CD")
	}
	if input.Image != nil && len(input.Image.Data) > MaxImageSizeBytes {
		ve.add("image", "File size must be less than 5MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateRelease(ctx context.Context, storage utils.ObjectStorage, input *NewRelease) (*Release, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}
	if input.Image == nil || len(input.Image.Data) == 0 {
		ve := &ValidationError{Message: "Missed fields, failed to save release."}
		ve.add("image", "Image is required")
		return nil, ve
	}

	imageUrl, err := uploadEntityImage(ctx, storage, "releases", input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	release := Release{
		Name:         input.Name,
		Artist:       input.Artist,
		About:        input.About,
		PurchaseLink: input.PurchaseLink,
		Type:         input.Type,
		Tag:          input.Tag,
		ImageUrl:     imageUrl,
		ReleaseDate:  input.ReleaseDate,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&release).Error; err != nil {
		return nil, fmt.Errorf("failed to insert release: %w", err)
	}
	return &release, nil
}

func EditRelease(ctx context.Context, storage utils.ObjectStorage, id int, input *NewRelease) (*Release, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}

	release, err := utils.FetchModel[Release](ctx, id)
	if err != nil {
		return nil, err
	}

	imageUrl := release.ImageUrl
	if input.Image != nil && len(input.Image.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, release.ImageUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "release.go", "EditRelease", "removeStoredObject", warn)
		}
		imageUrl, err = uploadEntityImage(ctx, storage, "releases", input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(release).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Artist":       input.Artist,
		"About":        input.About,
		"PurchaseLink": input.PurchaseLink,
		"Type":         input.Type,
		"Tag":          input.Tag,
		"ImageUrl":     imageUrl,
		"ReleaseDate":  input.ReleaseDate,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}
	return release, nil
}

func DeleteRelease(ctx context.Context, storage utils.ObjectStorage, id int) error {

	release, err := utils.FetchModel[Release](ctx, id)
	if err != nil {
		return err
	}

	if warn := removeStoredObject(ctx, storage, release.ImageUrl); warn != "" {
		config.LogWarn(config.GetLogger(), "release.go", "DeleteRelease", "removeStoredObject", warn)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&Release{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete release: %w", err)
	}
	return nil
}

func GetReleases(ctx context.Context) ([]*Release, error) {
	return utils.FetchAllModels[Release](ctx)
}

func GetRelease(ctx context.Context, id int) (*Release, error) {
	return utils.FetchModel[Release](ctx, id)
}
