package models

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/google/uuid"
)

type Episode struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Artist      string    `gorm:"size:100;not null" json:"artist"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageUrl    string    `gorm:"size:500" json:"image_url"`
	AudioUrl    string    `gorm:"size:500" json:"audio_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEpisode struct {
	Name        string `json:"name" binding:"required"`
	Artist      string `json:"artist" binding:"required"`
	Description string `json:"description"`
	Image       *FormFile
	Audio       *FormFile
}

func (input *NewEpisode) validate(requireMedia bool) *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save episode."}
	checkRequiredFields(ve, input)
	if len(input.Description) < 15 {
		ve.add("description", "Description needs to be 15+ characters")
	}
	if requireMedia {
		if input.Image == nil || len(input.Image.Data) == 0 {
			ve.add("image", "Image is required")
		}
		if input.Audio == nil || len(input.Audio.Data) == 0 {
			ve.add("audio", "Audio is required")
		}
	}
	if input.Image != nil && len(input.Image.Data) > MaxImageSizeBytes {
		ve.add("image", "File size must be less than 5MB")
	}
	if input.Audio != nil && len(input.Audio.Data) > MaxAudioSizeBytes {
		ve.add("audio", "File size must be less than 200MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateEpisode(ctx context.Context, storage utils.ObjectStorage, input *NewEpisode) (*Episode, error) {

	if ve := input.validate(true); ve != nil {
		return nil, ve
	}

	imageUrl, err := uploadEntityImage(ctx, storage, "episodes", input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	audioUrl, err := uploadEpisodeAudio(ctx, storage, input.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	episode := Episode{
		Name:        input.Name,
		Artist:      input.Artist,
		Description: input.Description,
		ImageUrl:    imageUrl,
		AudioUrl:    audioUrl,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&episode).Error; err != nil {
		return nil, fmt.Errorf("failed to insert episode: %w", err)
	}
	return &episode, nil
}

// EditEpisode keeps stored media unless replaced.
func EditEpisode(ctx context.Context, storage utils.ObjectStorage, id int, input *NewEpisode) (*Episode, error) {

	if ve := input.validate(false); ve != nil {
		return nil, ve
	}

	episode, err := utils.FetchModel[Episode](ctx, id)
	if err != nil {
		return nil, err
	}

	imageUrl := episode.ImageUrl
	if input.Image != nil && len(input.Image.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, episode.ImageUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "episode.go", "EditEpisode", "removeStoredObject", warn)
		}
		imageUrl, err = uploadEntityImage(ctx, storage, "episodes", input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	audioUrl := episode.AudioUrl
	if input.Audio != nil && len(input.Audio.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, episode.AudioUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "episode.go", "EditEpisode", "removeStoredObject", warn)
		}
		audioUrl, err = uploadEpisodeAudio(ctx, storage, input.Audio)
		if err != nil {
			return nil, fmt.Errorf("failed to upload audio: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(episode).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Artist":      input.Artist,
		"Description": input.Description,
		"ImageUrl":    imageUrl,
		"AudioUrl":    audioUrl,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}
	return episode, nil
}

func DeleteEpisode(ctx context.Context, storage utils.ObjectStorage, id int) error {

	episode, err := utils.FetchModel[Episode](ctx, id)
	if err != nil {
		return err
	}

	for _, url := range []string{episode.ImageUrl, episode.AudioUrl} {
		if warn := removeStoredObject(ctx, storage, url); warn != "" {
			config.LogWarn(config.GetLogger(), "episode.go", "DeleteEpisode", "removeStoredObject", warn)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&Episode{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}

func GetEpisodes(ctx context.Context) ([]*Episode, error) {
	return utils.FetchAllModels[Episode](ctx)
}

func GetEpisode(ctx context.Context, id int) (*Episode, error) {
	return utils.FetchModel[Episode](ctx, id)
}

// audio is stored as-is, no re-encoding
func uploadEpisodeAudio(ctx context.Context, storage utils.ObjectStorage, file *FormFile) (string, error) {
	ext := filepath.Ext(file.Filename)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	objectKey := fmt.Sprintf("episodes/audio/%s%s", uuid.NewString(), ext)
	return storage.Upload(ctx, objectKey, file.Data, contentType)
}
