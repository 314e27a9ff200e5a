package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

// VideoEpisode is a YouTube-hosted mix. The full link is stored; the player
// extracts the video id client-side.
type VideoEpisode struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Artist      string    `gorm:"size:100;not null" json:"artist"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Tag         string    `gorm:"size:50" json:"tag"`
	ImageUrl    string    `gorm:"size:500" json:"image_url"`
	VideoUrl    string    `gorm:"size:500;not null" json:"video_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVideoEpisode struct {
	Name        string `json:"name" binding:"required"`
	Artist      string `json:"artist" binding:"required"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	VideoUrl    string `json:"video_url" binding:"required"`
	Image       *FormFile
}

func (input *NewVideoEpisode) validate(requireMedia bool) *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save episode."}
	checkRequiredFields(ve, input)
	if len(input.Description) < 15 {
		ve.add("description", "Description needs to be 15+ characters")
	}
	if input.Tag != "" && !validGenreTag(input.Tag) {
		ve.add("tag", "Unknown tag")
	}
	if input.VideoUrl != "" && utils.ExtractYouTubeVideoId(input.VideoUrl) == "" {
		ve.add("video_url", "Video link must be a YouTube URL")
	}
	if requireMedia && (input.Image == nil || len(input.Image.Data) == 0) {
		ve.add("image", "Image is required")
	}
	if input.Image != nil && len(input.Image.Data) > MaxImageSizeBytes {
		ve.add("image", "File size must be less than 5MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateVideoEpisode(ctx context.Context, storage utils.ObjectStorage, input *NewVideoEpisode) (*VideoEpisode, error) {

	if ve := input.validate(true); ve != nil {
		return nil, ve
	}

	imageUrl, err := uploadEntityImage(ctx, storage, "episodes/video", input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	episode := VideoEpisode{
		Name:        input.Name,
		Artist:      input.Artist,
		Description: input.Description,
		Tag:         input.Tag,
		ImageUrl:    imageUrl,
		VideoUrl:    input.VideoUrl,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&episode).Error; err != nil {
		return nil, fmt.Errorf("failed to insert video episode: %w", err)
	}
	return &episode, nil
}

// EditVideoEpisode keeps the stored cover unless replaced.
func EditVideoEpisode(ctx context.Context, storage utils.ObjectStorage, id int, input *NewVideoEpisode) (*VideoEpisode, error) {

	if ve := input.validate(false); ve != nil {
		return nil, ve
	}

	episode, err := utils.FetchModel[VideoEpisode](ctx, id)
	if err != nil {
		return nil, err
	}

	imageUrl := episode.ImageUrl
	if input.Image != nil && len(input.Image.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, episode.ImageUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "videoEpisode.go", "EditVideoEpisode", "removeStoredObject", warn)
		}
		imageUrl, err = uploadEntityImage(ctx, storage, "episodes/video", input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(episode).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Artist":      input.Artist,
		"Description": input.Description,
		"Tag":         input.Tag,
		"ImageUrl":    imageUrl,
		"VideoUrl":    input.VideoUrl,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update video episode: %w", err)
	}
	return episode, nil
}

func DeleteVideoEpisode(ctx context.Context, storage utils.ObjectStorage, id int) error {

	episode, err := utils.FetchModel[VideoEpisode](ctx, id)
	if err != nil {
		return err
	}

	if warn := removeStoredObject(ctx, storage, episode.ImageUrl); warn != "" {
		config.LogWarn(config.GetLogger(), "videoEpisode.go", "DeleteVideoEpisode", "removeStoredObject", warn)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&VideoEpisode{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete video episode: %w", err)
	}
	return nil
}

func GetVideoEpisodes(ctx context.Context) ([]*VideoEpisode, error) {
	return utils.FetchAllModels[VideoEpisode](ctx)
}

func GetVideoEpisode(ctx context.Context, id int) (*VideoEpisode, error) {
	return utils.FetchModel[VideoEpisode](ctx, id)
}

// MergedEpisode is the public listing shape: audio and video episodes in one
// feed, each pointing at its playable media.
type MergedEpisode struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"` // "audio" or "video"
	Name        string    `json:"name"`
	Artist      string    `json:"artist"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	ImageUrl    string    `json:"image_url"`
	MediaUrl    string    `json:"media_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func GetMergedEpisodes(ctx context.Context) ([]*MergedEpisode, error) {
	audios, err := GetEpisodes(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := GetVideoEpisodes(ctx)
	if err != nil {
		return nil, err
	}
	return mergeEpisodes(audios, videos), nil
}

// mergeEpisodes interleaves both feeds newest-first.
func mergeEpisodes(audios []*Episode, videos []*VideoEpisode) []*MergedEpisode {
	merged := make([]*MergedEpisode, 0, len(audios)+len(videos))
	for _, e := range audios {
		merged = append(merged, &MergedEpisode{
			ID:          e.ID,
			Type:        "audio",
			Name:        e.Name,
			Artist:      e.Artist,
			Description: e.Description,
			ImageUrl:    e.ImageUrl,
			MediaUrl:    e.AudioUrl,
			CreatedAt:   e.CreatedAt,
		})
	}
	for _, e := range videos {
		merged = append(merged, &MergedEpisode{
			ID:          e.ID,
			Type:        "video",
			Name:        e.Name,
			Artist:      e.Artist,
			Description: e.Description,
			Tag:         e.Tag,
			ImageUrl:    e.ImageUrl,
			MediaUrl:    e.VideoUrl,
			CreatedAt:   e.CreatedAt,
		})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}
