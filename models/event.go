package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
)

type Event struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	EventBy    string    `gorm:"size:100" json:"event_by"`
	Location   string    `gorm:"size:255;not null" json:"location"`
	About      string    `gorm:"type:text" json:"about"`
	TicketLink string    `gorm:"size:500" json:"ticket_link"`
	CoverUrl   string    `gorm:"size:500" json:"cover_url"`
	EventDate  time.Time `gorm:"not null" json:"event_date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEvent struct {
	Name       string    `json:"name" binding:"required"`
	EventBy    string    `json:"event_by"`
	Location   string    `json:"location" binding:"required"`
	About      string    `json:"about"`
	TicketLink string    `json:"ticket_link"`
	EventDate  time.Time `json:"event_date"`
	Cover      *FormFile
}

func (input *NewEvent) validate() *ValidationError {
	ve := &ValidationError{Message: "Missed fields, failed to save event."}
	checkRequiredFields(ve, input)
	if input.EventDate.IsZero() {
		ve.add("eventDate", "Event date is required")
	}
	if input.Cover != nil && len(input.Cover.Data) > MaxImageSizeBytes {
		ve.add("cover", "File size must be less than 5MB")
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func CreateEvent(ctx context.Context, storage utils.ObjectStorage, input *NewEvent) (*Event, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}
	if input.Cover == nil || len(input.Cover.Data) == 0 {
		ve := &ValidationError{Message: "Missed fields, failed to save event."}
		ve.add("cover", "Cover image is required")
		return nil, ve
	}

	coverUrl, err := uploadEntityImage(ctx, storage, "events", input.Cover)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover: %w", err)
	}

	event := Event{
		Name:       input.Name,
		EventBy:    input.EventBy,
		Location:   input.Location,
		About:      input.About,
		TicketLink: input.TicketLink,
		CoverUrl:   coverUrl,
		EventDate:  input.EventDate,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return &event, nil
}

func EditEvent(ctx context.Context, storage utils.ObjectStorage, id int, input *NewEvent) (*Event, error) {

	if ve := input.validate(); ve != nil {
		return nil, ve
	}

	event, err := utils.FetchModel[Event](ctx, id)
	if err != nil {
		return nil, err
	}

	coverUrl := event.CoverUrl
	if input.Cover != nil && len(input.Cover.Data) > 0 {
		if warn := removeStoredObject(ctx, storage, event.CoverUrl); warn != "" {
			config.LogWarn(config.GetLogger(), "event.go", "EditEvent", "removeStoredObject", warn)
		}
		coverUrl, err = uploadEntityImage(ctx, storage, "events", input.Cover)
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover: %w", err)
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(event).Updates(map[string]interface{}{
		"Name":       input.Name,
		"EventBy":    input.EventBy,
		"Location":   input.Location,
		"About":      input.About,
		"TicketLink": input.TicketLink,
		"CoverUrl":   coverUrl,
		"EventDate":  input.EventDate,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func DeleteEvent(ctx context.Context, storage utils.ObjectStorage, id int) error {

	event, err := utils.FetchModel[Event](ctx, id)
	if err != nil {
		return err
	}

	if warn := removeStoredObject(ctx, storage, event.CoverUrl); warn != "" {
		config.LogWarn(config.GetLogger(), "event.go", "DeleteEvent", "removeStoredObject", warn)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&Event{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func GetEvents(ctx context.Context) ([]*Event, error) {
	return utils.FetchAllModels[Event](ctx)
}

func GetEvent(ctx context.Context, id int) (*Event, error) {
	return utils.FetchModel[Event](ctx, id)
}
