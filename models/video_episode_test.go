package models

import (
	"testing"
	"time"
)

func validVideoEpisodeInput() *NewVideoEpisode {
	return &NewVideoEpisode{
		Name:        "Rooftop Session 004",
		Artist:      "Sio",
		Description: "Recorded live at sunset.",
		Tag:         "Afro-House",
		VideoUrl:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Image:       &FormFile{Filename: "cover.jpg", Data: []byte("jpeg")},
	}
}

func TestNewVideoEpisodeValidate_Ok(t *testing.T) {
	if ve := validVideoEpisodeInput().validate(true); ve != nil {
		t.Fatalf("unexpected validation error: %v", ve.Errors)
	}
}

func TestNewVideoEpisodeValidate_NonYouTubeLink(t *testing.T) {
	input := validVideoEpisodeInput()
	input.VideoUrl = "https://vimeo.com/12345"
	ve := input.validate(true)
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["video_url"]; len(msgs) != 1 || msgs[0] != "Video link must be a YouTube URL" {
		t.Fatalf("unexpected video_url errors: %v", ve.Errors)
	}
}

func TestNewVideoEpisodeValidate_MissingVideoUrl(t *testing.T) {
	input := validVideoEpisodeInput()
	input.VideoUrl = ""
	ve := input.validate(true)
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["video_url"]; len(msgs) != 1 || msgs[0] != "Video url is required" {
		t.Fatalf("unexpected video_url errors: %v", ve.Errors)
	}
}

func TestNewVideoEpisodeValidate_ImageOptionalOnEdit(t *testing.T) {
	input := validVideoEpisodeInput()
	input.Image = nil
	if ve := input.validate(false); ve != nil {
		t.Fatalf("edit must not require a new image: %v", ve.Errors)
	}
	if ve := input.validate(true); ve == nil || len(ve.Errors["image"]) != 1 {
		t.Fatalf("create must require an image")
	}
}

func TestMergeEpisodes(t *testing.T) {
	at := func(day int) time.Time {
		return time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
	}
	audios := []*Episode{
		{ID: 1, Name: "Audio Old", AudioUrl: "https://cdn/audio-old.mp3", CreatedAt: at(1)},
		{ID: 2, Name: "Audio New", AudioUrl: "https://cdn/audio-new.mp3", CreatedAt: at(20)},
	}
	videos := []*VideoEpisode{
		{ID: 7, Name: "Video Mid", VideoUrl: "https://youtu.be/abc", CreatedAt: at(10)},
	}

	merged := mergeEpisodes(audios, videos)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged entries, got %d", len(merged))
	}
	wantOrder := []string{"Audio New", "Video Mid", "Audio Old"}
	for i, want := range wantOrder {
		if merged[i].Name != want {
			t.Fatalf("position %d: want %q, got %q", i, want, merged[i].Name)
		}
	}
	if merged[0].Type != "audio" || merged[0].MediaUrl != "https://cdn/audio-new.mp3" {
		t.Fatalf("audio entry must expose its audio url: %+v", merged[0])
	}
	if merged[1].Type != "video" || merged[1].MediaUrl != "https://youtu.be/abc" {
		t.Fatalf("video entry must expose its video url: %+v", merged[1])
	}
}
