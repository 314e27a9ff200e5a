package models

import "testing"

func validTopPickInput() *NewTopPick {
	return &NewTopPick{
		Name:         "In My Arms",
		Artist:       "Kelvin Momo",
		PurchaseLink: "https://bandcamp.com/in-my-arms",
		Tag:          "Deep-House",
		Image:        &FormFile{Filename: "cover.jpg", Data: []byte("jpeg")},
	}
}

func TestNewTopPickValidate_Ok(t *testing.T) {
	if ve := validTopPickInput().validate(); ve != nil {
		t.Fatalf("unexpected validation error: %v", ve.Errors)
	}
}

func TestNewTopPickValidate_MissingFields(t *testing.T) {
	ve := (&NewTopPick{}).validate()
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	for field, want := range map[string]string{
		"name":          "Name is required",
		"artist":        "Artist is required",
		"purchase_link": "Purchase link is required",
	} {
		if msgs := ve.Errors[field]; len(msgs) != 1 || msgs[0] != want {
			t.Fatalf("field %q: want %q, got %v", field, want, ve.Errors)
		}
	}
}

func TestNewTopPickValidate_UnknownTag(t *testing.T) {
	input := validTopPickInput()
	input.Tag = "Bedroom-Pop"
	ve := input.validate()
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["tag"]; len(msgs) != 1 || msgs[0] != "Unknown tag" {
		t.Fatalf("unexpected tag errors: %v", ve.Errors)
	}
}

func TestNewTopPickValidate_OversizedImage(t *testing.T) {
	input := validTopPickInput()
	input.Image = &FormFile{Filename: "big.jpg", Data: make([]byte, MaxImageSizeBytes+1)}
	ve := input.validate()
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["image"]; len(msgs) != 1 || msgs[0] != "File size must be less than 5MB" {
		t.Fatalf("unexpected image errors: %v", ve.Errors)
	}
}
