package models

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

func TestNewArtistValidate_MissingName(t *testing.T) {
	input := &NewArtist{Bio: "some bio"}
	ve := input.validate()
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["name"]; len(msgs) != 1 || msgs[0] != "Name is required" {
		t.Fatalf("unexpected name errors: %v", ve.Errors)
	}
}

func TestNewEventValidate_MissingFields(t *testing.T) {
	input := &NewEvent{About: "lineup tba"}
	ve := input.validate()
	if ve == nil {
		t.Fatalf("expected validation error")
	}
	if msgs := ve.Errors["name"]; len(msgs) != 1 || msgs[0] != "Name is required" {
		t.Fatalf("unexpected name errors: %v", ve.Errors)
	}
	if msgs := ve.Errors["location"]; len(msgs) != 1 || msgs[0] != "Location is required" {
		t.Fatalf("unexpected location errors: %v", ve.Errors)
	}
}

func TestNewShopItemValidate_RequiredFieldsUseJsonNames(t *testing.T) {
	ve := &ValidationError{Message: "Missed fields, failed to save item."}
	checkRequiredFields(ve, &NewShopItem{})
	if msgs := ve.Errors["name"]; len(msgs) != 1 || msgs[0] != "Name is required" {
		t.Fatalf("unexpected name errors: %v", ve.Errors)
	}
	if msgs := ve.Errors["description"]; len(msgs) != 1 || msgs[0] != "Description is required" {
		t.Fatalf("unexpected description errors: %v", ve.Errors)
	}
	if _, ok := ve.Errors["Name"]; ok {
		t.Fatalf("errors must be keyed by json name, got %v", ve.Errors)
	}
}

func TestBindingValidationError(t *testing.T) {
	err := binding.Validator.ValidateStruct(&OrderStatusUpdate{})
	if err == nil {
		t.Fatalf("expected a binding failure for an empty status")
	}
	ve := BindingValidationError("Missed fields, failed to update order.", err)
	if ve == nil {
		t.Fatalf("expected a ValidationError")
	}
	if msgs := ve.Errors["status"]; len(msgs) != 1 || msgs[0] != "Status is required" {
		t.Fatalf("unexpected status errors: %v", ve.Errors)
	}
}

func TestBindingValidationError_IgnoresNonValidatorErrors(t *testing.T) {
	if ve := BindingValidationError("nope", errors.New("unexpected EOF")); ve != nil {
		t.Fatalf("plain errors are not field errors, got %v", ve)
	}
}

func TestFieldLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"name", "Name"},
		{"purchase_link", "Purchase link"},
		{"status", "Status"},
		{"", ""},
	}
	for _, c := range cases {
		if got := fieldLabel(c.in); got != c.want {
			t.Fatalf("fieldLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
