package models

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"bitbucket.org/sxnics/sxnics_backend/utils"
)

// The admin inventory form submits one field group per catalog color:
//
//	checked_{colorName}                 checkbox
//	image_{colorName}                   file part, or a pass-through locator string on edit
//	quantity_{colorName}_{sizeName}     one per real size when the item type has sizes
//	quantity_{colorName}                single quantity otherwise
//
// ParseInventoryForm walks the catalog color/size lists (never the raw field
// keys) and shapes the submission into a typed map keyed by color id.

type FormFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ColorInventory struct {
	Color    Color
	Checked  bool
	NewImage *FormFile
	// ImageURL is a carried-over public locator for an already uploaded
	// image. Mutually exclusive with NewImage; NewImage wins when both
	// are submitted.
	ImageURL   string
	Quantities map[int]int // Size.ID -> quantity
}

type InventoryFormData struct {
	HasSizes bool
	Colors   map[int]*ColorInventory // Color.ID -> submitted values

	sizeNames map[int]string // Size.ID -> name, for field-level error reporting
}

// ParseError aborts the whole submission before validation runs. It marks a
// malformed field value (a non-numeric, non-empty quantity), which the form
// UI cannot produce; redisplaying field errors would not help.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse field %q: invalid value %q", e.Field, e.Value)
}

// ValidationError carries field-level messages for form redisplay.
// No side effects have occurred when one is returned.
type ValidationError struct {
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) add(field, msg string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], msg)
}

func ParseInventoryForm(form *multipart.Form, colors []*Color, sizes []*Size, hasSizes, editMode bool) (*InventoryFormData, error) {

	defaultSize, err := DefaultSize(sizes)
	if err != nil {
		return nil, fmt.Errorf("size catalog has no %q row: %w", SizeNameDefault, err)
	}

	data := &InventoryFormData{
		HasSizes:  hasSizes,
		Colors:    make(map[int]*ColorInventory, len(colors)),
		sizeNames: make(map[int]string, len(sizes)),
	}
	for _, size := range sizes {
		data.sizeNames[size.ID] = size.Name
	}

	for _, color := range colors {
		entry := &ColorInventory{
			Color:      *color,
			Checked:    formFlag(form, "checked_"+color.Name),
			Quantities: make(map[int]int),
		}

		if err := readColorImage(form, color.Name, entry, editMode); err != nil {
			return nil, err
		}

		if hasSizes {
			for _, size := range RealSizes(sizes) {
				field := fmt.Sprintf("quantity_%s_%s", color.Name, size.Name)
				qty, err := formQuantity(form, field)
				if err != nil {
					return nil, err
				}
				entry.Quantities[size.ID] = qty
			}
		} else {
			qty, err := formQuantity(form, "quantity_"+color.Name)
			if err != nil {
				return nil, err
			}
			entry.Quantities[defaultSize.ID] = qty
		}

		data.Colors[color.ID] = entry
	}

	return data, nil
}

// Validate applies the business rules reported per field. Quantities and
// images of unchecked colors are ignored.
func (f *InventoryFormData) Validate() *ValidationError {

	ve := &ValidationError{Message: "Missed fields, failed to save item."}

	anyChecked := false
	for _, entry := range f.Colors {
		if entry.Checked {
			anyChecked = true
			break
		}
	}
	if !anyChecked {
		ve.add("colors", "At least one color must be selected")
		return ve
	}

	for _, entry := range f.Colors {
		if !entry.Checked {
			continue
		}
		if !entry.HasImage() {
			ve.add("image_"+entry.Color.Name, "Image is required")
		} else if entry.NewImage != nil && len(entry.NewImage.Data) > MaxImageSizeBytes {
			ve.add("image_"+entry.Color.Name, "File size must be less than 5MB")
		}
		for sizeId, qty := range entry.Quantities {
			if qty >= 0 {
				continue
			}
			field := "quantity_" + entry.Color.Name
			if f.HasSizes {
				field += "_" + f.sizeNames[sizeId]
			}
			ve.add(field, "Quantity should be greater than -1")
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// ApplyUncheckedColorIds force-unchecks colors the edit form reported as
// removed. Belt against browsers omitting unchecked checkbox fields for
// colors whose section was collapsed.
func (f *InventoryFormData) ApplyUncheckedColorIds(colorIds []int) {
	for _, id := range colorIds {
		if entry, ok := f.Colors[id]; ok {
			entry.Checked = false
		}
	}
}

// HasImage reports whether the color has a resolvable image: a non-empty new
// upload or a carried-over locator.
func (ci *ColorInventory) HasImage() bool {
	if ci.NewImage != nil && len(ci.NewImage.Data) > 0 {
		return true
	}
	return ci.ImageURL != ""
}

func formFlag(form *multipart.Form, field string) bool {
	vals := form.Value[field]
	if len(vals) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(vals[0])) {
	case "true", "on", "1":
		return true
	}
	return false
}

// formQuantity reads an integer quantity field. Absent or empty fields
// default to 0; a non-numeric non-empty value is a hard parse error.
func formQuantity(form *multipart.Form, field string) (int, error) {
	vals := form.Value[field]
	if len(vals) == 0 {
		return 0, nil
	}
	raw := strings.TrimSpace(vals[0])
	if raw == "" {
		return 0, nil
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw}
	}
	return qty, nil
}

// readColorImage accepts a value as an image only if it is a non-empty binary
// upload OR, on edit, a string matching the public-storage URL shape. Carried
// locators only exist on edit; on create any string value is ignored so a
// client cannot point a fresh item at an arbitrary stored object.
func readColorImage(form *multipart.Form, colorName string, entry *ColorInventory, editMode bool) error {
	field := "image_" + colorName

	if headers := form.File[field]; len(headers) > 0 {
		file, err := ReadFormFile(headers[0])
		if err != nil {
			return err
		}
		if file != nil && len(file.Data) > 0 {
			entry.NewImage = file
			return nil
		}
	}

	if !editMode {
		return nil
	}

	if vals := form.Value[field]; len(vals) > 0 {
		if url := strings.TrimSpace(vals[0]); utils.IsStorageURL(url) {
			entry.ImageURL = url
		}
	}
	return nil
}

// ReadFormFile buffers an uploaded part into memory.
func ReadFormFile(header *multipart.FileHeader) (*FormFile, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %q: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %q: %w", header.Filename, err)
	}
	return &FormFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
