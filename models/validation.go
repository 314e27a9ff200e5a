package models

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Failed binding fields are reported under the json names the admin forms
// submit, not the Go field names.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// checkRequiredFields runs the input struct's binding tags through the shared
// gin validator and folds each failure into ve with the admin form's inline
// copy, e.g. "Name is required" under "name".
func checkRequiredFields(ve *ValidationError, input interface{}) {
	err := binding.Validator.ValidateStruct(input)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.add("form", "Submission could not be validated")
		return
	}
	mergeBindingErrors(ve, verrs)
}

// BindingValidationError converts a gin ShouldBind failure into the
// field-level error shape the admin forms render. A non-validator error
// (malformed JSON and the like) yields nil; those are not field errors.
func BindingValidationError(message string, err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	ve := &ValidationError{Message: message}
	mergeBindingErrors(ve, verrs)
	return ve
}

func mergeBindingErrors(ve *ValidationError, verrs validator.ValidationErrors) {
	for field, tag := range utils.ProcessValidationErrors(verrs) {
		switch tag {
		case "required":
			ve.add(field, fieldLabel(field)+" is required")
		default:
			ve.add(field, "Invalid "+fieldLabel(field))
		}
	}
}

// fieldLabel turns a json field name into display copy: "purchase_link"
// becomes "Purchase link".
func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	runes := []rune(label)
	if len(runes) == 0 {
		return label
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
