package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's Validate
// hook.  Field names in errors are the JSON names.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator builds the validator used by every handler.
func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// fieldErrors unwraps validator errors.  Anything else (a missing
// validator, a non-struct) comes back as nil.
func fieldErrors(err error) validator.ValidationErrors {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// failedTag reports whether any field failed with the given tag.
func failedTag(err error, tag string) bool {
	for _, fe := range fieldErrors(err) {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
