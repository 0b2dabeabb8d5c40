// Package validate wraps go-playground/validator and reports failures as
// apperr validation errors keyed by JSON field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
)

// Validator checks request structs
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// rfc3339 accepts timestamps like 2024-01-02T03:04:05Z
	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Struct validates s. msg becomes the public message of the returned error.
func (v *Validator) Struct(msg string, s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	return apperr.Invalid(msg, fieldMessages(verrs))
}

// Var validates a single value against tag
func (v *Validator) Var(msg string, field any, tag string) error {
	if err := v.v.Var(field, tag); err != nil {
		return apperr.New(apperr.Validation, msg)
	}
	return nil
}

func fieldMessages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "url", "http_url":
			out[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "rfc3339":
			out[field] = fmt.Sprintf("%s must be an RFC 3339 timestamp", field)
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters long", field, err.Param())
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return out
}
