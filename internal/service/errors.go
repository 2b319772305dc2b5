package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports malformed or missing input.  It is always
// returned before any store mutation happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describe turns validator output into a ValidationError naming the first
// offending field.
func describe(err error, prefix string) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &ValidationError{Reason: prefix + err.Error()}
	}
	fe := fields[0]
	switch fe.Tag() {
	case "required":
		return invalid("%s%s is required", prefix, fe.Field())
	case "gte":
		return invalid("%s%s must not be negative", prefix, fe.Field())
	case "max":
		return invalid("%s%s is too long", prefix, fe.Field())
	default:
		return invalid("%s%s is invalid", prefix, fe.Field())
	}
}
