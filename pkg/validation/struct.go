package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared struct validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("loglevel", validateLogLevel)
		instance = v
	})
	return instance
}

// Struct validates s against its `validate` tags and returns a readable error
// listing every failed field.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return formatValidationErrors(validationErrors)
	}
	return fmt.Errorf("validation failed: %w", err)
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	msgs := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", field))
		case "gt", "gte", "lt", "lte", "min", "max":
			msgs = append(msgs, fmt.Sprintf("field '%s' must satisfy %s=%s, got %v", field, tag, fieldError.Param(), value))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of [%s], got '%v'", field, fieldError.Param(), value))
		case "loglevel":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of: debug, info, warn, error", field))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation '%s'", field, tag))
		}
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}
