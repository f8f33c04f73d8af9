package apiutil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the `validate` tags on v and returns a field->message
// map keyed by JSON field name, or nil when v is valid.
func ValidateStruct(v any) map[string]string {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		name := fieldErr.Field()
		if _, exists := fields[name]; exists {
			continue
		}
		fields[name] = validationMessage(fieldErr)
	}
	return fields
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	case "uuid4", "uuid":
		return "must be a valid id"
	}
	return fmt.Sprintf("is invalid (%s)", fieldErr.Tag())
}
