package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/siteforge/siteforge/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("duration_unit", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "day", "week", "month", "year":
			return true
		}
		return false
	})
}

// Validator exposes the shared validator so packages can register struct-level rules.
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct validates s and returns a validation AppError whose Fields map
// JSON paths (e.g. "customer.username") to messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	fields := make(map[string][]string)
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		path := fieldPath(fe)
		msg := getFieldErrorMessage(path, fe)
		fields[path] = append(fields[path], msg)
		messages = append(messages, msg)
	}

	appErr := errors.NewFieldValidationError("Validation failed", fields)
	appErr.Details = strings.Join(messages, "; ")
	return appErr
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func getFieldErrorMessage(field string, fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_with", "required_without", "required_without_all":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "alphanum":
		return fmt.Sprintf("%s must contain only alphanumeric characters", field)
	case "lowercase":
		return fmt.Sprintf("%s must be lowercase", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "duration_unit":
		return fmt.Sprintf("%s must be one of [day week month year]", field)
	case "iso3166_1_alpha2":
		return fmt.Sprintf("%s must be a two letter country code", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
