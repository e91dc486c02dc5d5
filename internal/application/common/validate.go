// Package common holds helpers shared by the application services: request
// validation, list filters and post-commit event publishing.
package common

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntityTypeRequest is the entity type attached to request validation errors
const EntityTypeRequest = "Request"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator. Field names in errors are
// taken from json tags; decimal.Decimal fields are compared as numbers, so
// the numeric tags (gte, gt, lte) apply to them.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		validate = v
	})
	return validate
}

// Validate checks req against its validate tags and returns a
// shared.DomainError of kind Validation naming every offending field.
func Validate(req any) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewValidationError(EntityTypeRequest, uuid.Nil, "INVALID_REQUEST", err.Error())
	}

	fields := make([]string, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		messages = append(messages, fieldMessage(fe))
	}
	return shared.NewValidationError(EntityTypeRequest, uuid.Nil, "INVALID_REQUEST",
		strings.Join(messages, "; "), fields...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return field + " must be at least " + fe.Param() + " characters"
		case reflect.Slice:
			return field + " must have at least " + fe.Param() + " entries"
		}
		return field + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return field + " must be at most " + fe.Param() + " characters"
		}
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "gtefield":
		return field + " must not be before " + fe.Param()
	default:
		return field + " is invalid"
	}
}
