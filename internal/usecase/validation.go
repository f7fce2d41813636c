package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when input is missing or malformed.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func IsValidationError(err error) bool {
	var target ValidationErrors
	return errors.As(err, &target)
}

func invalid(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of input and converts failures into
// ValidationErrors keyed by JSON field name.
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// leadFieldError maps entity rule violations to field errors.
func leadFieldError(err error) error {
	switch {
	case errors.Is(err, entity.ErrFullNameRequired):
		return invalid("full_name", "is required")
	case errors.Is(err, entity.ErrInvalidStage):
		return invalid("stage", "must be one of New, Contacted, Booked, Estimate Sent, Closed Won, Closed Lost")
	case errors.Is(err, entity.ErrNegativeEstimateValue):
		return invalid("estimated_value", "must not be negative")
	case errors.Is(err, entity.ErrEstimateValueTooLarge):
		return invalid("estimated_value", "must not exceed "+entity.MaxEstimateValue.StringFixed(entity.EstimateValueScale))
	case errors.Is(err, entity.ErrNoteTextRequired):
		return invalid("note_text", "is required")
	}
	return nil
}
