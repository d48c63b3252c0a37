package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report json field names rather than Go struct field names
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := Validate.RegisterValidation("todo_priority", validateTodoPriority); err != nil {
		panic(fmt.Sprintf("failed to register todo_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("todo_status", validateTodoStatus); err != nil {
		panic(fmt.Sprintf("failed to register todo_status validator: %v", err))
	}
}

func validateTodoPriority(fl validator.FieldLevel) bool {
	return models.TodoPriority(fl.Field().String()).Valid()
}

func validateTodoStatus(fl validator.FieldLevel) bool {
	return models.TodoStatus(fl.Field().String()).Valid()
}

// Struct validates v and converts failures into an apperr validation error
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	return apperr.Validation("Request validation failed", FieldErrors(verrs)...)
}

// FieldErrors translates validator failures into client-facing messages
func FieldErrors(verrs validator.ValidationErrors) []apperr.FieldError {
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "todo_priority":
		return "must be 'low', 'medium', or 'high'"
	case "todo_status":
		return "must be 'todo', 'in-progress', or 'done'"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
