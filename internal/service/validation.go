package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// enum delegates to the closed domain types.
		_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(domain.Enum)
			return ok && e.Valid()
		})
	})
	return validate
}

// validateRequest rejects malformed requests at the boundary with
// domain.ErrInvalidValue.
func validateRequest(op string, req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", op, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%s: %s: %w", op, strings.Join(msgs, "; "), domain.ErrInvalidValue)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "enum":
		return fmt.Sprintf("%s %q is not allowed", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s fails %s", field, fe.Tag())
	}
}
