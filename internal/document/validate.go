package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidDocument
}

// Validate checks a raw record against its struct constraints.
func Validate(raw *RawDocument) error {
	if raw == nil {
		return fmt.Errorf("%w: nil record", apperrors.ErrInvalidDocument)
	}
	err := validate.Struct(raw)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "max":
			fields[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			fields[field] = fmt.Sprintf("failed %s check", fe.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}
