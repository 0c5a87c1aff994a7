package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type fieldErrors []fieldError

func (f fieldErrors) Error() string {
	var s []string
	for _, err := range f {
		s = append(s, err.Error())
	}
	return strings.Join(s, ", ")
}

type fieldError struct {
	Field string
	Msg   string
}

func (f fieldError) Error() string {
	return fmt.Sprintf("%s %s", f.Field, f.Msg)
}

// validateStruct runs the struct tags and reports every failing field in one
// ErrInvalidInput.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var errs fieldErrors
	for _, valErr := range valErrs {
		errs = append(errs, buildFieldError(valErr))
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
}

func buildFieldError(f validator.FieldError) fieldError {
	switch f.Tag() {
	case "required":
		return fieldError{Field: f.Field(), Msg: "is required"}
	case "min":
		return fieldError{Field: f.Field(), Msg: fmt.Sprintf("must be at least %s", f.Param())}
	case "max":
		return fieldError{Field: f.Field(), Msg: fmt.Sprintf("must be at most %s", f.Param())}
	default:
		return fieldError{Field: f.Field(), Msg: fmt.Sprintf("invalid value tag %s", f.Tag())}
	}
}
