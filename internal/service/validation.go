package service

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/antonio-alexander/go-employee-facade/internal/data"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ValidationError is returned when a request body can't be decoded or
// fails validation
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid input: %s", e.Err)
	}
	fields := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		fields = append(fields, field+" "+reason)
	}
	sort.Strings(fields)
	return "invalid input: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return validate
}

func validateEmployeeInput(validate *validator.Validate, employeeInput *data.EmployeeInput) error {
	var errs validator.ValidationErrors

	err := validate.Struct(employeeInput)
	if err == nil {
		return nil
	}
	if !errors.As(err, &errs) {
		return &ValidationError{Err: err}
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		default:
			fields[e.Field()] = "is invalid"
		case "required", "notblank":
			fields[e.Field()] = "is required"
		case "gt":
			fields[e.Field()] = "must be greater than " + e.Param()
		case "min":
			fields[e.Field()] = "must be at least " + e.Param()
		case "max":
			fields[e.Field()] = "must be at most " + e.Param()
		}
	}
	return &ValidationError{Fields: fields, Err: err}
}
