package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is the request validator shared by services and handlers
type Validator struct {
	business *BusinessValidator
}

// New creates a validator with all business rules registered
func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct tag validation and returns ValidationErrors, or nil
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator exposes the rule set for request-specific checks
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// jsonFieldName reports fields by their JSON names in validation errors
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func newValidate() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return validate
}
