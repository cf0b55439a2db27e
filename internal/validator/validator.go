package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validator bundles struct-tag validation with the business rule validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{
		validate: validator.New(),
		business: NewBusinessValidator(),
	}
}

// ValidateStruct runs struct-tag validation only.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
