package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var (
	validate = validator.New()

	skuCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)
	skuPattern     = regexp.MustCompile(`^[A-Za-z0-9]{1,10}-[0-9]{1,18}$`)
)

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	// Category prefix used to build SKUs
	validate.RegisterValidation("skucode", func(fl validator.FieldLevel) bool {
		return skuCodePattern.MatchString(fl.Field().String())
	})
	// Product SKU: <skucode>-<number>
	validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Message renders the first failure as a user-facing sentence.
func Message(errs []*ErrorResponse) string {
	if len(errs) == 0 {
		return ""
	}
	first := errs[0]
	field := first.FailedField[strings.LastIndex(first.FailedField, ".")+1:]
	switch first.Tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "skucode":
		return "SKU code must be 1-10 letters or digits"
	case "sku":
		return "SKU must look like <code>-<number>"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, first.Value)
	default:
		return fmt.Sprintf("Field '%s' failed on tag '%s'", field, first.Tag)
	}
}

// IsSKU reports whether s is a well-formed product SKU.
func IsSKU(s string) bool {
	return skuPattern.MatchString(s)
}
