package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog-service/internal/model"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// messages use the display name of a field, falling back to its Go name
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("display"); name != "" {
			return name
		}
		return fld.Name
	})
}

// validateForm runs the struct rules on form and records one message per failing field in errs,
// keyed by the Go field name the templates use
func validateForm(form interface{}, errs *model.FormErrors) error {
	err := Validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		errs.Add(fe.StructField(), validationMessage(fe))
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Uint || fe.Kind() == reflect.Int {
			return fmt.Sprintf("You must select a %s.", strings.ToLower(fe.Field()))
		}
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The field %s must be a string with a maximum length of %s.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("The field %s must be greater than or equal to %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The field %s is invalid.", fe.Field())
	}
}
