package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formValidator checks bound form structs and reports problems by their form
// field names so the login page can show them as-is.
type formValidator struct {
	v *validator.Validate
}

func NewValidator() *formValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return &formValidator{v: v}
}

func (fv *formValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	problems := make([]string, 0, len(ve))
	for _, fe := range ve {
		problems = append(problems, describe(fe))
	}
	return errors.New(strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "enter a valid email address"
	default:
		return fe.Field() + " is not valid"
	}
}
