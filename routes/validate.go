package routes

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report errors under the json field name, as the forms submit them.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateForm returns field-level error messages, or nil when the payload
// is valid. Validation always runs before any side effect.
func validateForm(form any) map[string]string {
	if err := validate.Struct(form); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}

	for _, e := range verrs {
		if _, exists := out[e.Field()]; !exists {
			out[e.Field()] = messageFor(e)
		}
	}
	return out
}

func messageFor(e validator.FieldError) string {
	label := labelFor(e.Field())
	switch e.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be less than %s characters", label, e.Param())
	case "min", "gte":
		return label + " must be a positive number"
	}
	return label + " is invalid"
}

// labelFor turns a json field name into the label used in messages,
// e.g. "sort_order" -> "Sort order".
func labelFor(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
