// Package validate wraps go-playground/validator with wire-level field names,
// so a failed join submission reads "userId required" rather than "UserID
// required" in the API error envelope.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Struct validates a tagged struct and joins all failures into one message,
// one "field rule" pair per failed field.
func Struct(s interface{}) error {
	if s == nil {
		return errors.New("is nil")
	}
	if !isStruct(s) {
		return errors.New("not a struct")
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validation: %w", err)
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// jsonFieldName reports a field under its json tag name, matching the
// camelCase request bodies of the API.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func isStruct(s interface{}) bool {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
