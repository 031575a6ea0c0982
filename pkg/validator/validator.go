// Package validator checks request bodies with go-playground/validator and
// renders failures as Spanish messages keyed by JSON field name.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// notblank rejects values made only of whitespace, e.g. a shipping
	// address of "   ".
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Validate checks s against its validate tags. Tag violations come back as
// *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("el campo '%s' %s", fe.Field(), message(fe)))
	}
	return strings.Join(parts, "; ")
}

// Fields maps each failing JSON field to its message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field()] = message(fe)
	}
	return out
}

// messages holds a template per tag; %s is the tag parameter. Length tags on
// strings read as character counts.
var messages = map[string]string{
	"required": "es requerido",
	"notblank": "no puede estar en blanco",
	"email":    "debe ser un email válido",
	"url":      "debe ser una URL válida",
	"gte":      "debe ser mayor o igual a %s",
	"gt":       "debe ser mayor que %s",
	"lte":      "debe ser menor o igual a %s",
	"oneof":    "debe ser uno de: %s",
	"dive":     "contiene elementos inválidos",
	"min":      "debe ser al menos %s",
	"max":      "debe ser como máximo %s",
	"min/text": "debe tener al menos %s caracteres",
	"max/text": "debe tener como máximo %s caracteres",
}

func message(fe validator.FieldError) string {
	tag := fe.Tag()
	if fe.Kind() == reflect.String && (tag == "min" || tag == "max") {
		tag += "/text"
	}
	tmpl, ok := messages[tag]
	if !ok {
		return fmt.Sprintf("no cumple la validación '%s'", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}

// DecodeAndValidate decodes the JSON body of r into dst and validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return Validate(dst)
}
