// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// codeValidation matches models.CodeValidation.
const codeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one rejected request field.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the request field name, as the client sent it.
func (e *FieldError) Field() string { return e.field }

// Tag returns the failed rule, e.g. "gt" or "required_if".
func (e *FieldError) Tag() string { return e.tag }

// Param returns the rule parameter, e.g. "0" for "gt=0".
func (e *FieldError) Param() string { return e.param }

// Value returns the rejected value.
func (e *FieldError) Value() interface{} { return e.value }

// Error returns the human-readable message.
func (e *FieldError) Error() string { return e.message }

// RequestValidationError lists every rejected field of one request.
type RequestValidationError struct {
	fields []FieldError
}

// NewRequestValidationError reports a single field. It covers checks that
// struct tags cannot express, such as limits from runtime configuration
// or unparsable form values.
func NewRequestValidationError(field, tag, param string, value interface{}, message string) *RequestValidationError {
	return &RequestValidationError{fields: []FieldError{{
		field:   field,
		tag:     tag,
		param:   param,
		value:   value,
		message: message,
	}}}
}

// Errors returns the rejected fields in struct order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.fields
}

// Error joins all field messages.
func (ve *RequestValidationError) Error() string {
	switch len(ve.fields) {
	case 0:
		return "validation failed"
	case 1:
		return ve.fields[0].message
	}
	var b strings.Builder
	for i := range ve.fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ve.fields[i].field)
		b.WriteString(": ")
		b.WriteString(ve.fields[i].message)
	}
	return b.String()
}

// APIError mirrors models.APIError; models cannot be imported here
// without a cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError renders the error for the response envelope. A single field
// is described inline; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: codeValidation, Message: "Validation failed"}
	if len(ve.fields) == 0 {
		return out
	}
	out.Message = ve.Error()

	if len(ve.fields) == 1 {
		f := ve.fields[0]
		out.Details = map[string]interface{}{"field": f.field, "tag": f.tag}
		if echoable(f.value) {
			out.Details["value"] = f.value
		}
		return out
	}

	list := make([]map[string]interface{}, 0, len(ve.fields))
	for _, f := range ve.fields {
		list = append(list, map[string]interface{}{
			"field":   f.field,
			"tag":     f.tag,
			"message": f.message,
		})
	}
	out.Details = map[string]interface{}{"fields": list}
	return out
}

// echoable reports whether a rejected value may be sent back to the
// client. Uploads and composite values never are.
func echoable(v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer, reflect.Interface:
		return false
	}
	return true
}

// GetValidator returns the shared validator. Error field names come from
// the `form` tag, then `json`, then the Go field name.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return fld.Name
}

// ValidateStruct checks s against its `validate` tags. It returns nil when
// s is valid.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return NewRequestValidationError("request", "invalid", "", nil, err.Error())
	}

	out := &RequestValidationError{fields: make([]FieldError, 0, len(fes))}
	for _, fe := range fes {
		out.fields = append(out.fields, FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: message(fe),
		})
	}
	return out
}

// message phrases a failed rule for the client.
func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "min":
		if fe.Kind() == reflect.Slice && param == "1" {
			return field + " must not be empty"
		}
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit(fe.Kind()))
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice:
		return " bytes"
	}
	return ""
}
