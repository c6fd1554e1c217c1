// Package validation turns raw request bodies into typed values or a
// validation error listing every offending field.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/krishkalaria12/imagehost/apperror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decode unmarshals body into dst, a pointer to a struct. An empty body
// decodes as {}. Each key is decoded on its own so that every type error is
// reported, with nested objects yielding dotted paths such as "filters.blur".
func decode(body []byte, dst any) ([]apperror.FieldError, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	var fields []apperror.FieldError
	if !decodeObject(body, reflect.ValueOf(dst).Elem(), "", &fields) {
		return nil, apperror.Validation([]apperror.FieldError{{
			Field:   "body",
			Message: "Request body must be a JSON object",
		}})
	}
	return fields, nil
}

// decodeObject fills the struct v from the JSON object raw. It returns false
// when raw is not an object.
func decodeObject(raw []byte, v reflect.Value, prefix string, fields *[]apperror.FieldError) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return false
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		value, ok := obj[name]
		if !ok || string(value) == "null" {
			continue
		}

		path := prefix + name
		fv := v.Field(i)
		if st := structType(sf.Type); st != nil {
			nested := reflect.New(st)
			if !decodeObject(value, nested.Elem(), path+".", fields) {
				*fields = append(*fields, apperror.FieldError{
					Field:   path,
					Message: "Expected object, received " + jsonKind(value),
				})
				continue
			}
			if sf.Type.Kind() == reflect.Pointer {
				fv.Set(nested)
			} else {
				fv.Set(nested.Elem())
			}
			continue
		}

		if err := json.Unmarshal(value, fv.Addr().Interface()); err != nil {
			message := "Invalid value"
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				message = typeMessage(typeErr)
			}
			*fields = append(*fields, apperror.FieldError{Field: path, Message: message})
		}
	}
	return true
}

func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

func jsonKind(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "nothing"
	}
	switch s[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

func typeMessage(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		if strings.HasPrefix(e.Value, "number") {
			return "Expected integer, received float"
		}
		return fmt.Sprintf("Expected integer, received %s", e.Value)
	case reflect.Float64, reflect.Float32:
		return fmt.Sprintf("Expected number, received %s", e.Value)
	case reflect.Bool:
		return fmt.Sprintf("Expected boolean, received %s", e.Value)
	case reflect.String:
		return fmt.Sprintf("Expected string, received %s", e.Value)
	case reflect.Struct:
		return fmt.Sprintf("Expected object, received %s", e.Value)
	default:
		return "Invalid value"
	}
}

// check runs the struct rules and merges them after any decode errors,
// skipping fields that already failed to decode.
func check(v any, decoded []apperror.FieldError, messages map[string]string) error {
	fields := decoded
	seen := make(map[string]bool, len(decoded))
	for _, f := range decoded {
		seen[f.Field] = true
	}

	if err := instance().Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperror.Internal("Validation failed.", err)
		}
		for _, fe := range verrs {
			field := fieldPath(fe)
			if seen[field] {
				continue
			}
			fields = append(fields, apperror.FieldError{Field: field, Message: ruleMessage(fe, field, messages)})
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleMessage(fe validator.FieldError, field string, messages map[string]string) string {
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return "Required"
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Invalid value"
	}
}
