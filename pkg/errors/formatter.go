package errors

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldViolation is one failed validation rule, named the way the operator
// would write the field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	return v.Field + ": " + v.Message
}

// Messages for rules that carry a parameter, e.g. gt=0.
var paramMessages = map[string]string{
	"min":   "Must be at least ",
	"max":   "Must not exceed ",
	"gt":    "Must be greater than ",
	"gte":   "Must be greater than or equal to ",
	"lte":   "Must be less than or equal to ",
	"oneof": "Must be one of ",
}

var plainMessages = map[string]string{
	"required":      "This field is required",
	"numeric":       "Value must be numeric",
	"hostname_port": "Value must be host:port",
}

func messageFor(fe validator.FieldError) string {
	if prefix, ok := paramMessages[fe.Tag()]; ok && fe.Param() != "" {
		if fe.Tag() == "oneof" {
			return prefix + "[" + fe.Param() + "]"
		}
		return prefix + fe.Param()
	}
	if msg, ok := plainMessages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

// fieldName reads the first element of tagName on the struct field, falling
// back to the Go field name.
func fieldName(structType reflect.Type, goName, tagName string) string {
	if structType == nil {
		return goName
	}
	field, ok := structType.FieldByName(goName)
	if !ok {
		return goName
	}
	if name, _, _ := strings.Cut(field.Tag.Get(tagName), ","); name != "" {
		return name
	}
	return goName
}

// FormatValidationErrorsByTag converts validator errors on model into
// violations named by tagName. Errors of any other kind yield nothing.
func FormatValidationErrorsByTag(err error, model any, tagName string) []FieldViolation {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Pointer {
			structType = structType.Elem()
		}
	}

	violations := make([]FieldViolation, 0, len(validationErrors))
	for _, fe := range validationErrors {
		violations = append(violations, FieldViolation{
			Field:   fieldName(structType, fe.StructField(), tagName),
			Message: messageFor(fe),
		})
	}
	return violations
}
