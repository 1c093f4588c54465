package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// jsonFieldNames maps CreateRecordRequest struct fields to their wire names so
// validation errors are keyed the way clients sent the payload.
var jsonFieldNames = map[string]string{
	"RecordID":      "recordId",
	"Time":          "time",
	"SourceID":      "sourceId",
	"DestinationID": "destinationId",
	"Type":          "type",
	"Value":         "value",
	"Unit":          "unit",
	"Reference":     "reference",
}

// translateBindingError converts a gin binding failure into a field-keyed
// error map. It reports false for malformed request bodies that cannot be
// attributed to a field.
func translateBindingError(err error) (map[string][]string, bool) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fieldErrors := map[string][]string{}
		for _, fe := range validationErrs {
			name, ok := jsonFieldNames[fe.Field()]
			if !ok {
				name = fe.Field()
			}
			fieldErrors[name] = append(fieldErrors[name], validationMessage(name, fe.Tag()))
		}
		return fieldErrors, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{
			typeErr.Field: {"The " + typeErr.Field + " is invalid."},
		}, true
	}

	// encoding/json reports a non-numeric string aimed at a json.Number field
	// with a plain error rather than an UnmarshalTypeError.
	if strings.Contains(err.Error(), "into Number") {
		return map[string][]string{
			"value": {"The value must be a valid number."},
		}, true
	}

	return nil, false
}

func validationMessage(name, tag string) string {
	switch tag {
	case "required":
		return "The " + name + " is required."
	case "max":
		return "The " + name + " may not be greater than 255 characters."
	case "oneof":
		return `The type must be either "positive" or "negative".`
	default:
		return "The " + name + " is invalid."
	}
}
