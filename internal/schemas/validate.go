// Package schemas validates incoming records and JSON documents against
// field-level constraints.
package schemas

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

var (
	recordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{2,120}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]{2,160}$`)
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validator checks structs carrying `validate` tags and reports every
// violated field by its JSON path.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the record-specific rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "recordid", matchString(recordIDPattern))
	mustRegister(v, "slug", matchString(slugPattern))
	mustRegister(v, "isodate", matchString(isoDatePattern))
	mustRegister(v, "doccategory", func(fl validator.FieldLevel) bool {
		return slices.Contains(types.DocumentCategories, fl.Field().String())
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates s. It returns nil or an apperr Validation error listing
// every violated constraint.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Wrap(apperr.Validation, "invalid payload", err)
	}

	fields := make([]apperr.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apperr.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return apperr.Invalid(fields)
}

// fieldPath drops the root struct name from a validator namespace,
// "Vacancy.salaryTo" becomes "salaryTo".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found || rest == "" {
		return "root"
	}
	return rest
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return boundMessage(fe, "at least")
	case "max":
		return boundMessage(fe, "at most")
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", lowerFirst(fe.Param()))
	case "recordid":
		return "must match ^[a-z0-9-]{2,120}$"
	case "slug":
		return "must match ^[a-z0-9-]{2,160}$"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "doccategory":
		return fmt.Sprintf("must be one of [%s]", strings.Join(types.DocumentCategories, ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func boundMessage(fe validator.FieldError, bound string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must contain %s %s character(s)", bound, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s item(s)", bound, fe.Param())
	default:
		if bound == "at least" {
			return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ValidateDocument validates raw JSON content against a JSON Schema.
func ValidateDocument(schemaContent string, document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperr.Wrap(apperr.Validation, "document could not be checked against schema", err)
	}

	if result.Valid() {
		return nil
	}

	fields := make([]apperr.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		fields = append(fields, apperr.FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return apperr.Invalid(fields)
}
