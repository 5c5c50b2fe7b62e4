// Package validation turns struct rule failures into the typed outcomes the
// HTTP layer translates: a write either succeeds, fails with FieldViolations,
// fails with a UniqueViolation, or fails with any other error.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Violation struct {
	Field   string
	Rule    string
	Message string
}

// FieldViolations collects every violated field rule of a single write.
type FieldViolations struct {
	Violations []Violation
}

func (e *FieldViolations) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

func (e *FieldViolations) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// UniqueViolation is returned by a store when a constrained write was rejected.
type UniqueViolation struct {
	Field   string
	Message string
}

func (e *UniqueViolation) Error() string {
	return "unique violation on " + e.Field
}

// MessageTable maps "<StructField>.<rule>" to the message shown to clients.
type MessageTable map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// notblank rejects empty and whitespace-only strings
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	return v
}

// Validate checks s against its `validate` tags. All failing fields are
// reported, one violation per field, in declaration order.
func Validate(s any, table MessageTable) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &FieldViolations{Violations: make([]Violation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: table.lookup(fe),
		})
	}
	return out
}

// Join merges extra violations into err. err may be nil or a *FieldViolations.
func Join(err error, extra ...Violation) error {
	if len(extra) == 0 {
		return err
	}
	if err == nil {
		return &FieldViolations{Violations: extra}
	}

	var fv *FieldViolations
	if errors.As(err, &fv) {
		fv.Violations = append(fv.Violations, extra...)
		return fv
	}
	return err
}

func (t MessageTable) lookup(fe validator.FieldError) string {
	if msg, ok := t[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Field() + " failed " + fe.Tag() + " validation"
}
