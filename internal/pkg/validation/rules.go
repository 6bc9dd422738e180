package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule limits
var (
	// Password min length, mirrored in the binding tags of the auth DTOs
	PasswordMinLength = 6

	// Community name limits
	NameMinLength = 1
	NameMaxLength = 100
)

var registerOnce sync.Once

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StringValidation validates a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
}

// NewStringValidation creates a new string validation over the trimmed value
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}
	if !v.Required && v.Value == "" {
		return true
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	return true
}

// notBlank rejects strings that are empty after trimming. Pointers are
// dereferenced by the validator before this runs.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return !IsBlank(field.String())
}

// RegisterCustomRules installs the project rules on gin's validator engine.
// Safe to call more than once.
func RegisterCustomRules() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("notblank", notBlank)
	})
	return err
}
