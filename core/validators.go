package core

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

const (
	MinClass = 1
	MaxClass = 12
)

// Divisions are the sections every class is split into.
var Divisions = []string{"A", "B", "C", "D", "E"}

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	classTag     = "class"
	classText    = "class must be a number between 1 and 12"
	divisionTag  = "division"
	divisionText = "division must be one of A, B, C, D or E"
	notBlankTag  = "notblank"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(classTag, classValidation)
	RegisterCustomTranslation(classTag, classText)
	_ = Validate.RegisterValidation(divisionTag, divisionValidation)
	RegisterCustomTranslation(divisionTag, divisionText)
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, requiredText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ScopeValidationError prefixes the field errors of err with scope, eg. "student 3.class",
// so that the item of a list they belong to is kept. Other errors are wrapped with scope.
func ScopeValidationError(err error, scope string) error {
	var flds []FieldError
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		for _, fe := range vErr {
			flds = append(flds, FieldError{Field: scope + "." + fe.Field(), Error: fe.Translate(Translator)})
		}
	case *ValidationError:
		for _, fe := range vErr.Fields {
			flds = append(flds, FieldError{Field: scope + "." + fe.Field, Error: fe.Error})
		}
		if len(flds) == 0 && vErr.Err != nil {
			return NewValidationError(errors.Wrap(vErr.Err, scope))
		}
	}
	if len(flds) == 0 {
		return errors.Wrap(err, scope)
	}

	msgs := make([]string, 0, len(flds))
	for _, fld := range flds {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return NewValidationError(errors.New(strings.Join(msgs, "; ")), flds...)
}

// IsValidClass reports whether `class` is one of "1".."12".
func IsValidClass(class string) bool {
	n, err := strconv.Atoi(class)
	if err != nil || strconv.Itoa(n) != class {
		return false
	}
	return n >= MinClass && n <= MaxClass
}

// IsValidDivision reports whether `division` is one of "A".."E".
func IsValidDivision(division string) bool {
	for _, d := range Divisions {
		if d == division {
			return true
		}
	}
	return false
}

// Classes returns "1".."12" in order.
func Classes() []string {
	classes := make([]string, 0, MaxClass)
	for n := MinClass; n <= MaxClass; n++ {
		classes = append(classes, strconv.Itoa(n))
	}
	return classes
}

// Custom Global Validators

func classValidation(fl validator.FieldLevel) bool {
	return IsValidClass(fl.Field().String())
}

func divisionValidation(fl validator.FieldLevel) bool {
	return IsValidDivision(fl.Field().String())
}

// notBlankValidation rejects strings made only of whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
