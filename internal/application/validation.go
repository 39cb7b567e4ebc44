package application

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/recurrence"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
	categoryTag = "category"
	rruleTag    = "rrule"
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	_ = validate.RegisterValidation(rruleTag, rruleValidation)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, categoryTag, rruleTag} {
		_ = validate.RegisterTranslation(tag, translator, noop, translateCustomTag)
	}
}

func translateCustomTag(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case categoryTag:
		return fe.Field() + " must be one of TRABAJO, PERSONAL, ESTUDIO, SALUD"
	case rruleTag:
		return fe.Field() + " must be a valid RRULE"
	}
	return fe.Field() + " is invalid"
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func categoryValidation(fl validator.FieldLevel) bool {
	c, ok := fl.Field().Interface().(calendar.Category)
	return ok && c.Assignable()
}

func rruleValidation(fl validator.FieldLevel) bool {
	return recurrence.Validate(fl.Field().String()) == nil
}

// validateStruct runs the struct tags of s and returns the failures keyed by
// JSON field name. The result is never nil.
func validateStruct(s any) *ValidationError {
	vErr := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("_", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fieldKey(fe), fe.Translate(translator))
	}
	return vErr
}

// fieldKey drops the top level struct name from the namespace.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
