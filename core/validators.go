package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	phoneTag   = "phone"
	phoneText  = "enter a valid phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{8,20}$`)

	schoolYearTag  = "schoolyear"
	schoolYearText = "enter a valid school year"

	genderTag    = "gender"
	genderText   = "gender must be one of: female, male, other"
	genderValues = map[string]bool{"female": true, "male": true, "other": true}

	pastDateTag  = "pastdate"
	pastDateText = "date cannot be in the future"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// civil dates are validated as their "YYYY-MM-DD" representation; zero dates are empty
	validate.RegisterCustomTypeFunc(civilDateValue, civil.Date{})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(validate, translator, phoneTag, phoneText)

	_ = validate.RegisterValidation(schoolYearTag, schoolYearValidation)
	RegisterCustomTranslation(validate, translator, schoolYearTag, schoolYearText)

	_ = validate.RegisterValidation(genderTag, genderValidation)
	RegisterCustomTranslation(validate, translator, genderTag, genderText)

	_ = validate.RegisterValidation(pastDateTag, pastDateValidation)
	RegisterCustomTranslation(validate, translator, pastDateTag, pastDateText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func civilDateValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(civil.Date); ok && d != (civil.Date{}) {
		return d.String()
	}
	return ""
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// phoneValidation allows digits, spaces, dashes, parentheses and a leading "+".
func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// schoolYearValidation accepts years within a century of now.
func schoolYearValidation(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	now := time.Now().Year()
	return year >= now-100 && year <= now+100
}

func genderValidation(fl validator.FieldLevel) bool {
	return genderValues[fl.Field().String()]
}

// pastDateValidation checks a civil date (as converted by civilDateValue) is not after today.
func pastDateValidation(fl validator.FieldLevel) bool {
	d, err := civil.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.After(civil.DateOf(time.Now()))
}
