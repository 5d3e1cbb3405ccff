package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apperrors "github.com/frahmantamala/backoffice/internal"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
	hexColorTag = "hexcolor_or_empty"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(hexColorTag, hexColorOrEmpty)

	registerMessage(notBlankTag, "{0} cannot be blank")
	registerMessage(hexColorTag, "{0} must be a hex color such as #1a2b3c")
}

func registerMessage(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return true
}

func hexColorOrEmpty(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok || str == "" {
		return true
	}
	if len(str) != 7 || str[0] != '#' {
		return false
	}
	for _, r := range str[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Struct validates a request DTO and converts failures into a 400 AppError
// carrying one entry per offending field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).WithCause(err)
	}

	details := apperrors.ValidationErrors{Errors: make([]apperrors.ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		details.Errors = append(details.Errors, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: fe.Translate(translator),
			Code:    fe.Tag(),
		})
	}

	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).WithDetails(details)
}

// Field reports a single-field validation failure outside of struct tags.
func Field(name, message string) error {
	return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
}
