package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/accounts-api/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report JSON names ("email") instead of Go names ("Email")
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	enLocale := en.New()
	trans, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	// Field-free phrasing; the field name is prefixed by Validate.
	overrides := map[string]string{
		"required": "is required",
		"email":    "must be a valid email address",
		"min":      "must be at least {0} characters",
	}
	for tag, text := range overrides {
		tag, text := tag, text
		_ = validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, text, true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T(tag, fe.Param())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}

// Validate checks v against its `validate` tags. Failures become a single
// validation error whose message is "<field>: <message>" joined by ", ".
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrValidation(err.Error(), nil)
	}

	msgs := make([]string, 0, len(verrs))
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(trans)
		msgs = append(msgs, fe.Field()+": "+msg)
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
	}
	return domain.ErrValidation(strings.Join(msgs, ", "), fields)
}
