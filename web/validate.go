package web

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/printer/web/errs"
)

type checker struct {
	validate   *validator.Validate
	translator ut.Translator
}

// payloadChecker reports fields by their JSON name so errors match what
// the client sent.
var payloadChecker = sync.OnceValues(func() (*checker, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	trans, ok := ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		return nil, errors.New("en translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("registering translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &checker{validate: v, translator: trans}, nil
})

// Validate checks val against its validate tags and returns the failures
// as [errs.FieldErrors].
func Validate(val any) error {
	c, err := payloadChecker()
	if err != nil {
		return err
	}

	err = c.validate.Struct(val)
	if err == nil {
		return nil
	}

	verrs, ok := errors.AsType[validator.ValidationErrors](err)
	if !ok {
		return err
	}

	fields := make(errs.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(c.translator)
		if fe.Tag() == "required" {
			msg = "This field is required"
		}
		fields = append(fields, errs.FieldError{Field: fe.Field(), Err: msg})
	}

	return fields
}
