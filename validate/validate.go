// Package validate checks the targets and timeouts handed to connections
// and clients before any resources are allocated.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/printer/errs"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("validate: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

// Target reports whether target is an absolute URL with a scheme and a host.
func Target(target string) error {
	if err := validate.Var(target, "required,url"); err != nil {
		return fmt.Errorf("%w: target %q is not a valid target URL: %s", errs.ErrInvalidArgument, target, message("target", err))
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: target %q is not a valid target URL: %w", errs.ErrInvalidArgument, target, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: target %q is not a valid target URL: scheme and host are required", errs.ErrInvalidArgument, target)
	}

	return nil
}

// Timeout reports whether d is usable as a request timeout. Zero disables
// the timeout.
func Timeout(d time.Duration) error {
	if err := validate.Var(int64(d), "gte=0"); err != nil {
		return fmt.Errorf("%w: timeout %s is not a valid timeout: %s", errs.ErrInvalidArgument, d, message("timeout", err))
	}

	return nil
}

// SanitizeTarget drops whitespace, control characters and anything outside
// the printable ASCII range from target.
func SanitizeTarget(target string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r >= 0x7f {
			return -1
		}

		return r
	}, target)
}

func message(field string, err error) string {
	verrors, ok := err.(validator.ValidationErrors)
	if !ok || len(verrors) == 0 {
		return err.Error()
	}

	// Var validations carry no field name, so prefix our own.
	return field + " " + strings.TrimSpace(verrors[0].Translate(translator))
}
