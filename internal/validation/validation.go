// Package validation checks request payloads and form input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"alloneword/internal/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag     = "notblank"
	selfRegisterTag = "self_register_role"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	// Field errors are keyed by the json name the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	if err := validate.RegisterValidation(notBlankTag, notBlank); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation(selfRegisterTag, selfRegisterRole); err != nil {
		panic(err)
	}

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, selfRegisterTag} {
		if err := validate.RegisterTranslation(tag, translator, noop, translateCustom); err != nil {
			panic(err)
		}
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case selfRegisterTag:
		return fe.Field() + " must be student, parent or teacher"
	}
	return fe.Error()
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func selfRegisterRole(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, r := range models.SelfRegisterRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// Errors maps field names to a human readable message
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e[k])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v using its validate tags. Failed fields come back as Errors.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

// ValidationError represents a single field validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if strings.ContainsAny(email, " \t") || validate.Var(email, "email") != nil {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if validate.Var(name, "min=2") != nil {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}
