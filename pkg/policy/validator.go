package policy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Struct tags registered by NewValidator.
const (
	TagPassword    = "strong_password"
	TagAccountName = "account_name"
	TagLinkURL     = "link_url"
	TagRole        = "account_role"
)

// NewValidator returns a struct validator that understands the policy tags
// alongside the stock validator/v10 ones.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("policy: register %s: %v", tag, err))
		}
	}
	must(TagPassword, PasswordStrong)
	must(TagAccountName, AccountNameValid)
	must(TagLinkURL, URLValid)
	must(TagRole, RoleValid)

	return v
}

// Describe turns a validation error into a short human readable message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case TagPassword:
		return fmt.Sprintf("%s must be at least %d characters with a lowercase letter, an uppercase letter and a digit", field, MinPasswordLength)
	case TagAccountName:
		return fmt.Sprintf("%s must be at least %d characters of letters, digits or underscore", field, MinAccountNameLength)
	case TagLinkURL:
		return field + " is not a valid http(s) URL"
	case TagRole:
		return fmt.Sprintf("%s must be %q or %q", field, RoleAdmin, RoleRegular)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
