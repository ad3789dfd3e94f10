package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"zyan/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validate    = newValidator()
	rolePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)
)

// Roles end up in session identities and JWT claims, so they stay plain
// lowercase identifiers.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return rolePattern.MatchString(fl.Field().String())
	})
	return v
}

// RegisterRequest is what the admin tool needs to create a password user.
type RegisterRequest struct {
	Email    string   `validate:"required,email"`
	Password string   `validate:"required,min=12,max=72"`
	Roles    []string `validate:"omitempty,dive,role"`
}

// logonCredentials is the password provider view of a logon request. The
// upper bound matches the register rule so oversized input is refused before
// hashing.
type logonCredentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidArgument, err)
	}
	if missing := missingPasswordClasses(req.Password); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errors.ErrInvalidPassword, strings.Join(missing, ", "))
	}
	return nil
}

func validateLogon(creds logonCredentials) error {
	if err := validate.Struct(creds); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	return nil
}

// missingPasswordClasses lists the character classes absent from s.
func missingPasswordClasses(s string) []string {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsNumber(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	var missing []string
	for _, class := range []struct {
		ok   bool
		name string
	}{{upper, "uppercase"}, {lower, "lowercase"}, {digit, "digit"}, {special, "special character"}} {
		if !class.ok {
			missing = append(missing, class.name)
		}
	}
	return missing
}
