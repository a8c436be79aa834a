package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	cerrors "github.com/jrsteele09/go-course-client/internal/errors"
)

const maxFullNameLength = 120

// Registration is the body of POST /auth/register.
type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleCode Role   `json:"roleCode"`
}

// Validate checks the form before it is sent. The server still has the final say.
func (r Registration) Validate() error {
	name := strings.TrimSpace(r.FullName)
	if name == "" {
		return cerrors.Wrapf(cerrors.ErrInvalidRequest, "full name is required")
	}
	if len([]rune(name)) > maxFullNameLength {
		return cerrors.Wrapf(cerrors.ErrInvalidRequest, "full name must be at most %d characters", maxFullNameLength)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return cerrors.Wrapf(cerrors.ErrInvalidRequest, "invalid email")
	}
	if err := ValidatePasswordStrength(r.Password); err != nil {
		return cerrors.Wrapf(cerrors.ErrInvalidRequest, "%s", err.Error())
	}
	return nil
}

// ValidatePasswordStrength checks if password meets the portal's rules:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number and one symbol
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
		hasSymbol bool
	)

	for _, char := range password {
		switch {
		case char <= unicode.MaxASCII && unicode.IsUpper(char):
			hasUpper = true
		case char <= unicode.MaxASCII && unicode.IsLower(char):
			hasLower = true
		case char <= unicode.MaxASCII && unicode.IsDigit(char):
			hasNumber = true
		default:
			hasSymbol = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasSymbol {
		return fmt.Errorf("password must contain at least one symbol")
	}

	return nil
}
