package account

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/stockroom/pkg/identity"
	"github.com/dmitrymomot/stockroom/pkg/sanitizer"
	"github.com/dmitrymomot/stockroom/pkg/validator"
)

const (
	MaxUsernameLength    = 64
	MaxDisplayNameLength = 120
	// bcrypt ignores input past 72 bytes
	maxPasswordBytes = 72
)

// record is the stored form. The password field keeps its historical name.
type record struct {
	Username    string `json:"username"`
	Secret      string `json:"password"`
	DisplayName string `json:"display,omitempty"`
}

// User is the public view of an account.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func (u User) ID() identity.ID { return identity.ID(u.Username) }

func (r record) user() User {
	display := r.DisplayName
	if display == "" {
		display = r.Username
	}
	return User{Username: r.Username, DisplayName: display}
}

// hashed reports whether the secret is a bcrypt hash rather than a legacy plaintext.
func (r record) hashed() bool {
	if !strings.HasPrefix(r.Secret, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(r.Secret))
	return err == nil
}

// Settings changes an account. Empty fields are left as they are.
type Settings struct {
	DisplayName string
	Password    string
}

func usernameRules(username string) []validator.Rule {
	return []validator.Rule{
		validator.Required("username", username),
		validator.MaxLen("username", username, MaxUsernameLength),
		validator.Handle("username", username),
	}
}

func passwordRules(password string) []validator.Rule {
	return []validator.Rule{
		validator.Required("password", password),
		{
			Check: func() bool { return len(password) <= maxPasswordBytes },
			Error: validator.ValidationError{
				Field:             "password",
				Message:           "must be at most 72 bytes long",
				TranslationKey:    "validation.max_length",
				TranslationValues: map[string]any{"field": "password", "max": maxPasswordBytes},
			},
		},
	}
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrInvalidInput, err)
}

var cleanDisplay = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
