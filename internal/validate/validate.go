// ABOUTME: Client-side form validation for registration and user editing
// ABOUTME: Mirrors the backend's rules so obvious mistakes never leave the terminal

package validate

import (
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength is the backend's minimum password length
const MinPasswordLength = 12

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var (
	emailRules = []validation.Rule{
		validation.Required.Error("Email is required"),
		is.Email.Error("Invalid email format"),
	}
	usernameRules = []validation.Rule{
		validation.Required.Error("Username is required"),
		validation.Match(usernamePattern).Error("Username must be 3-30 chars, alphanumeric and underscores only"),
	}
	passwordRules = []validation.Rule{
		validation.Required.Error("Password is required"),
		validation.RuneLength(MinPasswordLength, 0).Error("Password must be at least 12 characters"),
	}
	nameRules = []validation.Rule{
		validation.RuneLength(0, 100).Error("Name must be at most 100 characters"),
	}
)

// Registration is the register form and the admin add-user form
type Registration struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// Validate checks every field and returns validation.Errors keyed by field
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.ConfirmPassword, validation.By(matches(r.Password))),
		validation.Field(&r.FirstName, nameRules...),
		validation.Field(&r.LastName, nameRules...),
	)
}

// UserEdit is the edit-user form. Password is not editable here and empty
// email or username means unchanged.
type UserEdit struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// Validate checks the editable fields
func (u UserEdit) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, emailRules[1:]...),
		validation.Field(&u.Username, usernameRules[1:]...),
		validation.Field(&u.FirstName, nameRules...),
		validation.Field(&u.LastName, nameRules...),
		validation.Field(&u.Bio, validation.RuneLength(0, 500).Error("Bio must be at most 500 characters")),
	)
}

// Email validates a single email field
func Email(s string) error {
	return validation.Validate(s, emailRules...)
}

// Username validates a single username field
func Username(s string) error {
	return validation.Validate(s, usernameRules...)
}

// Password validates a single new-password field
func Password(s string) error {
	return validation.Validate(s, passwordRules...)
}

// Name validates an optional first or last name
func Name(s string) error {
	return validation.Validate(s, nameRules...)
}

// Required rejects an empty value with message
func Required(message string) func(string) error {
	return func(s string) error {
		return validation.Validate(s, validation.Required.Error(message))
	}
}

// Confirm returns a field validator that checks the value equals *password
// at validation time
func Confirm(password *string) func(string) error {
	return func(s string) error {
		return matches(*password)(s)
	}
}

func matches(password string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != password {
			return errors.New("Passwords do not match")
		}
		return nil
	}
}

// FieldErrors flattens a validation.Errors into field -> message. Other
// errors are reported under "general".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out["general"] = err.Error()
		return out
	}
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

// FirstError returns the message of the first failing field in form order
func FirstError(err error, order ...string) string {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		return ""
	}
	for _, name := range order {
		if msg, ok := fields[name]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields[keys[0]]
}
