package handlers

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/profilehub/apiserver/types"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
)

// FieldError reports a validation failure for a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validateRegister(req RegisterRequest) []FieldError {
	var details []FieldError

	if msg := usernameError(req.Username); msg != "" {
		details = append(details, FieldError{Field: "username", Message: msg})
	}
	if msg := emailError(req.Email); msg != "" {
		details = append(details, FieldError{Field: "email", Message: msg})
	}
	if msg := passwordError(req.Password); msg != "" {
		details = append(details, FieldError{Field: "password", Message: msg})
	}

	return details
}

func usernameError(username string) string {
	if username == "" {
		return "Username is required"
	}
	if len(username) < minUsernameLen {
		return fmt.Sprintf("Username must be at least %d characters long", minUsernameLen)
	}
	if len(username) > maxUsernameLen {
		return fmt.Sprintf("Username cannot exceed %d characters", maxUsernameLen)
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "Username must contain only alphanumeric characters"
		}
	}
	return ""
}

func emailError(email string) string {
	if email == "" {
		return "Email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Please provide a valid email address"
	}
	return ""
}

// passwordError enforces the registration password policy: minimum length
// plus at least one upper, lower, digit and symbol.
func passwordError(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < minPasswordLen {
		return fmt.Sprintf("Password must be at least %d characters long", minPasswordLen)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

var profileFieldLimits = []struct {
	field string
	max   int
	value func(types.ProfileFields) *string
}{
	{"firstName", 50, func(f types.ProfileFields) *string { return f.FirstName }},
	{"lastName", 50, func(f types.ProfileFields) *string { return f.LastName }},
	{"bio", 500, func(f types.ProfileFields) *string { return f.Bio }},
	{"location", 100, func(f types.ProfileFields) *string { return f.Location }},
	{"interests", 500, func(f types.ProfileFields) *string { return f.Interests }},
	{"skills", 500, func(f types.ProfileFields) *string { return f.Skills }},
	{"experience", 1000, func(f types.ProfileFields) *string { return f.Experience }},
	{"education", 500, func(f types.ProfileFields) *string { return f.Education }},
	{"social", 500, func(f types.ProfileFields) *string { return f.Social }},
	{"projects", 1000, func(f types.ProfileFields) *string { return f.Projects }},
}

func validateProfileFields(fields types.ProfileFields) []FieldError {
	var details []FieldError
	for _, limit := range profileFieldLimits {
		value := limit.value(fields)
		if value == nil {
			continue
		}
		if len(*value) > limit.max {
			details = append(details, FieldError{
				Field:   limit.field,
				Message: fmt.Sprintf("%s cannot exceed %d characters", limit.field, limit.max),
			})
		}
	}
	return details
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
