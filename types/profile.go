package types

import (
	"strings"
	"time"
)

// Profile represents a user's public profile.
//
// All free-text fields are optional and independently nullable. The API
// exposes the field names the mobile client expects (camelCase, with the
// stored name column split into firstName/lastName).
type Profile struct {
	// ID is the unique identifier of the profile (a UUID string).
	ID string `json:"id" db:"id"`

	// UserID is the identifier of the owning user. Each user owns at
	// most one profile, enforced by a unique constraint.
	UserID string `json:"userId" db:"user_id"`

	// FirstName and LastName are derived from the stored name column:
	// the first whitespace-separated token and the remainder.
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`

	Bio            *string `json:"bio" db:"bio"`
	Location       *string `json:"location" db:"location"`
	Interests      *string `json:"interests" db:"interests"`
	Skills         *string `json:"skills" db:"skills"`
	Experience     *string `json:"experience" db:"experience"`
	Education      *string `json:"education" db:"education"`
	Social         *string `json:"social" db:"social_links"`
	Projects       *string `json:"projects" db:"projects"`
	ProfilePicture *string `json:"profilePicture" db:"profile_picture"`

	// Username and Email are populated on search results, where profiles
	// are joined with their owning user.
	Username string `json:"username,omitempty" db:"username"`
	Email    string `json:"email,omitempty" db:"email"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileFields carries the client-settable profile fields for create and
// update requests. A nil pointer means the field was omitted; partial
// updates leave omitted fields untouched.
type ProfileFields struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Bio        *string `json:"bio"`
	Location   *string `json:"location"`
	Interests  *string `json:"interests"`
	Skills     *string `json:"skills"`
	Experience *string `json:"experience"`
	Education  *string `json:"education"`
	Social     *string `json:"social"`
	Projects   *string `json:"projects"`
}

// JoinName combines first and last name into the single stored name value.
// Returns "" when both parts are empty.
func JoinName(first, last *string) string {
	var parts []string
	if first != nil && strings.TrimSpace(*first) != "" {
		parts = append(parts, strings.TrimSpace(*first))
	}
	if last != nil && strings.TrimSpace(*last) != "" {
		parts = append(parts, strings.TrimSpace(*last))
	}
	return strings.Join(parts, " ")
}

// SplitName splits a stored name into first name (first token) and last
// name (the remainder), mirroring how the mobile client displays it.
func SplitName(name *string) (first, last *string) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return nil, nil
	}
	tokens := strings.Fields(*name)
	f := tokens[0]
	first = &f
	if len(tokens) > 1 {
		l := strings.Join(tokens[1:], " ")
		last = &l
	}
	return first, last
}
