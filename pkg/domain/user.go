package domain

import (
	"fmt"
	"strconv"
)

// User is the current user's profile. The server owns its shape, so the
// client keeps every field it receives and only reads a few of them.
type User map[string]any

func (u User) str(key string) string {
	if u == nil {
		return ""
	}
	switch v := u[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (u User) Name() string         { return u.str("name") }
func (u User) Email() string        { return u.str("email") }
func (u User) Phone() string        { return u.str("phone") }
func (u User) Address() string      { return u.str("address") }
func (u User) ProfileImage() string { return u.str("profile_image") }

// DisplayName prefers the name, then the email.
func (u User) DisplayName() string {
	if n := u.Name(); n != "" {
		return n
	}
	return u.Email()
}
