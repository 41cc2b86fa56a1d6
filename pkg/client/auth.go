package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smartwaste/pickup/pkg/domain"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login payload returned by the API. Raw holds the
// response exactly as received.
type LoginResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Password string `json:"password"`
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ContactMessage is a message sent from the landing page.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var raw json.RawMessage
	if err := c.Post(ctx, "auth/login/", creds, &raw); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	resp := LoginResponse{Raw: raw}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("client.Login: decode response: %w", err)
		}
	}
	return &resp, nil
}

// Register creates an account and returns the server response untouched.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Post(ctx, "auth/register/", req, &raw); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return raw, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := c.Get(ctx, "auth/me/", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return u, nil
}

// UpdateMe edits the profile and returns the updated profile.
func (c *Client) UpdateMe(ctx context.Context, p ProfileUpdate) (domain.User, error) {
	var u domain.User
	if err := c.Patch(ctx, "auth/me/update/", p, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return u, nil
}

// UpdateProfileImage uploads a new avatar and returns the updated profile.
func (c *Client) UpdateProfileImage(ctx context.Context, path string) (domain.User, error) {
	var u domain.User
	form := NewForm().File("profile_image", path)
	if err := c.PatchMultipart(ctx, "auth/me/update/", form, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateProfileImage: %w", err)
	}
	return u, nil
}

// ChangePassword changes the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, p PasswordChange) error {
	if err := c.Post(ctx, "auth/change_password/", p, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// ForgotPassword requests password reset instructions for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if err := c.Post(ctx, "auth/forgot_password/", map[string]string{"email": email}, nil); err != nil {
		return fmt.Errorf("client.ForgotPassword: %w", err)
	}
	return nil
}

// SendContact submits a contact message.
func (c *Client) SendContact(ctx context.Context, m ContactMessage) error {
	if err := c.Post(ctx, "auth/contact/", m, nil); err != nil {
		return fmt.Errorf("client.SendContact: %w", err)
	}
	return nil
}
