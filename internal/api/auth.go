package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
	"github.com/productsiksha/pmsiksha/internal/models"
)

// credentialsPayload is the request body shared by login and signup
type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a session token. On success the
// token is installed on the client for subsequent calls.
func (c *Client) Login(email, password string) (*models.AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	body, err := c.post("/api/login", credentialsPayload{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}

	return c.parseAuthResult(body, "/api/login")
}

// Signup creates an account and returns a session token for it
func (c *Client) Signup(email, password string) (*models.AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	body, err := c.post("/api/signup", credentialsPayload{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}

	return c.parseAuthResult(body, "/api/signup")
}

// ChangePassword updates the account password after verifying the current
// one. The session token is not rotated; existing logins stay valid.
func (c *Client) ChangePassword(email, currentPassword, newPassword string) (string, error) {
	if email == "" || currentPassword == "" || newPassword == "" {
		return "", fmt.Errorf("email, current password and new password are required")
	}

	payload := struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{email, currentPassword, newPassword}

	body, err := c.post("/api/change-password", payload, false)
	if err != nil {
		return "", err
	}

	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = "password updated"
	}
	return msg, nil
}

// parseAuthResult decodes a login or signup response and installs the token
func (c *Client) parseAuthResult(body []byte, endpoint string) (*models.AuthResult, error) {
	var result models.AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apierrors.NewParseError(err.Error(), endpoint)
	}
	if result.Token == "" {
		return nil, apierrors.NewParseError("response carries no token", endpoint)
	}

	c.SetToken(result.Token)
	return &result, nil
}
