package agentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges creds for a fresh Session. Any non-200 answer, a missing
// token or a failed call yields an *AuthError. Nothing is cached.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	payload := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}
	status, data, err := c.post(ctx, endpointLogin, c.apiURL+loginPath, "", payload)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	var parsed loginResponse
	decodeErr := json.Unmarshal(data, &parsed)
	if status != http.StatusOK {
		return nil, &AuthError{StatusCode: status, Message: parsed.Message}
	}
	if decodeErr != nil {
		return nil, &AuthError{StatusCode: status, Err: decodeErr}
	}
	if strings.TrimSpace(parsed.Token) == "" {
		return nil, &AuthError{StatusCode: status, Message: "token missing from login response"}
	}
	return &Session{Token: parsed.Token, ObtainedAt: c.now()}, nil
}
