package agentapi

import (
	"errors"
	"fmt"
)

// ErrInvalidTransfer is returned, wrapped in a failed TransferResult, when a
// TransferRequest is missing its token, counterparty or positive amount.
var ErrInvalidTransfer = errors.New("agentapi: invalid transfer request")

// AuthError reports a rejected login, a login response without token or a
// login call that could not complete.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	return describe("authentication failed", e.StatusCode, e.Message, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// LookupError reports a failed or malformed read from the panel: the member
// directory, the profile or the win/loss report.
type LookupError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *LookupError) Error() string {
	return describe(e.Endpoint+" lookup failed", e.StatusCode, e.Message, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// TransportError reports a deposit call that did not produce a usable answer.
// Body keeps the raw response for operator logs.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	return describe("deposit transport failure", e.StatusCode, e.Body, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func describe(what string, status int, message string, err error) string {
	msg := "agentapi: " + what
	if status != 0 {
		msg += fmt.Sprintf(" (status=%d)", status)
	}
	if message != "" {
		msg += ": " + message
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}
