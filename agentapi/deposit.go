package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const unknownRejectReason = "unknown reason"

type depositPayload struct {
	Token    string      `json:"token"`
	UserID   string      `json:"userId"`
	Currency string      `json:"cur"`
	Amount   json.Number `json:"amount"`
	Passcode string      `json:"passcode"`
}

type depositResponse struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
}

// Deposit credits req.Amount to the counterparty. It makes exactly one
// network attempt and never retries: a repeated call could credit twice.
func (c *Client) Deposit(ctx context.Context, req TransferRequest) TransferResult {
	if err := req.validate(); err != nil {
		return TransferResult{Outcome: TransferFailed, Err: err}
	}
	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}
	payload := depositPayload{
		Token:    req.Token,
		UserID:   req.CounterpartyID,
		Currency: currency,
		Amount:   json.Number(req.Amount.StringFixed(2)),
		Passcode: req.AuthorizationCode,
	}
	status, data, err := c.post(ctx, endpointDeposit, c.panelURL+depositPath, req.Token, payload)
	if err != nil {
		return TransferResult{Outcome: TransferFailed, Err: &TransportError{Err: err}}
	}
	if status != http.StatusOK {
		return TransferResult{Outcome: TransferFailed, Err: &TransportError{StatusCode: status, Body: string(data)}}
	}
	var parsed depositResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return TransferResult{Outcome: TransferFailed, Err: &TransportError{StatusCode: status, Body: string(data), Err: err}}
	}
	if parsed.Code == nil {
		return TransferResult{Outcome: TransferFailed, Err: &TransportError{
			StatusCode: status,
			Body:       string(data),
			Err:        errors.New("missing code field"),
		}}
	}
	if *parsed.Code != 0 {
		reason := strings.TrimSpace(parsed.Msg)
		if reason == "" {
			reason = unknownRejectReason
		}
		return TransferResult{Outcome: TransferRejected, Code: *parsed.Code, Reason: reason}
	}
	return TransferResult{Outcome: TransferSucceeded}
}

func (r TransferRequest) validate() error {
	switch {
	case r.Token == "":
		return fmt.Errorf("%w: missing token", ErrInvalidTransfer)
	case r.CounterpartyID == "":
		return fmt.Errorf("%w: missing counterparty", ErrInvalidTransfer)
	case !r.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	}
	return nil
}
