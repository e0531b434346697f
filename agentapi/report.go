package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
)

type profileResponse struct {
	Data struct {
		Balance map[string]struct {
			Balance struct {
				Value string `json:"$numberDecimal"`
			} `json:"balance"`
		} `json:"balance"`
	} `json:"data"`
}

// Profile reads the credit balance of the logged in panel account in the
// client currency. A currency missing from the answer reads as zero.
func (c *Client) Profile(ctx context.Context, session *Session) (*Profile, error) {
	if session == nil || session.Token == "" {
		return nil, &LookupError{Endpoint: endpointProfile, Err: errors.New("session required")}
	}
	payload := map[string]string{"token": session.Token}
	status, data, err := c.post(ctx, endpointProfile, c.apiURL+profilePath, session.Token, payload)
	if err != nil {
		return nil, &LookupError{Endpoint: endpointProfile, Err: err}
	}
	if status != http.StatusOK {
		return nil, &LookupError{Endpoint: endpointProfile, StatusCode: status, Message: upstreamMessage(data)}
	}
	var parsed profileResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &LookupError{Endpoint: endpointProfile, StatusCode: status, Err: err}
	}
	profile := &Profile{Currency: c.currency, Balance: decimal.Zero}
	if entry, ok := parsed.Data.Balance[c.currency]; ok && entry.Balance.Value != "" {
		balance, err := decimal.NewFromString(entry.Balance.Value)
		if err != nil {
			return nil, &LookupError{Endpoint: endpointProfile, StatusCode: status, Err: err}
		}
		profile.Balance = balance
	}
	return profile, nil
}

type winLoseResponse struct {
	Footer struct {
		Data []WinLose `json:"data"`
	} `json:"footer"`
}

// WinLose reads the agent win/loss totals between startDate and endDate, both
// formatted as dd-mm-yyyy.
func (c *Client) WinLose(ctx context.Context, session *Session, startDate, endDate string) (*WinLose, error) {
	if session == nil || session.Token == "" {
		return nil, &LookupError{Endpoint: endpointWinLose, Err: errors.New("session required")}
	}
	payload := map[string]string{
		"token":     session.Token,
		"startDate": startDate,
		"endDate":   endDate,
	}
	status, data, err := c.post(ctx, endpointWinLose, c.apiURL+winLosePath, session.Token, payload)
	if err != nil {
		return nil, &LookupError{Endpoint: endpointWinLose, Err: err}
	}
	if status != http.StatusOK {
		return nil, &LookupError{Endpoint: endpointWinLose, StatusCode: status, Message: upstreamMessage(data)}
	}
	var parsed winLoseResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &LookupError{Endpoint: endpointWinLose, StatusCode: status, Err: err}
	}
	if len(parsed.Footer.Data) == 0 {
		return nil, &LookupError{Endpoint: endpointWinLose, StatusCode: status, Message: "empty report footer"}
	}
	totals := parsed.Footer.Data[0]
	return &totals, nil
}
