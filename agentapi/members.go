package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type memberListResponse struct {
	Data *struct {
		Docs []struct {
			ID       string `json:"_id"`
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"docs"`
	} `json:"data"`
}

// ListMembers fetches the first page of the member directory. The result is a
// point in time snapshot in upstream order. Entries without id or username
// are skipped.
func (c *Client) ListMembers(ctx context.Context, session *Session) ([]Counterparty, error) {
	if session == nil || session.Token == "" {
		return nil, &LookupError{Endpoint: endpointMembers, Err: errors.New("session required")}
	}
	payload := map[string]int{
		"page":  1,
		"limit": c.pageSize,
	}
	status, data, err := c.post(ctx, endpointMembers, c.panelURL+memberListPath, session.Token, payload)
	if err != nil {
		return nil, &LookupError{Endpoint: endpointMembers, Err: err}
	}
	if status != http.StatusOK {
		return nil, &LookupError{Endpoint: endpointMembers, StatusCode: status, Message: upstreamMessage(data)}
	}
	var parsed memberListResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &LookupError{Endpoint: endpointMembers, StatusCode: status, Err: err}
	}
	if parsed.Data == nil {
		return nil, &LookupError{Endpoint: endpointMembers, StatusCode: status, Message: "missing data field"}
	}
	members := make([]Counterparty, 0, len(parsed.Data.Docs))
	for _, doc := range parsed.Data.Docs {
		username := strings.TrimSpace(doc.Username)
		if doc.ID == "" || username == "" {
			c.logger.Warn("skipping incomplete member entry", "id", doc.ID, "username", doc.Username)
			continue
		}
		members = append(members, Counterparty{
			ID:          doc.ID,
			Username:    username,
			DisplayName: strings.TrimSpace(doc.Name),
		})
	}
	return members, nil
}

// upstreamMessage extracts the human readable message of an error body, if
// any.
func upstreamMessage(data []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Msg
}
