package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmenendez/agentpanelbot/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.APIURL = server.URL + "/api"
	cfg.PanelURL = server.URL + "/a/p"
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestNewClientDefaultsAndValidation(t *testing.T) {
	_, err := New(Config{PanelURL: "http://panel"})
	require.Error(t, err)
	_, err = New(Config{APIURL: "http://api"})
	require.Error(t, err)

	client, err := New(Config{APIURL: "http://api/", PanelURL: "http://panel/a/p/"})
	require.NoError(t, err)
	assert.Equal(t, "http://api", client.apiURL)
	assert.Equal(t, "http://panel/a/p", client.panelURL)
	assert.Equal(t, "THB", client.Currency())
	assert.Equal(t, defaultPageSize, client.pageSize)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}

func TestLogin(t *testing.T) {
	obtained := time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body := decodeBody(t, r)
		assert.Equal(t, "panel", body["username"])
		assert.Equal(t, "secret", body["password"])
		w.Write([]byte(`{"token":"tok-1"}`))
	}, Config{Now: func() time.Time { return obtained }})

	session, err := client.Login(context.Background(), Credentials{Username: "panel", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, obtained, session.ObtainedAt)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"rejected credentials", http.StatusUnauthorized, `{"message":"bad credentials"}`, "bad credentials"},
		{"missing token", http.StatusOK, `{"message":"ok"}`, "token missing from login response"},
		{"server error without body", http.StatusBadGateway, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, Config{})
			_, err := client.Login(context.Background(), Credentials{Username: "u", Password: "p"})
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.status, authErr.StatusCode)
			assert.Equal(t, tt.message, authErr.Message)
		})
	}
}

func TestLoginTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, Config{Timeout: 20 * time.Millisecond})
	_, err := client.Login(context.Background(), Credentials{})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, authErr.StatusCode)
	assert.Error(t, authErr.Err)
}

func TestListMembers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/a/p/memberList", r.URL.Path)
		assert.Equal(t, "tok-1", r.Header.Get("Authorization"))
		body := decodeBody(t, r)
		assert.EqualValues(t, 1, body["page"])
		assert.EqualValues(t, 25, body["limit"])
		w.Write([]byte(`{"data":{"docs":[
			{"_id":"id-1","username":"agent01","name":"First"},
			{"_id":"","username":"broken","name":"No id"},
			{"_id":"id-2","username":"agent02","name":"Second"}
		]}}`))
	}, Config{PageSize: 25})

	members, err := client.ListMembers(context.Background(), &Session{Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, []Counterparty{
		{ID: "id-1", Username: "agent01", DisplayName: "First"},
		{ID: "id-2", Username: "agent02", DisplayName: "Second"},
	}, members)
}

func TestListMembersFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non success status", http.StatusForbidden, `{"message":"expired"}`},
		{"malformed payload", http.StatusOK, `{"data":`},
		{"missing data", http.StatusOK, `{"docs":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, Config{})
			_, err := client.ListMembers(context.Background(), &Session{Token: "tok"})
			var lookupErr *LookupError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, tt.status, lookupErr.StatusCode)
		})
	}

	client, err := New(Config{APIURL: "http://api", PanelURL: "http://panel"})
	require.NoError(t, err)
	_, err = client.ListMembers(context.Background(), nil)
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestDepositClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome TransferOutcome
		reason  string
		code    int
	}{
		{"success", http.StatusOK, `{"code":0,"msg":"ok"}`, TransferSucceeded, "", 0},
		{"business rejection", http.StatusOK, `{"code":7,"msg":"insufficient funds"}`, TransferRejected, "insufficient funds", 7},
		{"rejection without message", http.StatusOK, `{"code":3}`, TransferRejected, unknownRejectReason, 3},
		{"server error", http.StatusInternalServerError, `{"code":0}`, TransferFailed, "", 0},
		{"unparsable body", http.StatusOK, `<html>`, TransferFailed, "", 0},
		{"missing code", http.StatusOK, `{"msg":"?"}`, TransferFailed, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, Config{})
			result := client.Deposit(context.Background(), TransferRequest{
				Token:          "tok",
				CounterpartyID: "id-1",
				Amount:         decimal.RequireFromString("10"),
			})
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Equal(t, tt.code, result.Code)
			if tt.outcome == TransferFailed {
				var transportErr *TransportError
				assert.ErrorAs(t, result.Err, &transportErr)
			} else {
				assert.NoError(t, result.Err)
			}
		})
	}
}

func TestDepositPayload(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/a/p/deposit", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"token":"tok","userId":"id-1","cur":"THB","amount":150.50,"passcode":"000000"}`, string(body))
		assert.Contains(t, string(body), `"amount":150.50`)
		w.Write([]byte(`{"code":0}`))
	}, Config{})

	result := client.Deposit(context.Background(), TransferRequest{
		Token:             "tok",
		CounterpartyID:    "id-1",
		Amount:            decimal.RequireFromString("150.5"),
		AuthorizationCode: "000000",
	})
	assert.Equal(t, TransferSucceeded, result.Outcome)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDepositNeverRetries(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Config{})
	result := client.Deposit(context.Background(), TransferRequest{
		Token:          "tok",
		CounterpartyID: "id-1",
		Amount:         decimal.NewFromInt(5),
	})
	assert.Equal(t, TransferFailed, result.Outcome)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDepositRejectsInvalidRequestWithoutCalling(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, Config{})
	requests := []TransferRequest{
		{CounterpartyID: "id", Amount: decimal.NewFromInt(1)},
		{Token: "tok", Amount: decimal.NewFromInt(1)},
		{Token: "tok", CounterpartyID: "id", Amount: decimal.Zero},
		{Token: "tok", CounterpartyID: "id", Amount: decimal.NewFromInt(-3)},
	}
	for _, req := range requests {
		result := client.Deposit(context.Background(), req)
		assert.Equal(t, TransferFailed, result.Outcome)
		assert.True(t, errors.Is(result.Err, ErrInvalidTransfer))
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get-profile", r.URL.Path)
		assert.Equal(t, "tok", decodeBody(t, r)["token"])
		w.Write([]byte(`{"data":{"balance":{"THB":{"balance":{"$numberDecimal":"12345.678"}}}}}`))
	}, Config{})
	profile, err := client.Profile(context.Background(), &Session{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "THB", profile.Currency)
	assert.True(t, decimal.RequireFromString("12345.678").Equal(profile.Balance))
}

func TestProfileMissingCurrencyIsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"balance":{"USD":{"balance":{"$numberDecimal":"1"}}}}}`))
	}, Config{})
	profile, err := client.Profile(context.Background(), &Session{Token: "tok"})
	require.NoError(t, err)
	assert.True(t, profile.Balance.IsZero())
}

func TestWinLose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getwlagent", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "01-11-2024", body["startDate"])
		assert.Equal(t, "02-11-2024", body["endDate"])
		w.Write([]byte(`{"footer":{"data":[{"betAmt":-1500.5,"memberWl":200,"winLoseTotal":-75.25}]}}`))
	}, Config{})
	totals, err := client.WinLose(context.Background(), &Session{Token: "tok"}, "01-11-2024", "02-11-2024")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-1500.5").Equal(totals.BetAmount))
	assert.True(t, decimal.NewFromInt(200).Equal(totals.MemberWinLose))
	assert.True(t, decimal.RequireFromString("-75.25").Equal(totals.WinLoseTotal))
}

func TestWinLoseEmptyFooter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"footer":{"data":[]}}`))
	}, Config{})
	_, err := client.WinLose(context.Background(), &Session{Token: "tok"}, "a", "b")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestUpstreamMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"t"}`))
	}, Config{Metrics: metrics.New(reg)})
	_, err := client.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if family.GetName() == "agentpanel_upstream_requests_total" {
			found = true
			require.Len(t, family.GetMetric(), 1)
			assert.Equal(t, 1.0, family.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestListMembersIsIdempotent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"docs":[
			{"_id":"id-1","username":"agent01","name":"First"},
			{"_id":"id-2","username":"agent02","name":"Second"}
		]}}`))
	}, Config{})
	session := &Session{Token: "tok"}

	names := func() map[string]string {
		members, err := client.ListMembers(context.Background(), session)
		require.NoError(t, err)
		out := map[string]string{}
		for _, member := range members {
			out[member.Username] = member.DisplayName
		}
		return out
	}
	first := names()
	second := names()
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]string{"agent01": "First", "agent02": "Second"}, first)
}
