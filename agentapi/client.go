package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lucasmenendez/agentpanelbot/metrics"
)

const (
	defaultCurrency  = "THB"
	defaultPageSize  = 100
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "agentpanelbot/1.0"
	maxResponseBytes = 4 << 20
)

const (
	endpointLogin    = "login"
	endpointMembers  = "member_list"
	endpointDeposit  = "deposit"
	endpointProfile  = "profile"
	endpointWinLose  = "winlose"
	loginPath        = "/login"
	profilePath      = "/get-profile"
	winLosePath      = "/getwlagent"
	memberListPath   = "/memberList"
	depositPath      = "/deposit"
	acceptHeader     = "application/json, text/plain, */*"
	contentTypeJSON  = "application/json"
	statusLabelError = "error"
)

// Config controls how the agent API client behaves.
type Config struct {
	// APIURL is the base of the login, profile and report endpoints.
	APIURL string
	// PanelURL is the base of the member list and deposit endpoints.
	PanelURL string
	// Origin, when set, is sent as Origin and Referer headers, as the panel
	// front end does.
	Origin     string
	Currency   string
	PageSize   int
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Client wraps the agent management endpoints used by the bot. Every call is
// a single attempt bounded by the configured timeout.
type Client struct {
	apiURL     string
	panelURL   string
	origin     string
	currency   string
	pageSize   int
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		return nil, errors.New("agentapi: API URL is required")
	}
	panelURL := strings.TrimRight(strings.TrimSpace(cfg.PanelURL), "/")
	if panelURL == "" {
		return nil, errors.New("agentapi: panel URL is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		apiURL:     apiURL,
		panelURL:   panelURL,
		origin:     strings.TrimRight(strings.TrimSpace(cfg.Origin), "/"),
		currency:   currency,
		pageSize:   pageSize,
		timeout:    timeout,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		now:        now,
	}, nil
}

// Currency returns the currency deposits and balances are expressed in.
func (c *Client) Currency() string {
	return c.currency
}

// post sends payload as JSON and returns the status code and the raw body.
// A non-nil error means no response was received.
func (c *Client) post(ctx context.Context, endpoint, url, token string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s body: %w", endpoint, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
		req.Header.Set("Referer", c.origin+"/")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, statusLabelError, time.Since(start).Seconds())
		c.logger.Warn("agent api request failed", "endpoint", endpoint, "error", err)
		return 0, nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), elapsed.Seconds())
	if err != nil {
		return 0, nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	c.logger.Debug("agent api request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return resp.StatusCode, data, nil
}
