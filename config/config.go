package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds application configuration
type Config struct {
	TelegramToken    string
	AdminUserIDs     []int64
	AdminUserAliases []string
	AllowedUserIDs   []int64

	AgentAPIURL     string
	AgentPanelURL   string
	AgentOrigin     string
	AgentUsername   string
	AgentPassword   string
	DepositPasscode string
	Currency        string
	MemberPageSize  int
	HTTPTimeout     time.Duration
	ConversationTTL time.Duration

	ReportChatID   int64
	ReportAt       string
	ReportLocation *time.Location

	MetricsAddr string
	LogLevel    string
}

// Load reads configuration from environment variables and checks that every
// required value is present.
func Load() (*Config, error) {
	adminIDs, err := getEnvAsInt64s("ADMIN_USER_IDS")
	if err != nil {
		return nil, fmt.Errorf("config: invalid ADMIN_USER_IDS: %w", err)
	}
	allowedIDs, err := getEnvAsInt64s("ALLOWED_USER_IDS")
	if err != nil {
		return nil, fmt.Errorf("config: invalid ALLOWED_USER_IDS: %w", err)
	}
	reportChatID, err := getEnvAsInt64("REPORT_CHAT_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("config: invalid REPORT_CHAT_ID: %w", err)
	}
	timezone := getEnv("REPORT_TIMEZONE", "Asia/Bangkok")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid REPORT_TIMEZONE: %w", err)
	}

	cfg := &Config{
		TelegramToken:    getEnv("TELEGRAM_TOKEN", ""),
		AdminUserIDs:     adminIDs,
		AdminUserAliases: splitList(getEnv("ADMIN_USER_ALIASES", "")),
		AllowedUserIDs:   allowedIDs,
		AgentAPIURL:      getEnv("AGENT_API_URL", ""),
		AgentPanelURL:    getEnv("AGENT_PANEL_URL", ""),
		AgentOrigin:      getEnv("AGENT_ORIGIN", ""),
		AgentUsername:    getEnv("AGENT_USERNAME", ""),
		AgentPassword:    getEnv("AGENT_PASSWORD", ""),
		DepositPasscode:  getEnv("DEPOSIT_PASSCODE", ""),
		Currency:         strings.ToUpper(getEnv("CURRENCY", "THB")),
		MemberPageSize:   getEnvAsInt("MEMBER_PAGE_SIZE", 100),
		HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		ConversationTTL:  getEnvAsDuration("CONVERSATION_TTL", 30*time.Minute),
		ReportChatID:     reportChatID,
		ReportAt:         getEnv("REPORT_AT", "09:00"),
		ReportLocation:   location,
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Admins returns the admin user ids mapped to their aliases.
func (c *Config) Admins() map[int64]string {
	admins := make(map[int64]string, len(c.AdminUserIDs))
	for i, id := range c.AdminUserIDs {
		admins[id] = c.AdminUserAliases[i]
	}
	return admins
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"TELEGRAM_TOKEN", c.TelegramToken},
		{"AGENT_API_URL", c.AgentAPIURL},
		{"AGENT_PANEL_URL", c.AgentPanelURL},
		{"AGENT_USERNAME", c.AgentUsername},
		{"AGENT_PASSWORD", c.AgentPassword},
		{"DEPOSIT_PASSCODE", c.DepositPasscode},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required variables: %s", strings.Join(missing, ", "))
	}
	if len(c.AdminUserIDs) == 0 {
		return errors.New("config: at least one admin user id is required")
	}
	if len(c.AdminUserIDs) != len(c.AdminUserAliases) {
		return errors.New("config: admin user ids and aliases must have the same length")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(valueStr, 10, 64)
}

// getEnvAsInt64s parses a comma separated list of ids.
func getEnvAsInt64s(key string) ([]int64, error) {
	var ids []int64
	for _, strID := range splitList(getEnv(key, "")) {
		id, err := strconv.ParseInt(strID, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
