package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/lucasmenendez/agentpanelbot/agentapi"
)

const dateLayout = "02-01-2006"

// Client is the part of the agent API the reports read from.
type Client interface {
	Login(ctx context.Context, creds agentapi.Credentials) (*agentapi.Session, error)
	Profile(ctx context.Context, session *agentapi.Session) (*agentapi.Profile, error)
	WinLose(ctx context.Context, session *agentapi.Session, startDate, endDate string) (*agentapi.WinLose, error)
}

type Config struct {
	Client      Client
	Credentials agentapi.Credentials
	// Location is the timezone the report day is computed in.
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service builds the credit balance and win/loss texts. Every call logs in
// again; sessions are not shared with the deposit workflow.
type Service struct {
	client Client
	creds  agentapi.Credentials
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Client == nil {
		return nil, errors.New("report: client is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		client: cfg.Client,
		creds:  cfg.Credentials,
		loc:    loc,
		logger: logger,
		now:    now,
	}, nil
}

// Balance returns the credit balance message of the panel account.
func (s *Service) Balance(ctx context.Context) (string, error) {
	session, err := s.client.Login(ctx, s.creds)
	if err != nil {
		return "", fmt.Errorf("report: balance login: %w", err)
	}
	profile, err := s.client.Profile(ctx, session)
	if err != nil {
		return "", fmt.Errorf("report: balance: %w", err)
	}
	return fmt.Sprintf(BalanceTemplate, formatAmount(profile.Balance), profile.Currency), nil
}

// Daily returns the win/loss report from yesterday to today.
func (s *Service) Daily(ctx context.Context) (string, error) {
	today := s.now().In(s.loc)
	startDate := today.AddDate(0, 0, -1).Format(dateLayout)
	endDate := today.Format(dateLayout)
	s.logger.Info("building win/loss report", "start", startDate, "end", endDate)

	session, err := s.client.Login(ctx, s.creds)
	if err != nil {
		return "", fmt.Errorf("report: daily login: %w", err)
	}
	totals, err := s.client.WinLose(ctx, session, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("report: daily: %w", err)
	}
	return formatWinLose(startDate, endDate, totals), nil
}

func formatWinLose(startDate, endDate string, t *agentapi.WinLose) string {
	lines := []string{
		fmt.Sprintf(DailyHeaderTemplate, startDate, endDate),
		"",
		fmt.Sprintf(DailyLineTemplate, "💰", "Bet amount", formatAmount(t.BetAmount.Abs())),
		fmt.Sprintf(DailyLineTemplate, "💵", "Win/Lose (Member)", formatAmount(t.MemberWinLose)),
		fmt.Sprintf(DailyLineTemplate, "💵", "Win/Lose (Agent)", formatAmount(t.AgentWinLose)),
		fmt.Sprintf(DailyLineTemplate, "💵", "Win/Lose (Company)", formatAmount(t.CompanyWinLose)),
		fmt.Sprintf(DailyLineTemplate, "📊", "Commission (Member)", formatAmount(t.MemberCommission)),
		fmt.Sprintf(DailyLineTemplate, "📊", "Commission (Agent)", formatAmount(t.AgentCommission)),
		fmt.Sprintf(DailyLineTemplate, "📊", "Commission (Company)", formatAmount(t.CompanyComm)),
		fmt.Sprintf(DailyLineTemplate, "📊", "Gross commission", formatAmount(t.GrossCommission)),
		fmt.Sprintf(DailyLineTemplate, "🔄", "Net total (Member)", formatAmount(t.MemberTotal)),
		fmt.Sprintf(DailyLineTemplate, "🔄", "Net total (Agent)", formatAmount(t.AgentTotal)),
		fmt.Sprintf(DailyLineTemplate, "🔄", "Net total (Company)", formatAmount(t.CompanyTotal)),
		fmt.Sprintf(DailyLineTemplate, "💹", "Valid amount", formatAmount(t.ValidAmount.Abs())),
		fmt.Sprintf(DailyLineTemplate, "💹", "Win/Lose total", formatAmount(t.WinLoseTotal)),
	}
	return strings.Join(lines, "\n")
}

// formatAmount renders d with thousands separators and 2 decimals.
func formatAmount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}
