package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmenendez/agentpanelbot/agentapi"
	"github.com/lucasmenendez/agentpanelbot/metrics"
)

const defaultTTL = 30 * time.Minute

// Authenticator obtains a fresh upstream session.
type Authenticator interface {
	Login(ctx context.Context, creds agentapi.Credentials) (*agentapi.Session, error)
}

// Directory lists the counterparties visible to a session.
type Directory interface {
	ListMembers(ctx context.Context, session *agentapi.Session) ([]agentapi.Counterparty, error)
}

// Executor performs a single funds transfer.
type Executor interface {
	Deposit(ctx context.Context, req agentapi.TransferRequest) agentapi.TransferResult
}

// Sink delivers notifications to the chat.
type Sink interface {
	Notify(ctx context.Context, note Notification) error
}

// Config wires the Machine to the upstream API. Credentials and the
// authorization code are supplied by the caller, never built in.
type Config struct {
	Auth              Authenticator
	Directory         Directory
	Executor          Executor
	Credentials       agentapi.Credentials
	AuthorizationCode string
	Currency          string
	// TTL bounds how long an abandoned conversation is kept.
	TTL     time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Machine drives the deposit conversation of every user. It owns the
// per-user conversation store.
type Machine struct {
	auth     Authenticator
	dir      Directory
	exec     Executor
	creds    agentapi.Credentials
	passcode string
	currency string
	store    *store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New validates cfg and returns a Machine with an empty store.
func New(cfg Config) (*Machine, error) {
	if cfg.Auth == nil || cfg.Directory == nil || cfg.Executor == nil {
		return nil, errors.New("deposit: authenticator, directory and executor are required")
	}
	if cfg.Credentials.Username == "" || cfg.Credentials.Password == "" {
		return nil, errors.New("deposit: credentials are required")
	}
	if cfg.AuthorizationCode == "" {
		return nil, errors.New("deposit: authorization code is required")
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "THB"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		auth:     cfg.Auth,
		dir:      cfg.Directory,
		exec:     cfg.Executor,
		creds:    cfg.Credentials,
		passcode: cfg.AuthorizationCode,
		currency: currency,
		store:    newStore(ttl),
		logger:   logger,
		metrics:  cfg.Metrics,
		now:      now,
	}, nil
}

// State returns the current state of userID, StateIdle when no run is active.
// It is safe to call from any goroutine.
func (m *Machine) State(userID int64) State {
	if state, ok := m.store.state(userID); ok {
		return state
	}
	return StateIdle
}

// CleanExpired forgets conversations idle for longer than the TTL and
// returns one notification per dropped run telling its user to start again.
// It is safe to call concurrently with Advance.
func (m *Machine) CleanExpired() []Notification {
	dropped := m.store.cleanExpired(m.now())
	notes := make([]Notification, 0, len(dropped))
	for _, conv := range dropped {
		m.logger.Info("deposit conversation expired",
			"user_id", conv.UserID,
			"run_id", conv.RunID,
			"state", conv.State,
		)
		m.metrics.ObserveRun("expired")
		notes = append(notes, Notification{ChatID: conv.ChatID, Text: ExpiredMessage})
	}
	return notes
}

// Handle advances the conversation of userID and delivers the resulting
// notifications through sink.
func (m *Machine) Handle(ctx context.Context, userID int64, ev Event, sink Sink) State {
	state, notes := m.Advance(ctx, userID, ev)
	for _, note := range notes {
		if err := sink.Notify(ctx, note); err != nil {
			m.logger.Error("deposit notification failed", "user_id", userID, "error", err)
		}
	}
	return state
}

// Advance applies ev to the conversation of userID and returns the new state
// and the notifications to send. Events of one user must be delivered
// serially: the caller may not invoke Advance for the same userID again
// before the previous call returned. Different users may advance
// concurrently.
func (m *Machine) Advance(ctx context.Context, userID int64, ev Event) (State, []Notification) {
	switch ev.Kind {
	case EventStart:
		return m.start(ctx, userID, ev.ChatID)
	case EventCancel:
		return m.cancel(userID, ev.ChatID)
	}
	conv := m.store.get(userID)
	if conv == nil {
		return StateIdle, nil
	}
	switch {
	case ev.Kind == EventSelect && conv.State == StateAwaitingAgentSelection:
		return m.selectAgent(conv, ev)
	case ev.Kind == EventText && conv.State == StateAwaitingAmount:
		return m.enterAmount(ctx, conv, ev.Text)
	}
	// anything else does not belong to the current step
	m.logger.Debug("deposit event ignored",
		"user_id", userID,
		"run_id", conv.RunID,
		"state", conv.State,
		"kind", ev.Kind,
	)
	return conv.State, nil
}

func (m *Machine) start(ctx context.Context, userID, chatID int64) (State, []Notification) {
	runID := uuid.NewString()
	conv := &Conversation{
		RunID:  runID,
		Token:  runToken(runID),
		UserID: userID,
		ChatID: chatID,
		State:  StateIdle,
	}
	if previous := m.store.replace(conv, m.now()); previous != nil {
		m.logger.Info("deposit run superseded",
			"user_id", userID,
			"run_id", previous.RunID,
			"state", previous.State,
		)
		m.metrics.ObserveRun("superseded")
	}
	logger := m.logger.With("user_id", userID, "run_id", runID)
	logger.Info("deposit run started")

	session, err := m.auth.Login(ctx, m.creds)
	if err != nil {
		logger.Error("deposit login failed", "error", err)
		return m.finish(conv, StateAborted, ErrLoginFailed)
	}
	members, err := m.dir.ListMembers(ctx, session)
	if err != nil {
		logger.Error("deposit directory fetch failed", "error", err)
		return m.finish(conv, StateAborted, ErrDirectoryFailed)
	}
	if len(members) == 0 {
		logger.Warn("deposit directory is empty")
		return m.finish(conv, StateAborted, ErrNoAgents)
	}

	conv.Session = session
	conv.Counterparties = make(map[string]agentapi.Counterparty, len(members))
	conv.order = make([]string, 0, len(members))
	options := make([]Option, 0, len(members))
	for _, member := range members {
		if _, dup := conv.Counterparties[member.Username]; dup {
			continue
		}
		conv.Counterparties[member.Username] = member
		conv.order = append(conv.order, member.Username)
		options = append(options, Option{Label: member.Label(), Value: member.Username})
	}
	conv.State = StateAwaitingAgentSelection
	m.store.touch(conv, m.now())
	return conv.State, []Notification{{
		ChatID:   conv.ChatID,
		Text:     ChooseAgentPrompt,
		RunToken: conv.Token,
		Options:  options,
	}}
}

func (m *Machine) selectAgent(conv *Conversation, ev Event) (State, []Notification) {
	if ev.RunToken != conv.Token {
		m.logger.Warn("deposit selection from stale menu ignored",
			"user_id", conv.UserID,
			"run_id", conv.RunID,
		)
		m.metrics.ObserveRejectedInput("stale_selection")
		return conv.State, nil
	}
	member, ok := conv.Counterparties[ev.Username]
	if !ok {
		m.logger.Warn("deposit selection outside directory ignored",
			"user_id", conv.UserID,
			"run_id", conv.RunID,
			"username", ev.Username,
		)
		m.metrics.ObserveRejectedInput("selection")
		return conv.State, nil
	}
	conv.ChosenUsername = member.Username
	conv.State = StateAwaitingAmount
	m.store.touch(conv, m.now())
	return conv.State, []Notification{{
		ChatID: conv.ChatID,
		Text:   fmt.Sprintf(EnterAmountTemplate, member.Label()),
	}}
}

func (m *Machine) enterAmount(ctx context.Context, conv *Conversation, text string) (State, []Notification) {
	logger := m.logger.With("user_id", conv.UserID, "run_id", conv.RunID)
	amount, err := ParseAmount(text)
	if err != nil {
		logger.Info("deposit amount rejected", "error", err)
		m.metrics.ObserveRejectedInput("amount")
		m.store.touch(conv, m.now())
		return conv.State, []Notification{{ChatID: conv.ChatID, Text: ErrInvalidAmount}}
	}
	conv.Amount = decimal.NewNullDecimal(amount)
	m.store.touch(conv, m.now())

	// the listing shown to the user may be stale, resolve the id again
	members, err := m.dir.ListMembers(ctx, conv.Session)
	if err != nil {
		logger.Error("deposit member lookup failed", "error", err)
		return m.finish(conv, StateAborted, ErrAgentLookupFailed)
	}
	var target *agentapi.Counterparty
	for i := range members {
		if members[i].Username == conv.ChosenUsername {
			target = &members[i]
			break
		}
	}
	if target == nil {
		logger.Error("deposit member vanished from directory", "username", conv.ChosenUsername)
		return m.finish(conv, StateAborted, ErrAgentNotFound)
	}

	req := agentapi.TransferRequest{
		Token:             conv.Session.Token,
		CounterpartyID:    target.ID,
		Currency:          m.currency,
		Amount:            amount,
		AuthorizationCode: m.passcode,
	}
	logger.Info("deposit transfer requested",
		"username", conv.ChosenUsername,
		"amount", amount.StringFixed(2),
		"currency", m.currency,
	)
	result := m.exec.Deposit(ctx, req)
	switch result.Outcome {
	case agentapi.TransferSucceeded:
		logger.Info("deposit transfer succeeded", "username", conv.ChosenUsername)
		text := fmt.Sprintf(DepositSuccessFormat, amount.StringFixed(2), m.currency, conv.chosen().Label())
		return m.finish(conv, StateCompleted, text)
	case agentapi.TransferRejected:
		logger.Warn("deposit transfer rejected", "code", result.Code, "reason", result.Reason)
		return m.finish(conv, StateCompleted, fmt.Sprintf(ErrDepositRejected, result.Reason))
	default:
		logger.Error("deposit transfer failed", "error", result.Err)
		return m.finish(conv, StateAborted, ErrDepositFailed)
	}
}

func (m *Machine) cancel(userID, chatID int64) (State, []Notification) {
	conv := m.store.get(userID)
	if conv == nil {
		return StateIdle, []Notification{{ChatID: chatID, Text: ErrNothingToCancel}}
	}
	m.logger.Info("deposit run cancelled", "user_id", userID, "run_id", conv.RunID)
	return m.finish(conv, StateCancelled, CancelledMessage)
}

// finish moves conv to a terminal state, evicts it and returns the closing
// notification.
func (m *Machine) finish(conv *Conversation, state State, text string) (State, []Notification) {
	conv.State = state
	m.store.touch(conv, m.now())
	m.store.evict(conv.UserID, conv.RunID)
	m.metrics.ObserveRun(string(state))
	return state, []Notification{{ChatID: conv.ChatID, Text: text}}
}

// runToken is the short run identifier carried by menu selections. It keeps
// callback payloads small while telling runs of the same user apart.
func runToken(runID string) string {
	return runID[:8]
}
