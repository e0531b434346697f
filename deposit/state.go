package deposit

import (
	"github.com/shopspring/decimal"

	"github.com/lucasmenendez/agentpanelbot/agentapi"
)

// State is a node of the deposit conversation.
type State string

const (
	StateIdle                   State = "idle"
	StateAwaitingAgentSelection State = "awaiting_agent_selection"
	StateAwaitingAmount         State = "awaiting_amount"
	StateCompleted              State = "completed"
	StateCancelled              State = "cancelled"
	StateAborted                State = "aborted"
)

// Terminal reports whether the conversation ends in s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateAborted
}

// EventKind identifies what the user did.
type EventKind int

const (
	EventStart EventKind = iota
	EventSelect
	EventText
	EventCancel
)

// Event is one user action fed to the Machine.
type Event struct {
	Kind EventKind
	// ChatID is where notifications of a new run are sent. Only read by
	// EventStart and EventCancel.
	ChatID int64
	// RunToken identifies the menu a selection came from.
	RunToken string
	Username string
	Text     string
}

// Start returns the event that begins a deposit run replying to chatID.
func Start(chatID int64) Event {
	return Event{Kind: EventStart, ChatID: chatID}
}

// Select returns the event of picking username from the menu of run token.
func Select(token, username string) Event {
	return Event{Kind: EventSelect, RunToken: token, Username: username}
}

// Text returns the event of a free text reply.
func Text(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// Cancel returns the event of abandoning the active run, answering in chatID
// when there is nothing to cancel.
func Cancel(chatID int64) Event {
	return Event{Kind: EventCancel, ChatID: chatID}
}

// Option is one selectable counterparty of a menu.
type Option struct {
	Label string
	Value string
}

// Notification is a message for the user. When Options is not empty it must
// be rendered as a menu whose selections come back as Select(RunToken, value).
type Notification struct {
	ChatID   int64
	Text     string
	RunToken string
	Options  []Option
}

// Conversation is the per-user record of one workflow run.
type Conversation struct {
	RunID          string
	Token          string
	UserID         int64
	ChatID         int64
	State          State
	Session        *agentapi.Session
	Counterparties map[string]agentapi.Counterparty
	ChosenUsername string
	Amount         decimal.NullDecimal

	order []string
}

func (c *Conversation) chosen() agentapi.Counterparty {
	if member, ok := c.Counterparties[c.ChosenUsername]; ok {
		return member
	}
	return agentapi.Counterparty{Username: c.ChosenUsername}
}
