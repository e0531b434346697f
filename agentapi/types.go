package agentapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credentials are the panel account used to log in to the upstream API.
type Credentials struct {
	Username string
	Password string
}

// Session holds the short-lived token returned by the login endpoint. It is
// owned by a single workflow run and never refreshed.
type Session struct {
	Token      string
	ObtainedAt time.Time
}

// Counterparty is a member of the agent directory that can receive a deposit.
type Counterparty struct {
	ID          string
	Username    string
	DisplayName string
}

// Label returns the "username - name" text shown to staff.
func (c Counterparty) Label() string {
	if c.DisplayName == "" {
		return c.Username
	}
	return c.Username + " - " + c.DisplayName
}

// TransferRequest describes a single deposit call.
type TransferRequest struct {
	Token             string
	CounterpartyID    string
	Currency          string
	Amount            decimal.Decimal
	AuthorizationCode string
}

// TransferOutcome tags a TransferResult.
type TransferOutcome int

const (
	// TransferFailed means the call did not produce a usable answer: network
	// error, timeout, unexpected status or unparsable body.
	TransferFailed TransferOutcome = iota
	// TransferSucceeded means the upstream accepted the deposit.
	TransferSucceeded
	// TransferRejected means the upstream answered but declined the deposit.
	TransferRejected
)

func (o TransferOutcome) String() string {
	switch o {
	case TransferSucceeded:
		return "succeeded"
	case TransferRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// TransferResult is the classified answer of the deposit endpoint. Reason is
// only set for rejections and Err only for failures.
type TransferResult struct {
	Outcome TransferOutcome
	Code    int
	Reason  string
	Err     error
}

// Profile is the subset of the panel profile the bot reports.
type Profile struct {
	Currency string
	Balance  decimal.Decimal
}

// WinLose holds the footer totals of the agent win/loss report.
type WinLose struct {
	BetAmount        decimal.Decimal `json:"betAmt"`
	MemberWinLose    decimal.Decimal `json:"memberWl"`
	AgentWinLose     decimal.Decimal `json:"agentWl"`
	CompanyWinLose   decimal.Decimal `json:"companyWl"`
	MemberCommission decimal.Decimal `json:"memberComm"`
	AgentCommission  decimal.Decimal `json:"agentComm"`
	CompanyComm      decimal.Decimal `json:"companyComm"`
	GrossCommission  decimal.Decimal `json:"grossCom"`
	MemberTotal      decimal.Decimal `json:"memberTotal"`
	AgentTotal       decimal.Decimal `json:"agentTotal"`
	CompanyTotal     decimal.Decimal `json:"companyTotal"`
	ValidAmount      decimal.Decimal `json:"validAmt"`
	WinLoseTotal     decimal.Decimal `json:"winLoseTotal"`
}
