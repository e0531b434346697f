package report

const (
	BalanceTemplate     = "💰 Credit balance\n\nAmount: %s %s"
	DailyHeaderTemplate = "🎮 Daily report (%s to %s)"
	DailyLineTemplate   = "%s %s: %s"
	// errors
	ErrBalanceUnavailable = "❌ Could not read the credit balance."
	ErrReportUnavailable  = "❌ Could not build the report."
)
