package deposit

const (
	// prompts
	ChooseAgentPrompt    = "Choose the agent to deposit credit to:"
	EnterAmountTemplate  = "Enter the amount to deposit to %s:"
	DepositSuccessFormat = "✅ Deposit completed\nAmount: %s %s\nTo: %s"
	CancelledMessage     = "Deposit cancelled."
	ExpiredMessage       = "⌛ Your deposit expired after a period of inactivity. Start a new deposit to continue."
	// errors
	ErrLoginFailed       = "❌ Could not log in to the agent panel."
	ErrDirectoryFailed   = "❌ Could not load the agent list."
	ErrNoAgents          = "❌ There are no agents to deposit to."
	ErrInvalidAmount     = "❌ Please enter the amount as a number greater than zero."
	ErrAgentLookupFailed = "❌ Could not look up the agent details."
	ErrAgentNotFound     = "❌ The selected agent no longer exists."
	ErrDepositRejected   = "❌ Deposit failed\nReason: %s"
	ErrDepositFailed     = "❌ Deposit failed, please try again later."
	ErrNothingToCancel   = "There is no deposit in progress."
)
