package main

const (
	// commands
	START_CMD       = "start"
	HELP_CMD        = "help"
	CREDIT_CMD      = "credit"
	DEPOSIT_CMD     = "deposit"
	REPORT_CMD      = "report"
	CANCEL_CMD      = "cancel"
	ADD_USER_CMD    = "adduser"
	REMOVE_USER_CMD = "removeuser"
	LIST_USERS_CMD  = "listusers"
	// descriptions
	HELP_DESC    = "Show this help."
	CREDIT_DESC  = "Show the credit balance of the agent account."
	DEPOSIT_DESC = "Deposit credit to an agent. The bot asks for the agent and the amount."
	REPORT_DESC  = "Show the win/loss report from yesterday to today."
	CANCEL_DESC  = "Cancel the deposit in progress."
	// keyboard buttons
	CreditButton  = "💰 Check credit"
	DepositButton = "💸 Deposit credit"
	ReportButton  = "📊 Today's report"
	// callback scopes
	DepositScope = "dep"
	// messages
	WelcomeMessage         = "Hello! Choose an option from the menu or use /help to see the available commands."
	HelpHeader             = "Available commands:"
	UserListHeader         = "Allowed users:"
	SuccessInternalMessage = "Done!"
	// templates
	HelperCommandTemplate = " /%s: %s"
	UserItemTemplate      = " - %s (%d)"
	// errors
	ErrInvalidArguments = "Sorry, I can't understand your message. Please check the command format."
	ErrInternalProcess  = "internal process error"
	ErrUserNotFound     = "Sorry, that user is not in the allowed list."
)
