package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lucasmenendez/agentpanelbot/bot"
	"github.com/lucasmenendez/agentpanelbot/deposit"
	"github.com/lucasmenendez/agentpanelbot/report"
)

var publicCommands = map[string]string{
	HELP_CMD:    HELP_DESC,
	CREDIT_CMD:  CREDIT_DESC,
	DEPOSIT_CMD: DEPOSIT_DESC,
	REPORT_CMD:  REPORT_DESC,
	CANCEL_CMD:  CANCEL_DESC,
}

// app holds the services the chat handlers talk to.
type app struct {
	deposits *deposit.Machine
	reports  *report.Service
	logger   *slog.Logger
}

func (a *app) register(b *bot.Bot) {
	// register the commands
	b.AddCommand(START_CMD, a.handleStart)
	b.AddCommand(HELP_CMD, a.handleHelp)
	b.AddCommand(CREDIT_CMD, a.handleCredit)
	b.AddCommand(DEPOSIT_CMD, a.handleDeposit)
	b.AddCommand(REPORT_CMD, a.handleReport)
	b.AddCommand(CANCEL_CMD, a.handleCancel)
	// register the admin commands
	b.AddAdminCommand(ADD_USER_CMD, handleAddUser)
	b.AddAdminCommand(REMOVE_USER_CMD, handleRemoveUser)
	b.AddAdminCommand(LIST_USERS_CMD, handleListUsers)
	// main menu buttons
	b.AddButton(CreditButton, a.handleCredit)
	b.AddButton(DepositButton, a.handleDeposit)
	b.AddButton(ReportButton, a.handleReport)
	// deposit workflow
	b.AddCallback(DepositScope, a.handleAgentSelected)
	b.OnText(a.handleText)
}

// format: /start
func (a *app) handleStart(b *bot.Bot, update tgapi.Update) error {
	return b.SendKeyboard(update.Message.Chat.ID, WelcomeMessage, mainMenu())
}

// format: /help
func (a *app) handleHelp(b *bot.Bot, update tgapi.Update) error {
	cmds := make([]string, 0, len(publicCommands))
	for cmd := range publicCommands {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	texts := []string{HelpHeader}
	for _, cmd := range cmds {
		texts = append(texts, fmt.Sprintf(HelperCommandTemplate, cmd, publicCommands[cmd]))
	}
	return b.SendMessage(update.Message.Chat.ID, strings.Join(texts, "\n"))
}

// format: /credit
func (a *app) handleCredit(b *bot.Bot, update tgapi.Update) error {
	text, err := a.reports.Balance(b.Context())
	if err != nil {
		a.logger.Error("credit balance failed", "user_id", update.Message.From.ID, "error", err)
		text = report.ErrBalanceUnavailable
	}
	return b.SendMessage(update.Message.Chat.ID, text)
}

// format: /report
func (a *app) handleReport(b *bot.Bot, update tgapi.Update) error {
	text, err := a.reports.Daily(b.Context())
	if err != nil {
		a.logger.Error("win/loss report failed", "user_id", update.Message.From.ID, "error", err)
		text = report.ErrReportUnavailable
	}
	return b.SendMessage(update.Message.Chat.ID, text)
}

// format: /deposit
func (a *app) handleDeposit(b *bot.Bot, update tgapi.Update) error {
	ev := deposit.Start(update.Message.Chat.ID)
	a.deposits.Handle(b.Context(), update.Message.From.ID, ev, chatSink{b})
	return nil
}

// format: /cancel
func (a *app) handleCancel(b *bot.Bot, update tgapi.Update) error {
	ev := deposit.Cancel(update.Message.Chat.ID)
	a.deposits.Handle(b.Context(), update.Message.From.ID, ev, chatSink{b})
	return nil
}

// handleText feeds any other message to the deposit workflow, which only
// consumes it while waiting for an amount.
func (a *app) handleText(b *bot.Bot, update tgapi.Update) error {
	ev := deposit.Text(update.Message.Text)
	a.deposits.Handle(b.Context(), update.Message.From.ID, ev, chatSink{b})
	return nil
}

// handleAgentSelected receives the taps on the agent menu. The menu is
// removed first so it cannot be used twice.
func (a *app) handleAgentSelected(b *bot.Bot, query *tgapi.CallbackQuery, token, username string) error {
	if query.Message != nil {
		if err := b.RemoveInlineMenu(query.Message.Chat.ID, query.Message.MessageID); err != nil {
			a.logger.Warn("remove agent menu failed", "error", err)
		}
	}
	a.deposits.Handle(b.Context(), query.From.ID, deposit.Select(token, username), chatSink{b})
	return nil
}

// dailyReport returns the scheduler job that posts the win/loss report
// to chatID.
func (a *app) dailyReport(b *bot.Bot, chatID int64) func(ctx context.Context) {
	return func(ctx context.Context) {
		text, err := a.reports.Daily(ctx)
		if err != nil {
			a.logger.Error("scheduled report failed", "chat_id", chatID, "error", err)
			text = report.ErrReportUnavailable
		}
		if err := b.SendMessage(chatID, text); err != nil {
			a.logger.Error("scheduled report not sent", "chat_id", chatID, "error", err)
		}
	}
}

// cleanConversations drops abandoned deposit runs every interval until ctx
// is done, telling their users.
func (a *app) cleanConversations(ctx context.Context, b *bot.Bot, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.notifyExpired(ctx, b)
		}
	}
}

func (a *app) notifyExpired(ctx context.Context, b *bot.Bot) {
	sink := chatSink{b}
	for _, note := range a.deposits.CleanExpired() {
		if err := sink.Notify(ctx, note); err != nil {
			a.logger.Error("expired deposit notice not sent", "chat_id", note.ChatID, "error", err)
		}
	}
}

// chatSink renders deposit notifications as chat messages, with an inline
// menu when the notification carries options.
type chatSink struct {
	b *bot.Bot
}

func (s chatSink) Notify(_ context.Context, note deposit.Notification) error {
	if len(note.Options) == 0 {
		return s.b.SendMessage(note.ChatID, note.Text)
	}
	labels, values := agentMenu(note.Options)
	return s.b.InlineMenu(note.ChatID, note.Text, DepositScope, note.RunToken, labels, values)
}

// format: /adduser 123456789 alias
func handleAddUser(b *bot.Bot, update tgapi.Update) error {
	args := strings.Fields(update.Message.CommandArguments())
	if len(args) != 2 {
		return b.SendMessage(update.Message.Chat.ID, ErrInvalidArguments)
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.SendMessage(update.Message.Chat.ID, ErrInvalidArguments)
	}
	if err := b.Auth.AddAllowedUser(userID, args[1]); err != nil {
		return b.SendMessage(update.Message.Chat.ID, err.Error())
	}
	return b.SendMessage(update.Message.Chat.ID, SuccessInternalMessage)
}

// format: /removeuser 123456789
func handleRemoveUser(b *bot.Bot, update tgapi.Update) error {
	args := strings.Fields(update.Message.CommandArguments())
	if len(args) != 1 {
		return b.SendMessage(update.Message.Chat.ID, ErrInvalidArguments)
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.SendMessage(update.Message.Chat.ID, ErrInvalidArguments)
	}
	if found := b.Auth.RemoveAllowedUser(userID); !found {
		return b.SendMessage(update.Message.Chat.ID, ErrUserNotFound)
	}
	return b.SendMessage(update.Message.Chat.ID, SuccessInternalMessage)
}

// format: /listusers
func handleListUsers(b *bot.Bot, update tgapi.Update) error {
	users := b.Auth.ListAllowedUsers()
	if len(users) == 0 {
		return b.SendMessage(update.Message.Chat.ID, ErrInternalProcess)
	}
	ids := make([]int64, 0, len(users))
	for userID := range users {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	texts := []string{UserListHeader}
	for _, userID := range ids {
		texts = append(texts, fmt.Sprintf(UserItemTemplate, users[userID], userID))
	}
	return b.SendMessage(update.Message.Chat.ID, strings.Join(texts, "\n"))
}
