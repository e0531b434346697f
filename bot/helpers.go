package bot

import (
	"errors"
	"fmt"
	"strings"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxCallbackData is the Telegram limit for inline button payloads.
const maxCallbackData = 64

const callbackSep = ":"

// ErrCallbackTooLong is returned when a menu value does not fit in the
// Telegram callback payload.
var ErrCallbackTooLong = errors.New("bot: callback data too long")

// dispatch queues the update in the lane of its sender, so updates from the
// same user are handled in order and never concurrently.
func (b *Bot) dispatch(update tgapi.Update) {
	from := sender(update)
	if from == nil {
		return
	}
	b.lanes.submit(from.ID, func() {
		b.handleUpdate(update)
	})
}

func sender(update tgapi.Update) *tgapi.User {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	case update.Message != nil:
		return update.Message.From
	}
	return nil
}

func (b *Bot) handleUpdate(update tgapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update)
	case update.Message != nil:
		b.handleText(update)
	}
}

func (b *Bot) handleCommand(update tgapi.Update) {
	cmd := update.Message.Command()
	// check if the command is registered
	normalHandler, isNormalHandler := b.handlers[cmd]
	adminHandler, isAdminHandler := b.adminHandlers[cmd]
	// if the command is not registered, ignore it
	if !isNormalHandler && !isAdminHandler {
		return
	}
	// if the command is registered, check if the user is allowed
	// to use it before executing it, no matter if it is an admin
	// command or not
	from := update.Message.From
	chatID := update.Message.Chat.ID
	if isAdminHandler {
		if b.Auth.IsAdmin(from.ID) {
			b.logger.Info("admin command received",
				"command", cmd, "chat_id", chatID, "from", from.UserName)
			if err := adminHandler(b, update); err != nil {
				b.logger.Error("admin command failed", "command", cmd, "error", err)
			}
		}
	} else if isNormalHandler && b.Auth.IsAllowed(from.ID) {
		b.logger.Info("command received",
			"command", cmd, "chat_id", chatID, "from", from.UserName)
		if err := normalHandler(b, update); err != nil {
			b.logger.Error("command failed", "command", cmd, "error", err)
		}
	}
}

func (b *Bot) handleText(update tgapi.Update) {
	from := update.Message.From
	if from == nil || !b.Auth.IsAllowed(from.ID) {
		return
	}
	handler, isButton := b.buttons[strings.TrimSpace(update.Message.Text)]
	if !isButton {
		handler = b.textHandler
	}
	if handler == nil {
		return
	}
	if err := handler(b, update); err != nil {
		b.logger.Error("text handler failed", "chat_id", update.Message.Chat.ID, "error", err)
	}
}

func (b *Bot) handleCallback(query *tgapi.CallbackQuery) {
	// stop the loading indicator of the button whatever happens next
	if _, err := b.api.Request(tgapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
	if query.From == nil || !b.Auth.IsAllowed(query.From.ID) {
		return
	}
	// decode the callback data
	scope, token, value, err := decodeCallback(query.Data)
	if err != nil {
		b.logger.Warn("invalid callback data", "error", err)
		return
	}
	// check if the callback scope is registered
	callback, ok := b.callbacks[scope]
	if !ok {
		b.logger.Warn("callback scope not found", "scope", scope)
		return
	}
	if err := callback(b, query, token, value); err != nil {
		b.logger.Error("callback failed", "scope", scope, "error", err)
	}
}

func encodeCallback(scope, token, value string) (string, error) {
	if strings.Contains(scope, callbackSep) || strings.Contains(token, callbackSep) {
		return "", fmt.Errorf("bot: scope and token cannot contain %q", callbackSep)
	}
	// the value goes last so it may contain the separator
	data := strings.Join([]string{scope, token, value}, callbackSep)
	if len(data) > maxCallbackData {
		return "", fmt.Errorf("%w: %q", ErrCallbackTooLong, value)
	}
	return data, nil
}

func decodeCallback(encodedData string) (string, string, string, error) {
	parts := strings.SplitN(encodedData, callbackSep, 3)
	if len(parts) != 3 || parts[0] == "" {
		return "", "", "", fmt.Errorf("invalid callback data: %q", encodedData)
	}
	return parts[0], parts[1], parts[2], nil
}
