package bot

import (
	"errors"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendMessage sends a plain text message to chatID.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgapi.NewMessage(chatID, text))
	return err
}

// SendKeyboard sends text with a persistent reply keyboard made of rows of
// button labels.
func (b *Bot) SendKeyboard(chatID int64, text string, rows [][]string) error {
	keyboardRows := make([][]tgapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgapi.NewKeyboardButton(label))
		}
		keyboardRows = append(keyboardRows, tgapi.NewKeyboardButtonRow(buttons...))
	}
	keyboard := tgapi.NewReplyKeyboard(keyboardRows...)
	keyboard.ResizeKeyboard = true
	msg := tgapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

// InlineMenu sends text with an inline keyboard. Labels and values share the
// same shape; a tap on a button calls the CallbackHandler registered for scope
// with token and the value of the button.
func (b *Bot) InlineMenu(chatID int64, text, scope, token string, labels, values [][]string) error {
	if len(labels) != len(values) {
		return errors.New("bot: labels and values must have the same shape")
	}
	rows := make([][]tgapi.InlineKeyboardButton, 0, len(labels))
	for i, rowLabels := range labels {
		if len(rowLabels) != len(values[i]) {
			return errors.New("bot: labels and values must have the same shape")
		}
		row := make([]tgapi.InlineKeyboardButton, 0, len(rowLabels))
		for j, label := range rowLabels {
			data, err := encodeCallback(scope, token, values[i][j])
			if err != nil {
				return err
			}
			row = append(row, tgapi.NewInlineKeyboardButtonData(label, data))
		}
		rows = append(rows, tgapi.NewInlineKeyboardRow(row...))
	}
	msg := tgapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgapi.NewInlineKeyboardMarkup(rows...)
	_, err := b.api.Send(msg)
	return err
}

// RemoveInlineMenu removes the inline keyboard of a sent message so its
// buttons cannot be tapped again.
func (b *Bot) RemoveInlineMenu(chatID int64, messageID int) error {
	empty := tgapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgapi.InlineKeyboardButton{}}
	_, err := b.api.Request(tgapi.NewEditMessageReplyMarkup(chatID, messageID, empty))
	return err
}
