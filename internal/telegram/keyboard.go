package telegram

import (
	"context"

	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BuildModeMenu — инлайн-клавиатура выбора режима общения.
func (app *BotApp) BuildModeMenu() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, key := range app.Cfg.ModeOrder {
		mode := app.Cfg.Modes[key]
		btn := tgbotapi.NewInlineKeyboardButtonData(mode.Name, "set_chat_mode|"+key)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BuildSettingsMenu — выбор модели; текущая помечена галочкой.
func (app *BotApp) BuildSettingsMenu(ctx context.Context, tgID int64) (tgbotapi.InlineKeyboardMarkup, error) {
	current, err := app.Store.GetAttribute(ctx, tgID, dialog.AttrCurrentModel)
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, key := range app.Cfg.TextModels {
		label := app.Cfg.Models[key].Name
		if key == current {
			label = "✅ " + label
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(label, "set_settings|"+key)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}
