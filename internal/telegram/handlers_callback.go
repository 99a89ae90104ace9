package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// колбэки от сообщений старше 48 часов приходят без Message
	if cb.Message == nil {
		log.Printf("[callback] no message, tgID=%d data=%s", cb.From.ID, cb.Data)
		return
	}

	tgID := cb.From.ID
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// всегда отвечаем Telegram
	app.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	log.Printf("[callback] tgID=%d data=%s", tgID, data)

	// ---------------------------
	// выбор режима общения
	// ---------------------------
	if strings.HasPrefix(data, "set_chat_mode|") {
		key := strings.TrimPrefix(data, "set_chat_mode|")

		mode, ok := app.Cfg.Modes[key]
		if !ok {
			app.bot.Send(tgbotapi.NewMessage(chatID, "Некорректный режим"))
			return
		}

		if err := app.Store.SetAttribute(ctx, tgID, dialog.AttrCurrentChatMode, key); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}
		// смена режима начинает новый диалог; старые обмены остаются как есть
		if err := app.Session.NewDialog(ctx, tgID); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}

		text := fmt.Sprintf("Режим %s включён ✅", mode.Name)
		if strings.TrimSpace(mode.WelcomeMessage) != "" {
			text += "\n\n" + mode.WelcomeMessage
		}
		app.bot.Send(tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text))
		return
	}

	// ---------------------------
	// выбор модели
	// ---------------------------
	if strings.HasPrefix(data, "set_settings|") {
		key := strings.TrimPrefix(data, "set_settings|")

		info, ok := app.Cfg.Models[key]
		if !ok {
			app.bot.Send(tgbotapi.NewMessage(chatID, "Некорректная модель"))
			return
		}

		// модель — атрибут юзера, прошлые обмены не перелейбливаются
		if err := app.Store.SetAttribute(ctx, tgID, dialog.AttrCurrentModel, key); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}
		if err := app.Session.NewDialog(ctx, tgID); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}

		app.bot.Send(tgbotapi.NewEditMessageText(
			chatID,
			cb.Message.MessageID,
			fmt.Sprintf("Модель %s выбрана ✅", info.Name),
		))
		return
	}

	// ---------------------------
	// неизвестный callback
	// ---------------------------
	err := fmt.Errorf("unknown callback data: %s", data)
	app.ErrorNotify.Notify(ctx, err, "Неизвестный callback")
	app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Произошла ошибка."))
}
