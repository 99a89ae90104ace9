package telegram

import (
	"context"
	"fmt"
	"log"

	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleText(ctx context.Context, msg *tgbotapi.Message, tgID int64, userText string) {
	chatID := msg.Chat.ID

	log.Printf("[text] start tgID=%d", tgID)

	// режим «художник» рисует, а не разговаривает
	modeKey, err := app.Store.GetAttribute(ctx, tgID, dialog.AttrCurrentChatMode)
	if err == nil && modeKey == "artist" {
		app.handleArtist(ctx, chatID, tgID, userText)
		return
	}

	// === 0. плейсхолдер '...' ===
	placeholder, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "..."))

	// === 1. полный ход ===
	res, err := app.Session.RunTurn(ctx, tgID, userText, nil)
	if err != nil {
		log.Printf("[text] turn fail tgID=%d: %v", tgID, err)

		app.ErrorNotify.Notify(ctx, err,
			fmt.Sprintf("Ошибка хода\nПользователь: %d\nТекст: %q", tgID, userText))

		edit := tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, userErrorText(err))
		app.bot.Send(edit)
		return
	}

	// === 2. ответ на место плейсхолдера ===
	edit := tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, truncate(res.Reply, maxMessageLen))
	if _, err := app.bot.Send(edit); err != nil {
		log.Printf("[text] edit fail tgID=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, truncate(res.Reply, maxMessageLen)))
	}

	log.Printf("[text] done tgID=%d", tgID)
}

// handleArtist — генерация картинок по промпту (DALL·E).
func (app *BotApp) handleArtist(ctx context.Context, chatID, tgID int64, prompt string) {
	log.Printf("[artist] start tgID=%d", tgID)

	thinking, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "🎨 Рисую…"))

	urls, err := app.AiClient.GenerateImages(ctx, prompt, app.Cfg.NImages, app.Cfg.ImageSize)
	if err != nil {
		log.Printf("[artist] generate fail tgID=%d: %v", tgID, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("Ошибка генерации\nПользователь: %d", tgID))
		app.bot.Send(tgbotapi.NewEditMessageText(chatID, thinking.MessageID, userErrorText(err)))
		return
	}

	for _, u := range urls {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(u))
		if _, err := app.bot.Send(photo); err != nil {
			log.Printf("[artist] send photo fail tgID=%d: %v", tgID, err)
		}
	}

	// биллинг — только после успешной генерации
	if err := app.Ledger.RecordImageGenerated(ctx, tgID, int64(len(urls))); err != nil {
		log.Printf("[artist] ledger fail tgID=%d: %v", tgID, err)
	}

	app.bot.Request(tgbotapi.NewDeleteMessage(chatID, thinking.MessageID))
	log.Printf("[artist] done tgID=%d n=%d", tgID, len(urls))
}
