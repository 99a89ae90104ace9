package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleVoice(ctx context.Context, msg *tgbotapi.Message, tgID int64) {
	chatID := msg.Chat.ID
	fileID := msg.Voice.FileID

	log.Printf("[voice] start tgID=%d fileID=%s duration=%ds", tgID, fileID, msg.Voice.Duration)

	file, err := app.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		log.Printf("[voice] get file fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось получить голосовое."))
		return
	}

	url := file.Link(app.bot.Token)

	resp, err := http.Get(url)
	if err != nil {
		log.Printf("[voice] download fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при загрузке голосового."))
		return
	}
	defer resp.Body.Close()

	path := fmt.Sprintf("/tmp/%s.ogg", fileID)
	out, err := os.Create(path)
	if err != nil {
		log.Printf("[voice] create tmp fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при обработке голосового."))
		return
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		log.Printf("[voice] save tmp fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при сохранении голосового."))
		return
	}
	out.Close()
	defer os.Remove(path)

	// голос -> текст
	text, err := app.AiClient.Transcribe(ctx, path)
	if err != nil {
		log.Printf("[voice] transcribe fail tgID=%d err=%v", tgID, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("Ошибка распознавания\nПользователь: %d", tgID))
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось распознать голос."))
		return
	}
	log.Printf("[voice] transcribed: %q", text)

	// секунды берём из метаданных Telegram, сами ничего не меряем
	if err := app.Ledger.RecordAudioSeconds(ctx, tgID, float64(msg.Voice.Duration)); err != nil {
		log.Printf("[voice] ledger fail tgID=%d: %v", tgID, err)
	}

	app.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("🎤: %s", text)))

	// дальше — обычный текстовый ход
	app.handleText(ctx, msg, tgID, text)
}
