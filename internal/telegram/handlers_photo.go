package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handlePhoto(ctx context.Context, msg *tgbotapi.Message, tgID int64) {
	chatID := msg.Chat.ID

	// последний элемент — самое большое разрешение
	photo := msg.Photo[len(msg.Photo)-1]
	log.Printf("[photo] start tgID=%d fileID=%s", tgID, photo.FileID)

	file, err := app.bot.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		log.Printf("[photo] get file fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось получить фото."))
		return
	}

	resp, err := http.Get(file.Link(app.bot.Token))
	if err != nil {
		log.Printf("[photo] download fail tgID=%d err=%v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при загрузке фото."))
		return
	}
	defer resp.Body.Close()

	// в S3, в историю уходит публичный URL
	imageURL, err := app.Photos.UploadPhoto(ctx, tgID, photo.FileID, resp.Body)
	if err != nil {
		log.Printf("[photo] s3 fail tgID=%d err=%v", tgID, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("Ошибка загрузки фото в S3\nПользователь: %d", tgID))
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось сохранить фото."))
		return
	}

	caption := msg.Caption
	if caption == "" {
		caption = "Что на этом изображении?"
	}

	placeholder, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "..."))

	res, err := app.Session.RunTurn(ctx, tgID, caption, &imageURL)
	if err != nil {
		log.Printf("[photo] turn fail tgID=%d: %v", tgID, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("Ошибка vision-хода\nПользователь: %d", tgID))
		app.bot.Send(tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, userErrorText(err)))
		return
	}

	app.bot.Send(tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, truncate(res.Reply, maxMessageLen)))
	log.Printf("[photo] done tgID=%d", tgID)
}
