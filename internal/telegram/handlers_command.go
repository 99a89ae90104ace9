package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpMessage = `Команды:
⚪ /retry — переиграть последний ответ
⚪ /new — начать новый диалог
⚪ /cancel — отменить текущий запрос
⚪ /mode — выбрать режим общения
⚪ /settings — выбрать модель
⚪ /balance — показать расходы
⚪ /help — эта справка

🎨 В режиме «Художник» я рисую картинки по описанию
🎤 Можно отправлять голосовые вместо текста
📷 Можно присылать фото — я их понимаю`

const helpGroupChatMessage = `Меня можно добавить в групповой чат!

Инструкция:
1. Добавь бота в группу
2. Сделай его админом, чтобы он видел сообщения
3. Готово!

Чтобы получить ответ — тегни меня или ответь на моё сообщение.`

func (app *BotApp) handleCommand(ctx context.Context, msg *tgbotapi.Message, tgID int64) {
	chatID := msg.Chat.ID
	cmd := msg.Command()

	log.Printf("[command] /%s tgID=%d", cmd, tgID)

	switch cmd {

	case "start":
		if err := app.Session.NewDialog(ctx, tgID); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}
		app.bot.Send(tgbotapi.NewMessage(chatID, "Привет! Я бот на базе GPT 🤖\n\n"+helpMessage))

		out := tgbotapi.NewMessage(chatID, "Выбери режим общения:")
		out.ReplyMarkup = app.BuildModeMenu()
		app.bot.Send(out)

	case "help":
		app.bot.Send(tgbotapi.NewMessage(chatID, helpMessage))

	case "help_group_chat":
		app.bot.Send(tgbotapi.NewMessage(chatID, helpGroupChatMessage))

	case "new":
		if err := app.Session.NewDialog(ctx, tgID); err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}
		app.bot.Send(tgbotapi.NewMessage(chatID, "Начинаем новый диалог ✅"))

	case "retry":
		placeholder, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "..."))
		res, err := app.Session.Retry(ctx, tgID)
		if err != nil {
			app.bot.Send(tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, userErrorText(err)))
			return
		}
		app.bot.Send(tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, truncate(res.Reply, maxMessageLen)))

	case "cancel":
		if app.Session.Cancel(tgID) {
			app.bot.Send(tgbotapi.NewMessage(chatID, "✅ Отменяю…"))
		} else {
			app.bot.Send(tgbotapi.NewMessage(chatID, "Нечего отменять…"))
		}

	case "mode":
		out := tgbotapi.NewMessage(chatID, "Выбери режим общения:")
		out.ReplyMarkup = app.BuildModeMenu()
		app.bot.Send(out)

	case "settings":
		kb, err := app.BuildSettingsMenu(ctx, tgID)
		if err != nil {
			app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
			return
		}
		out := tgbotapi.NewMessage(chatID, "Выбери модель:")
		out.ReplyMarkup = kb
		app.bot.Send(out)

	case "balance":
		app.handleBalance(ctx, chatID, tgID)

	default:
		app.bot.Send(tgbotapi.NewMessage(chatID, "Не знаю такой команды. /help"))
	}
}

func (app *BotApp) handleBalance(ctx context.Context, chatID, tgID int64) {
	est, err := app.Ledger.EstimateCost(ctx, tgID)
	if err != nil {
		log.Printf("[balance] estimate fail tgID=%d: %v", tgID, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("Ошибка расчёта баланса\nПользователь: %d", tgID))
		app.bot.Send(tgbotapi.NewMessage(chatID, userErrorText(err)))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Потрачено: %.3f$\n", est.Total)
	if len(est.Lines) > 0 {
		b.WriteString("\n")
	}
	for _, line := range est.Lines {
		fmt.Fprintf(&b, "— %s: %.3f$ (%s)\n", line.Label, line.Cost, line.Detail)
	}

	app.bot.Send(tgbotapi.NewMessage(chatID, b.String()))
}
