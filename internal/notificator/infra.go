package notificator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewInfra(bot *tgbotapi.BotAPI) *Infra {
	var adminChatID int64
	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("[notificator] bad ADMIN_CHAT_ID %q: %v", raw, err)
		} else {
			adminChatID = id
		}
	}
	return &Infra{bot: bot, adminChatID: adminChatID}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot *tgbotapi.BotAPI) {
	i.bot = bot
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	if i.bot == nil || i.adminChatID == 0 {
		log.Printf("[notificator] no admin channel, err=%v details=%s", err, details)
		return nil
	}

	text := fmt.Sprintf(
		"❗ Ошибка в боте\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		log.Printf("[notificator] send fail to %d: %v", i.adminChatID, sendErr)
		return sendErr
	}
	return nil
}
