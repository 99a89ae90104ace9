package telegram

import (
	"context"
	"log"

	"github.com/Vovarama1992/gpt_buddy/internal/ai"
	"github.com/Vovarama1992/gpt_buddy/internal/config"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	"github.com/Vovarama1992/gpt_buddy/internal/ledger"
	"github.com/Vovarama1992/gpt_buddy/internal/notificator"
	"github.com/Vovarama1992/gpt_buddy/internal/ports"
	"github.com/Vovarama1992/gpt_buddy/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// максимум символов в одном сообщении Telegram
const maxMessageLen = 4096

type BotApp struct {
	Store       dialog.Store
	Ledger      ledger.Service
	Session     *session.Controller
	AiClient    *ai.OpenAIClient
	Photos      ports.PhotoStorage
	Cfg         *config.Config
	ErrorNotify notificator.Notificator

	bot *tgbotapi.BotAPI
}

func NewBotApp(
	store dialog.Store,
	ldg ledger.Service,
	sess *session.Controller,
	aiClient *ai.OpenAIClient,
	photos ports.PhotoStorage,
	cfg *config.Config,
	notify notificator.Notificator,
) *BotApp {
	return &BotApp{
		Store:       store,
		Ledger:      ldg,
		Session:     sess,
		AiClient:    aiClient,
		Photos:      photos,
		Cfg:         cfg,
		ErrorNotify: notify,
	}
}

func (app *BotApp) InitBot(token string) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	app.bot = bot
	log.Printf("[bot_app] ready: @%s", bot.Self.UserName)
	return nil
}

func (app *BotApp) GetBot() *tgbotapi.BotAPI {
	return app.bot
}

// Run — главный цикл получения апдейтов. Каждый апдейт уходит в свою
// горутину: ходы одного юзера сериализует session.Controller, разные
// юзеры друг друга не ждут.
func (app *BotApp) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)
	log.Printf("[bot_loop] started username=@%s", app.bot.Self.UserName)

	for update := range updates {
		go app.dispatchUpdate(context.Background(), update)
	}
}

func (app *BotApp) dispatchUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		app.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		app.handleCallback(ctx, update.CallbackQuery)
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	tgID := msg.From.ID

	if err := app.registerUser(ctx, msg); err != nil {
		log.Printf("[bot_loop] register fail tgID=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, userErrorText(err)))
		return
	}

	switch {
	case msg.IsCommand():
		app.handleCommand(ctx, msg, tgID)
	case msg.Voice != nil:
		app.handleVoice(ctx, msg, tgID)
	case len(msg.Photo) > 0:
		app.handlePhoto(ctx, msg, tgID)
	case msg.Text != "":
		app.handleText(ctx, msg, tgID, msg.Text)
	default:
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID,
			"Я понимаю только текст, голосовые и фото 🙈"))
	}
}

func (app *BotApp) registerUser(ctx context.Context, msg *tgbotapi.Message) error {
	return app.Store.RegisterUserIfNotExists(ctx, dialog.UserInfo{
		TelegramID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
	})
}

// truncate обрезает ответ до лимита Telegram (считаем в рунах)
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
