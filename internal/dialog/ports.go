package dialog

import (
	"context"
	"errors"
	"time"
)

// Exchange — один ход диалога: ввод пользователя + ответ модели.
// После записи не меняется; /retry снимает последний и переигрывает его.
type Exchange struct {
	UserText string    `json:"user_text"`
	ImageURL *string   `json:"image_url,omitempty"`
	BotText  string    `json:"bot_text"`
	Date     time.Time `json:"date"`
}

// UserInfo — данные пользователя при первом контакте.
type UserInfo struct {
	TelegramID int64  `json:"telegram_id"`
	ChatID     int64  `json:"chat_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
}

// ErrStorage — хранилище недоступно. Оборачивается во все ошибки БД,
// чтобы верхний слой мог отличить их от прочих.
var ErrStorage = errors.New("dialog storage unavailable")

// имена пользовательских атрибутов
const (
	AttrCurrentModel    = "current_model"
	AttrCurrentChatMode = "current_chat_mode"
	AttrCurrentDialogID = "current_dialog_id"
)

// Repo — работа с Postgres.
type Repo interface {
	CreateUserIfNotExists(ctx context.Context, u UserInfo) error
	ListUsers(ctx context.Context) ([]UserInfo, error)
	InsertDialog(ctx context.Context, telegramID int64, dialogID string, startedAt time.Time) error
	GetDialogMessages(ctx context.Context, dialogID string) ([]Exchange, error)
	SetDialogMessages(ctx context.Context, dialogID string, msgs []Exchange) error
	GetAttribute(ctx context.Context, telegramID int64, name string) (string, bool, error)
	SetAttribute(ctx context.Context, telegramID int64, name, value string) error
}

// Store — бизнес-операции над диалогом. Активный диалог на юзера ровно
// один: указатель живёт в атрибуте current_dialog_id, старые диалоги не
// удаляются.
type Store interface {
	RegisterUserIfNotExists(ctx context.Context, u UserInfo) error
	ListUsers(ctx context.Context) ([]UserInfo, error)
	StartNewDialog(ctx context.Context, telegramID int64) (string, error)
	GetActiveMessages(ctx context.Context, telegramID int64) ([]Exchange, error)
	ReplaceActiveMessages(ctx context.Context, telegramID int64, msgs []Exchange) error
	GetAttribute(ctx context.Context, telegramID int64, name string) (string, error)
	SetAttribute(ctx context.Context, telegramID int64, name, value string) error
}
