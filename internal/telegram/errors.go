package telegram

import (
	"errors"

	"github.com/Vovarama1992/gpt_buddy/internal/ai"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	"github.com/Vovarama1992/gpt_buddy/internal/ledger"
	"github.com/Vovarama1992/gpt_buddy/internal/session"
)

// userErrorText переводит внутренние виды ошибок в сообщение юзеру.
// Наружу не падает ни один из них — процесс живёт дальше.
func userErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrTurnCanceled):
		return "✅ Отменено"
	case errors.Is(err, session.ErrNothingToRetry):
		return "Нечего переигрывать — история пуста."
	case errors.Is(err, ai.ErrModelCall):
		return "⚠️ Модель не ответила. Попробуй ещё раз: /retry"
	case errors.Is(err, dialog.ErrStorage), errors.Is(err, ledger.ErrStorage):
		return "⚠️ Хранилище временно недоступно. Сообщение не потеряно — повтори чуть позже."
	case errors.Is(err, ledger.ErrUnknownModelPrice):
		return "⚠️ В конфиге нет цены для одной из моделей. Админ уже в курсе."
	case errors.Is(err, ledger.ErrInvalidUsage):
		return "⚠️ Некорректные данные учёта. Админ уже в курсе."
	}
	return "⚠️ Что-то пошло не так. Попробуй ещё раз."
}
