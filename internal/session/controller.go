package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Vovarama1992/gpt_buddy/internal/ai"
	"github.com/Vovarama1992/gpt_buddy/internal/config"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	"github.com/Vovarama1992/gpt_buddy/internal/ledger"
	openai "github.com/sashabaranov/go-openai"
)

// ErrTurnCanceled — ход отменён пользователем до коммита.
var ErrTurnCanceled = errors.New("turn canceled")

// ErrNothingToRetry — история пуста, переигрывать нечего.
var ErrNothingToRetry = errors.New("nothing to retry")

// Assembler — сборка промпта из истории. Чистая функция, историю не трогает.
type Assembler interface {
	Build(history []dialog.Exchange, newText string, newImageURL *string, mode config.ChatMode, model string) ([]openai.ChatCompletionMessage, int)
}

// TurnResult — итог одного хода.
type TurnResult struct {
	Reply          string
	UserText       string // что реально ушло в модель (нужно для /retry после voice)
	SkippedHistory int
}

// Controller ведёт один ход: история → модель → запись обмена → биллинг.
// Ходы одного юзера строго по одному (своя защёлка на юзера), разные юзеры
// идут параллельно.
type Controller struct {
	store  dialog.Store
	ledger ledger.Service
	chat   ai.ChatClient
	asm    Assembler
	cfg    *config.Config

	// gates и cancels живут всё время процесса и не чистятся:
	// по одной записи на юзера, видевшего бота.
	mu      sync.Mutex
	gates   map[int64]*sync.Mutex
	cancels map[int64]context.CancelFunc
}

func NewController(
	store dialog.Store,
	ldg ledger.Service,
	chat ai.ChatClient,
	asm Assembler,
	cfg *config.Config,
) *Controller {
	return &Controller{
		store:   store,
		ledger:  ldg,
		chat:    chat,
		asm:     asm,
		cfg:     cfg,
		gates:   make(map[int64]*sync.Mutex),
		cancels: make(map[int64]context.CancelFunc),
	}
}

func (c *Controller) gate(telegramID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.gates[telegramID]
	if !ok {
		g = &sync.Mutex{}
		c.gates[telegramID] = g
	}
	return g
}

func (c *Controller) setCancel(telegramID int64, cancel context.CancelFunc) {
	c.mu.Lock()
	c.cancels[telegramID] = cancel
	c.mu.Unlock()
}

func (c *Controller) clearCancel(telegramID int64) {
	c.mu.Lock()
	delete(c.cancels, telegramID)
	c.mu.Unlock()
}

// Cancel отменяет текущий ход юзера. Возвращает false, если ничего не летит.
func (c *Controller) Cancel(telegramID int64) bool {
	c.mu.Lock()
	cancel, ok := c.cancels[telegramID]
	c.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// RunTurn — полный ход: Idle → AwaitingReply → Committed|Failed.
func (c *Controller) RunTurn(ctx context.Context, telegramID int64, text string, imageURL *string) (TurnResult, error) {
	g := c.gate(telegramID)
	g.Lock()
	defer g.Unlock()

	return c.run(ctx, telegramID, text, imageURL)
}

// run — тело хода, вызывается только под защёлкой юзера.
func (c *Controller) run(ctx context.Context, telegramID int64, text string, imageURL *string) (TurnResult, error) {
	start := time.Now()
	log.Printf("[turn] >>> START tg=%d", telegramID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.setCancel(telegramID, cancel)
	defer c.clearCancel(telegramID)

	model, err := c.store.GetAttribute(ctx, telegramID, dialog.AttrCurrentModel)
	if err != nil {
		return TurnResult{}, err
	}
	modeKey, err := c.store.GetAttribute(ctx, telegramID, dialog.AttrCurrentChatMode)
	if err != nil {
		return TurnResult{}, err
	}
	mode, ok := c.cfg.Modes[modeKey]
	if !ok {
		mode = c.cfg.Modes[c.cfg.DefaultMode]
	}

	history, err := c.store.GetActiveMessages(ctx, telegramID)
	if err != nil {
		return TurnResult{}, err
	}

	messages, skipped := c.asm.Build(history, text, imageURL, mode, model)

	// единственная долгая операция
	reply, usage, err := c.chat.GetCompletion(ctx, messages, model)
	log.Printf("[turn][%.1fs] model done tg=%d err=%v", time.Since(start).Seconds(), telegramID, err)
	if err != nil {
		if ctx.Err() != nil {
			return TurnResult{}, ErrTurnCanceled
		}
		return TurnResult{}, err
	}

	// гонка отмены с уже пришедшим ответом решается детерминированно:
	// отмена побеждает, ход выбрасывается целиком.
	if ctx.Err() != nil {
		log.Printf("[turn] canceled after completion tg=%d, discarding", telegramID)
		return TurnResult{}, ErrTurnCanceled
	}

	// коммитим на фоновом контексте: начатую запись не обрываем
	commitCtx := context.Background()

	exchange := dialog.Exchange{
		UserText: text,
		ImageURL: imageURL,
		BotText:  reply,
		Date:     time.Now(),
	}
	if err := c.store.ReplaceActiveMessages(commitCtx, telegramID, append(history, exchange)); err != nil {
		// ответ получен, но не сохранён — наружу уходит storage-ошибка,
		// биллинг не трогаем
		return TurnResult{}, err
	}

	// строго после записи обмена: упадём здесь — потеряем учёт, не диалог
	if err := c.ledger.RecordTokenUsage(commitCtx, telegramID, model, usage.Input, usage.Output); err != nil {
		log.Printf("[turn] ledger fail tg=%d model=%s: %v", telegramID, model, err)
	}

	log.Printf("[turn] done tg=%d in=%d out=%d", telegramID, usage.Input, usage.Output)
	return TurnResult{Reply: reply, UserText: text, SkippedHistory: skipped}, nil
}

// Retry снимает последний обмен (его старые токены уже учтены и повторно не
// списываются) и переигрывает его пользовательский ввод как свежий ход.
func (c *Controller) Retry(ctx context.Context, telegramID int64) (TurnResult, error) {
	g := c.gate(telegramID)
	g.Lock()
	defer g.Unlock()

	history, err := c.store.GetActiveMessages(ctx, telegramID)
	if err != nil {
		return TurnResult{}, err
	}
	if len(history) == 0 {
		return TurnResult{}, ErrNothingToRetry
	}

	last := history[len(history)-1]
	if err := c.store.ReplaceActiveMessages(ctx, telegramID, history[:len(history)-1]); err != nil {
		return TurnResult{}, err
	}

	log.Printf("[turn] retry tg=%d text=%q", telegramID, last.UserText)
	return c.run(ctx, telegramID, last.UserText, last.ImageURL)
}

// NewDialog — свежий диалог, активный указатель переезжает на него.
// Идёт под защёлкой юзера: /new во время летящего хода дожидается его
// коммита, иначе коммит дописал бы старую историю в новый диалог.
func (c *Controller) NewDialog(ctx context.Context, telegramID int64) error {
	g := c.gate(telegramID)
	g.Lock()
	defer g.Unlock()

	_, err := c.store.StartNewDialog(ctx, telegramID)
	return err
}
