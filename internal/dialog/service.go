package dialog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Defaults — значения атрибутов для юзера, который ещё ничего не выбирал.
type Defaults struct {
	Model    string
	ChatMode string
}

type service struct {
	repo     Repo
	defaults Defaults
}

func NewStore(repo Repo, defaults Defaults) Store {
	return &service{repo: repo, defaults: defaults}
}

func (s *service) RegisterUserIfNotExists(ctx context.Context, u UserInfo) error {
	if err := s.repo.CreateUserIfNotExists(ctx, u); err != nil {
		return fmt.Errorf("%w: register user tg=%d: %v", ErrStorage, u.TelegramID, err)
	}
	return nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserInfo, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrStorage, err)
	}
	return users, nil
}

func (s *service) StartNewDialog(ctx context.Context, telegramID int64) (string, error) {
	id := uuid.NewString()

	if err := s.repo.InsertDialog(ctx, telegramID, id, time.Now()); err != nil {
		return "", fmt.Errorf("%w: start dialog tg=%d: %v", ErrStorage, telegramID, err)
	}
	if err := s.repo.SetAttribute(ctx, telegramID, AttrCurrentDialogID, id); err != nil {
		return "", fmt.Errorf("%w: set active dialog tg=%d: %v", ErrStorage, telegramID, err)
	}

	log.Printf("[dialog] new dialog tg=%d id=%s", telegramID, id)
	return id, nil
}

// activeDialogID возвращает указатель на активный диалог,
// создавая диалог лениво при первом обращении.
func (s *service) activeDialogID(ctx context.Context, telegramID int64) (string, error) {
	id, ok, err := s.repo.GetAttribute(ctx, telegramID, AttrCurrentDialogID)
	if err != nil {
		return "", fmt.Errorf("%w: get active dialog tg=%d: %v", ErrStorage, telegramID, err)
	}
	if ok && id != "" {
		return id, nil
	}
	return s.StartNewDialog(ctx, telegramID)
}

func (s *service) GetActiveMessages(ctx context.Context, telegramID int64) ([]Exchange, error) {
	id, err := s.activeDialogID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.GetDialogMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get messages tg=%d dialog=%s: %v", ErrStorage, telegramID, id, err)
	}
	return msgs, nil
}

func (s *service) ReplaceActiveMessages(ctx context.Context, telegramID int64, msgs []Exchange) error {
	id, err := s.activeDialogID(ctx, telegramID)
	if err != nil {
		return err
	}

	if err := s.repo.SetDialogMessages(ctx, id, msgs); err != nil {
		return fmt.Errorf("%w: set messages tg=%d dialog=%s: %v", ErrStorage, telegramID, id, err)
	}
	return nil
}

func (s *service) GetAttribute(ctx context.Context, telegramID int64, name string) (string, error) {
	v, ok, err := s.repo.GetAttribute(ctx, telegramID, name)
	if err != nil {
		return "", fmt.Errorf("%w: get attribute %s tg=%d: %v", ErrStorage, name, telegramID, err)
	}
	if ok {
		return v, nil
	}

	// документированные дефолты вместо ошибки
	switch name {
	case AttrCurrentModel:
		return s.defaults.Model, nil
	case AttrCurrentChatMode:
		return s.defaults.ChatMode, nil
	}
	return "", nil
}

func (s *service) SetAttribute(ctx context.Context, telegramID int64, name, value string) error {
	if err := s.repo.SetAttribute(ctx, telegramID, name, value); err != nil {
		return fmt.Errorf("%w: set attribute %s tg=%d: %v", ErrStorage, name, telegramID, err)
	}
	return nil
}
