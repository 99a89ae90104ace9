package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// ErrModelCall — внешний вызов модели не удался. Ход не коммитится,
// пользователю предлагается /retry.
var ErrModelCall = errors.New("model call failed")

// TokenUsage — счётчики токенов из ответа API.
type TokenUsage struct {
	Input  int64
	Output int64
}

type ChatClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string) (string, TokenUsage, error)
}

type SpeechClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type ImageClient interface {
	GenerateImages(ctx context.Context, prompt string, n int, size string) ([]string, error)
}
