package ai

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
	}
}

// GetCompletion возвращает ответ модели вместе со счётчиками токенов из
// ответа API — по ним дальше считается биллинг.
func (c *OpenAIClient) GetCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	model string,
) (string, TokenUsage, error) {

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", TokenUsage{}, fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", TokenUsage{}, fmt.Errorf("%w: empty choices", ErrModelCall)
	}

	usage := TokenUsage{
		Input:  int64(resp.Usage.PromptTokens),
		Output: int64(resp.Usage.CompletionTokens),
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}

// Transcribe — голос в текст через whisper-1. Длительность аудио сюда не
// относится: её отдаёт Telegram, биллинг берёт её оттуда.
func (c *OpenAIClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	return resp.Text, nil
}

// GenerateImages — DALL·E, возвращает URL-ы сгенерированных картинок.
func (c *OpenAIClient) GenerateImages(ctx context.Context, prompt string, n int, size string) ([]string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		N:      n,
		Size:   size,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	urls := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		urls = append(urls, d.URL)
	}
	return urls, nil
}

// диагностика ошибок GPT для уведомлений админу
func AnalyzeOpenAIError(err error) string {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "status code: 401"):
		return "Неверный API-ключ OpenAI."
	case strings.Contains(msg, "status code: 404"):
		return "Модель не найдена."
	case strings.Contains(msg, "status code: 429"):
		return "Превышен лимит OpenAI."
	case strings.Contains(msg, "status code: 400") && strings.Contains(msg, "model"):
		return "Неверно указана модель."
	case strings.Contains(msg, "status code: 400"):
		return "Некорректный запрос к OpenAI."
	case strings.Contains(msg, "status code: 500"):
		return "Внутренняя ошибка OpenAI."
	}
	return "Неизвестная ошибка OpenAI: " + err.Error()
}
