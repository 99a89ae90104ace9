package ledger

import (
	"context"
	"errors"
)

// ErrInvalidUsage — отрицательные или кривые значения счётчиков.
// Отклоняются до любой записи в БД.
var ErrInvalidUsage = errors.New("invalid usage value")

// ErrUnknownModelPrice — в счётчиках есть модель, которой нет в прайсе.
// Это дыра в конфиге, о ней надо сообщить, а не молча пропустить строку.
var ErrUnknownModelPrice = errors.New("no price for model")

// ErrStorage — БД недоступна.
var ErrStorage = errors.New("ledger storage unavailable")

// ModelTokens — накопленные токены по одной модели.
type ModelTokens struct {
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// ResourceUsage — картинки и секунды распознанного аудио.
type ResourceUsage struct {
	GeneratedImages    int64
	TranscribedSeconds float64
}

// CostLine — одна строка расшифровки в /balance.
type CostLine struct {
	Label  string
	Detail string
	Cost   float64
}

type Estimate struct {
	Total float64
	Lines []CostLine
}

// PriceTable — прайс, который ledger получает снаружи. Цены за 1000
// токенов (вход/выход), за картинку и за минуту аудио.
type PriceTable interface {
	TokenPrice(model string) (inPer1000, outPer1000 float64, ok bool)
	ImagePrice() float64
	MinutePrice() float64
}

// Repo — Postgres. Все операции записи аддитивные (upsert с прибавлением),
// счётчики не убывают.
type Repo interface {
	AddTokenUsage(ctx context.Context, telegramID int64, model string, input, output int64) error
	AddGeneratedImages(ctx context.Context, telegramID int64, n int64) error
	AddTranscribedSeconds(ctx context.Context, telegramID int64, seconds float64) error
	GetTokenUsage(ctx context.Context, telegramID int64) ([]ModelTokens, error)
	GetResourceUsage(ctx context.Context, telegramID int64) (ResourceUsage, error)
}

type Service interface {
	RecordTokenUsage(ctx context.Context, telegramID int64, model string, input, output int64) error
	RecordImageGenerated(ctx context.Context, telegramID int64, n int64) error
	RecordAudioSeconds(ctx context.Context, telegramID int64, seconds float64) error
	EstimateCost(ctx context.Context, telegramID int64) (Estimate, error)
}
