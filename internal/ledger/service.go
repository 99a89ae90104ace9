package ledger

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

type service struct {
	repo   Repo
	prices PriceTable
}

func NewService(repo Repo, prices PriceTable) Service {
	return &service{repo: repo, prices: prices}
}

func (s *service) RecordTokenUsage(ctx context.Context, telegramID int64, model string, input, output int64) error {
	if input < 0 || output < 0 {
		return fmt.Errorf("%w: tokens in=%d out=%d", ErrInvalidUsage, input, output)
	}
	if model == "" {
		return fmt.Errorf("%w: empty model", ErrInvalidUsage)
	}

	if err := s.repo.AddTokenUsage(ctx, telegramID, model, input, output); err != nil {
		return fmt.Errorf("%w: add tokens tg=%d model=%s: %v", ErrStorage, telegramID, model, err)
	}
	return nil
}

func (s *service) RecordImageGenerated(ctx context.Context, telegramID int64, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: images n=%d", ErrInvalidUsage, n)
	}

	if err := s.repo.AddGeneratedImages(ctx, telegramID, n); err != nil {
		return fmt.Errorf("%w: add images tg=%d: %v", ErrStorage, telegramID, err)
	}
	return nil
}

func (s *service) RecordAudioSeconds(ctx context.Context, telegramID int64, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: seconds=%f", ErrInvalidUsage, seconds)
	}

	if err := s.repo.AddTranscribedSeconds(ctx, telegramID, seconds); err != nil {
		return fmt.Errorf("%w: add seconds tg=%d: %v", ErrStorage, telegramID, err)
	}
	return nil
}

// EstimateCost — чистый расчёт по накопленным счётчикам и прайсу.
// У свежего юзера все счётчики нулевые: total = 0, строк по моделям нет.
func (s *service) EstimateCost(ctx context.Context, telegramID int64) (Estimate, error) {
	tokens, err := s.repo.GetTokenUsage(ctx, telegramID)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: get tokens tg=%d: %v", ErrStorage, telegramID, err)
	}

	res, err := s.repo.GetResourceUsage(ctx, telegramID)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: get resources tg=%d: %v", ErrStorage, telegramID, err)
	}

	var est Estimate

	for _, t := range tokens {
		inPrice, outPrice, ok := s.prices.TokenPrice(t.Model)
		if !ok {
			return Estimate{}, fmt.Errorf("%w: %s", ErrUnknownModelPrice, t.Model)
		}

		cost := float64(t.InputTokens)/1000*inPrice + float64(t.OutputTokens)/1000*outPrice
		est.Total += cost
		est.Lines = append(est.Lines, CostLine{
			Label:  t.Model,
			Detail: fmt.Sprintf("%s токенов", humanize.Comma(t.InputTokens+t.OutputTokens)),
			Cost:   cost,
		})
	}

	if res.GeneratedImages > 0 {
		cost := float64(res.GeneratedImages) * s.prices.ImagePrice()
		est.Total += cost
		est.Lines = append(est.Lines, CostLine{
			Label:  "DALL·E",
			Detail: fmt.Sprintf("%d изображений", res.GeneratedImages),
			Cost:   cost,
		})
	}

	if res.TranscribedSeconds > 0 {
		cost := res.TranscribedSeconds / 60 * s.prices.MinutePrice()
		est.Total += cost
		est.Lines = append(est.Lines, CostLine{
			Label:  "Whisper",
			Detail: fmt.Sprintf("%.1f секунд", res.TranscribedSeconds),
			Cost:   cost,
		})
	}

	return est, nil
}
