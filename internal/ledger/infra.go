package ledger

import (
	"context"
	"database/sql"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) AddTokenUsage(ctx context.Context, telegramID int64, model string, input, output int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_model_usage (telegram_id, model, input_tokens, output_tokens, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (telegram_id, model)
		DO UPDATE SET
			input_tokens  = user_model_usage.input_tokens + $3,
			output_tokens = user_model_usage.output_tokens + $4,
			updated_at    = NOW()
	`, telegramID, model, input, output)
	return err
}

func (r *repo) AddGeneratedImages(ctx context.Context, telegramID int64, n int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_usage (telegram_id, n_generated_images, n_transcribed_seconds, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (telegram_id)
		DO UPDATE SET
			n_generated_images = user_usage.n_generated_images + $2,
			updated_at         = NOW()
	`, telegramID, n)
	return err
}

func (r *repo) AddTranscribedSeconds(ctx context.Context, telegramID int64, seconds float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_usage (telegram_id, n_generated_images, n_transcribed_seconds, updated_at)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (telegram_id)
		DO UPDATE SET
			n_transcribed_seconds = user_usage.n_transcribed_seconds + $2,
			updated_at            = NOW()
	`, telegramID, seconds)
	return err
}

func (r *repo) GetTokenUsage(ctx context.Context, telegramID int64) ([]ModelTokens, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT model, input_tokens, output_tokens
		FROM user_model_usage
		WHERE telegram_id = $1
		ORDER BY model
	`, telegramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []ModelTokens
	for rows.Next() {
		var t ModelTokens
		if err := rows.Scan(&t.Model, &t.InputTokens, &t.OutputTokens); err != nil {
			return nil, err
		}
		usage = append(usage, t)
	}
	return usage, rows.Err()
}

func (r *repo) GetResourceUsage(ctx context.Context, telegramID int64) (ResourceUsage, error) {
	var res ResourceUsage
	err := r.db.QueryRowContext(ctx, `
		SELECT n_generated_images, n_transcribed_seconds
		FROM user_usage
		WHERE telegram_id = $1
	`, telegramID).Scan(&res.GeneratedImages, &res.TranscribedSeconds)
	if err == sql.ErrNoRows {
		return ResourceUsage{}, nil
	}
	return res, err
}
