package dialog

import (
	"context"
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) CreateUserIfNotExists(ctx context.Context, u UserInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, chat_id, username, first_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO NOTHING
	`, u.TelegramID, u.ChatID, u.Username, u.FirstName, time.Now())
	return err
}

func (r *repo) ListUsers(ctx context.Context) ([]UserInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT telegram_id, chat_id, username, first_name
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserInfo
	for rows.Next() {
		var u UserInfo
		if err := rows.Scan(&u.TelegramID, &u.ChatID, &u.Username, &u.FirstName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repo) InsertDialog(ctx context.Context, telegramID int64, dialogID string, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dialogs (id, telegram_id, started_at, messages)
		VALUES ($1, $2, $3, '[]'::jsonb)
	`, dialogID, telegramID, startedAt)
	return err
}

func (r *repo) GetDialogMessages(ctx context.Context, dialogID string) ([]Exchange, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT messages FROM dialogs WHERE id = $1
	`, dialogID).Scan(&raw)
	if err != nil {
		return nil, err
	}

	var msgs []Exchange
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SetDialogMessages — атомарная перезапись всей последовательности одним
// UPDATE. И append нового обмена, и срез для /retry идут через неё.
func (r *repo) SetDialogMessages(ctx context.Context, dialogID string, msgs []Exchange) error {
	if msgs == nil {
		msgs = []Exchange{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE dialogs SET messages = $2 WHERE id = $1
	`, dialogID, raw)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) GetAttribute(ctx context.Context, telegramID int64, name string) (string, bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM user_attributes
		WHERE telegram_id = $1 AND name = $2
	`, telegramID, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *repo) SetAttribute(ctx context.Context, telegramID int64, name, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_attributes (telegram_id, name, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (telegram_id, name)
		DO UPDATE SET value = $3, updated_at = NOW()
	`, telegramID, name, raw)
	return err
}
