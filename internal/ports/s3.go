package ports

import (
	"context"
	"io"
)

// PhotoStorage — хранилище пользовательских фото. Возвращает публичный
// URL, который уходит в историю диалога и дальше в vision-модель.
type PhotoStorage interface {
	UploadPhoto(ctx context.Context, telegramID int64, fileID string, r io.Reader) (string, error)
}
