package ports

import (
	"context"
	"io"
)

// ObjectStore: низкоуровневый клиент к S3-совместимому хранилищу
type ObjectStore interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
}

// Archive копирует сгенерированные картинки и отчёты в бакет.
// Ошибки архива не должны мешать ответу пользователю.
type Archive interface {
	ObjectKey(telegramID int64, kind, filename string) string
	SaveImage(ctx context.Context, telegramID int64, data []byte, filename string) (string, error)
	SaveReport(ctx context.Context, telegramID int64, path string) (string, error)
}
