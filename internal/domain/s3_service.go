package domain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/genbot/internal/ports"
)

type archiveService struct {
	store ports.ObjectStore
	now   func() time.Time
}

func NewArchiveService(store ports.ObjectStore) ports.Archive {
	return &archiveService{store: store, now: time.Now}
}

// ObjectKey: путь в бакете: <tg_id>/<kind>/<date>/<file>
func (s *archiveService) ObjectKey(telegramID int64, kind, filename string) string {
	date := s.now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("%d/%s/%s/%s", telegramID, kind, date, clean)
}

func (s *archiveService) SaveImage(ctx context.Context, telegramID int64, data []byte, filename string) (string, error) {
	key := s.ObjectKey(telegramID, "images", filename)
	return s.store.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), "image/jpeg")
}

func (s *archiveService) SaveReport(ctx context.Context, telegramID int64, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	key := s.ObjectKey(telegramID, "reports", path)
	return s.store.PutObject(ctx, key, f, st.Size(), "text/plain; charset=utf-8")
}

// NopArchive используется, когда бакет не настроен
type NopArchive struct{}

func (NopArchive) ObjectKey(telegramID int64, kind, filename string) string { return "" }

func (NopArchive) SaveImage(context.Context, int64, []byte, string) (string, error) { return "", nil }

func (NopArchive) SaveReport(context.Context, int64, string) (string, error) { return "", nil }
