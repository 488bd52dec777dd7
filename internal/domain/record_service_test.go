package domain

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/ports"
)

type fakeRepo struct {
	saved   []ports.Exchange
	queries []history.Query
	saveErr error
}

func (f *fakeRepo) EnsureUser(_ context.Context, u ports.UserRef) (*ports.User, error) {
	return &ports.User{ID: 1, TelegramID: u.TelegramID, Username: u.Username}, nil
}
func (f *fakeRepo) EnsureModel(context.Context, string) (int64, error) { return 1, nil }
func (f *fakeRepo) SaveExchange(_ context.Context, ex ports.Exchange) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, ex)
	return int64(len(f.saved)), nil
}
func (f *fakeRepo) Query(_ context.Context, q history.Query) ([]history.Row, error) {
	f.queries = append(f.queries, q)
	return []history.Row{{ID: 1}}, nil
}
func (f *fakeRepo) GetUser(context.Context, int64) (*ports.User, error) { return nil, nil }
func (f *fakeRepo) ListUsers(context.Context) ([]ports.User, error) { return nil, nil }

type fakeNotifier struct{ details []string }

func (f *fakeNotifier) Notify(_ context.Context, _ error, details string) error {
	f.details = append(f.details, details)
	return nil
}

func TestHistory_ZeroCountSkipsRepo(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewRecordService(repo, &fakeNotifier{})

	rows, err := svc.History(context.Background(), 1, history.TopTokens(history.High, 0))
	if err != nil || len(rows) != 0 {
		t.Fatalf("got %v, %v", rows, err)
	}
	if len(repo.queries) != 0 {
		t.Fatalf("repo must not be queried for count 0")
	}
}

func TestHistory_BuildsQueryAtNow(t *testing.T) {
	repo := &fakeRepo{}
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	svc := &recordService{repo: repo, notifier: &fakeNotifier{}, now: func() time.Time { return now }}

	if _, err := svc.History(context.Background(), 9, history.RecentDays(7)); err != nil {
		t.Fatal(err)
	}
	q := repo.queries[0]
	if q.TelegramID != 9 || !q.Until.Equal(now) || !q.Since.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestSaveExchange_NotifiesOnFailure(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("db down")}
	n := &fakeNotifier{}
	svc := NewRecordService(repo, n)

	if _, err := svc.SaveExchange(context.Background(), ports.Exchange{User: ports.UserRef{TelegramID: 3}, Model: "m"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(n.details) != 1 || !strings.Contains(n.details[0], "tg=3") {
		t.Fatalf("notifier not called: %v", n.details)
	}
}

func TestSaveExchange_StampsTime(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewRecordService(repo, &fakeNotifier{})
	if _, err := svc.SaveExchange(context.Background(), ports.Exchange{Model: "m"}); err != nil {
		t.Fatal(err)
	}
	if repo.saved[0].RequestedAt.IsZero() {
		t.Fatalf("RequestedAt not set")
	}
}

type memStore struct {
	keys  []string
	sizes []int64
}

func (m *memStore) PutObject(_ context.Context, key string, _ io.Reader, size int64, _ string) (string, error) {
	m.keys = append(m.keys, key)
	m.sizes = append(m.sizes, size)
	return "https://s3/" + key, nil
}

func TestArchive_Keys(t *testing.T) {
	store := &memStore{}
	a := &archiveService{store: store, now: func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }}

	url, err := a.SaveImage(context.Background(), 5, []byte("jpeg"), "../x.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if store.keys[0] != "5/images/2024-01-05/x.jpg" || store.sizes[0] != 4 || url == "" {
		t.Fatalf("unexpected upload %v %v %q", store.keys, store.sizes, url)
	}

	p := filepath.Join(t.TempDir(), "5_last5.txt")
	if err := os.WriteFile(p, []byte("report"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SaveReport(context.Background(), 5, p); err != nil {
		t.Fatal(err)
	}
	if store.keys[1] != "5/reports/2024-01-05/5_last5.txt" || store.sizes[1] != 6 {
		t.Fatalf("unexpected report upload %v %v", store.keys, store.sizes)
	}
}
