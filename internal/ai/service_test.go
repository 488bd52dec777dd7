package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/ports"
)

type stubBackend struct {
	comp *Completion
	err  error
}

func (s stubBackend) Complete(context.Context, string) (*Completion, error) { return s.comp, s.err }

type fakeRecords struct {
	saved []ports.Exchange
	err   error
}

func (f *fakeRecords) RegisterUser(context.Context, ports.UserRef) (*ports.User, error) {
	return nil, nil
}
func (f *fakeRecords) SaveExchange(_ context.Context, ex ports.Exchange) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, ex)
	return 1, nil
}
func (f *fakeRecords) History(context.Context, int64, history.Filter) ([]history.Row, error) {
	return nil, nil
}
func (f *fakeRecords) ListUsers(context.Context) ([]ports.User, error) { return nil, nil }

type fakeNotifier struct{ details []string }

func (f *fakeNotifier) Notify(_ context.Context, _ error, d string) error {
	f.details = append(f.details, d)
	return nil
}

func TestReply_PersistsExchange(t *testing.T) {
	rec := &fakeRecords{}
	svc := NewTextService(stubBackend{comp: &Completion{Answer: "Hi", Model: "gpt-3.5-turbo", TotalTokens: 12}},
		rec, &fakeNotifier{}, "gpt-3.5-turbo", zap.NewNop())

	comp, err := svc.Reply(context.Background(), ports.UserRef{TelegramID: 5, Username: "u"}, "Hello")
	if err != nil || comp.Answer != "Hi" {
		t.Fatalf("Reply = %+v, %v", comp, err)
	}
	if len(rec.saved) != 1 {
		t.Fatalf("exchange not saved")
	}
	ex := rec.saved[0]
	if ex.Request != "Hello" || ex.Answer != "Hi" || ex.TotalTokens != 12 || ex.User.TelegramID != 5 || ex.RequestedAt.IsZero() {
		t.Fatalf("unexpected exchange %+v", ex)
	}
}

func TestReply_StorageFailureStillAnswers(t *testing.T) {
	rec := &fakeRecords{err: errors.New("db down")}
	svc := NewTextService(stubBackend{comp: &Completion{Answer: "Hi", Model: "m"}},
		rec, &fakeNotifier{}, "m", zap.NewNop())

	comp, err := svc.Reply(context.Background(), ports.UserRef{TelegramID: 5}, "Hello")
	if err != nil || comp == nil || comp.Answer != "Hi" {
		t.Fatalf("answer must survive storage failure: %+v, %v", comp, err)
	}
}

func TestReply_BackendFailureNotifies(t *testing.T) {
	n := &fakeNotifier{}
	rec := &fakeRecords{}
	svc := NewTextService(stubBackend{err: errors.New("error, status code: 429, status: 429")},
		rec, n, "m", zap.NewNop())

	if _, err := svc.Reply(context.Background(), ports.UserRef{TelegramID: 5}, "Hello"); err == nil {
		t.Fatalf("expected error")
	}
	if len(rec.saved) != 0 {
		t.Fatalf("failed exchange must not be stored")
	}
	if len(n.details) != 1 || !strings.Contains(n.details[0], "Превышен лимит") {
		t.Fatalf("unexpected notifications %v", n.details)
	}
}
