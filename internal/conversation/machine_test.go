package conversation

import (
	"errors"
	"testing"
	"time"

	"github.com/Vovarama1992/genbot/internal/history"
)

func newMachine() *Machine {
	return NewMachine(NewLRUStore(128, time.Hour))
}

func TestMachine_TextFlow(t *testing.T) {
	m := newMachine()
	const uid = 7

	if got := m.Current(uid).State; got != Idle {
		t.Fatalf("initial state %v", got)
	}
	if err := m.StartTextPrompt(uid); err != nil {
		t.Fatalf("StartTextPrompt: %v", err)
	}
	mode, op, err := m.SubmitPrompt(uid, "Hello")
	if err != nil || mode != ModeText {
		t.Fatalf("SubmitPrompt = %v, %v", mode, err)
	}
	if got := m.Current(uid).State; got != Processing {
		t.Fatalf("expected processing, got %v", got)
	}
	m.Finish(uid, op)
	if got := m.Current(uid).State; got != Idle {
		t.Fatalf("expected idle after finish, got %v", got)
	}
}

func TestMachine_ImagePromptMode(t *testing.T) {
	m := newMachine()
	_ = m.StartImagePrompt(1)
	mode, _, err := m.SubmitPrompt(1, "a red fox")
	if err != nil || mode != ModeImage {
		t.Fatalf("SubmitPrompt = %v, %v", mode, err)
	}
	if m.Current(1).Mode != ModeImage {
		t.Fatalf("processing mode not stored")
	}
}

func TestMachine_EmptyPromptReturnsToIdle(t *testing.T) {
	m := newMachine()
	_ = m.StartTextPrompt(1)

	_, _, err := m.SubmitPrompt(1, "   \n\t")
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if got := m.Current(1).State; got != Idle {
		t.Fatalf("expected idle, got %v", got)
	}
}

func TestMachine_PromptNotExpectedInIdle(t *testing.T) {
	m := newMachine()
	if _, _, err := m.SubmitPrompt(1, "hi"); !errors.Is(err, ErrNotExpected) {
		t.Fatalf("expected ErrNotExpected, got %v", err)
	}
}

func TestMachine_BusyRejectsEverything(t *testing.T) {
	m := newMachine()
	_ = m.StartTextPrompt(1)
	if _, _, err := m.SubmitPrompt(1, "x"); err != nil {
		t.Fatal(err)
	}

	if err := m.StartImagePrompt(1); !errors.Is(err, ErrBusy) {
		t.Fatalf("StartImagePrompt: %v", err)
	}
	if err := m.StartCustomCount(1, history.Low); !errors.Is(err, ErrBusy) {
		t.Fatalf("StartCustomCount: %v", err)
	}
	if _, _, err := m.SubmitPrompt(1, "y"); !errors.Is(err, ErrBusy) {
		t.Fatalf("SubmitPrompt: %v", err)
	}
	if _, err := m.SubmitCustomCount(1, "5"); !errors.Is(err, ErrBusy) {
		t.Fatalf("SubmitCustomCount: %v", err)
	}
	if got := m.Current(1).State; got != Processing {
		t.Fatalf("busy rejection changed state to %v", got)
	}

	m.Reset(1)
	if got := m.Current(1).State; got != Idle {
		t.Fatalf("reset must always reach idle, got %v", got)
	}
}

func TestMachine_CustomCount(t *testing.T) {
	m := newMachine()
	const uid = 3

	if err := m.StartCustomCount(uid, history.Low); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"-3", "abc", "", "2.5"} {
		if _, err := m.SubmitCustomCount(uid, bad); !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("%q: expected ErrInvalidCount, got %v", bad, err)
		}
		s := m.Current(uid)
		if s.State != AwaitingCustomCount || s.Direction != history.Low {
			t.Fatalf("%q: session changed to %+v", bad, s)
		}
	}

	f, err := m.SubmitCustomCount(uid, " 7 ")
	if err != nil {
		t.Fatalf("SubmitCustomCount: %v", err)
	}
	if f != history.TopTokens(history.Low, 7) {
		t.Fatalf("unexpected filter %+v", f)
	}
	if got := m.Current(uid).State; got != Idle {
		t.Fatalf("expected idle, got %v", got)
	}
}

func TestMachine_CustomCountZero(t *testing.T) {
	m := newMachine()
	_ = m.StartCustomCount(1, history.High)
	f, err := m.SubmitCustomCount(1, "0")
	if err != nil || f.Count != 0 || f.Direction != history.High {
		t.Fatalf("got %+v, %v", f, err)
	}
}

func TestMachine_MenuSwitchesPrompt(t *testing.T) {
	m := newMachine()
	_ = m.StartTextPrompt(1)
	if err := m.StartImagePrompt(1); err != nil {
		t.Fatalf("switching prompt: %v", err)
	}
	if got := m.Current(1).State; got != AwaitingImagePrompt {
		t.Fatalf("got %v", got)
	}
}

func TestMachine_FinishIgnoresNonProcessing(t *testing.T) {
	m := newMachine()
	_ = m.StartCustomCount(1, history.High)
	m.Finish(1, 1)
	if got := m.Current(1).State; got != AwaitingCustomCount {
		t.Fatalf("finish touched a waiting session: %v", got)
	}
}

func TestLRUStore_Expires(t *testing.T) {
	s := NewLRUStore(8, 20*time.Millisecond)
	s.Set(1, Session{State: AwaitingTextPrompt})
	if _, ok := s.Get(1); !ok {
		t.Fatalf("session missing right after set")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := s.Get(1); ok {
		t.Fatalf("session should have expired")
	}
}

func TestMachine_UsersAreIndependent(t *testing.T) {
	m := newMachine()
	_ = m.StartTextPrompt(1)
	_ = m.StartCustomCount(2, history.High)
	if _, _, err := m.SubmitPrompt(1, "x"); err != nil {
		t.Fatal(err)
	}
	if got := m.Current(2).State; got != AwaitingCustomCount {
		t.Fatalf("user 2 affected: %v", got)
	}
}

func TestMachine_StaleFinishKeepsNewerJob(t *testing.T) {
	m := newMachine()
	const uid = 9

	_ = m.StartTextPrompt(uid)
	_, opA, err := m.SubmitPrompt(uid, "job A")
	if err != nil {
		t.Fatal(err)
	}

	// /start посреди генерации, затем новый запрос
	m.Reset(uid)
	_ = m.StartImagePrompt(uid)
	_, opB, err := m.SubmitPrompt(uid, "job B")
	if err != nil {
		t.Fatal(err)
	}
	if opA == opB {
		t.Fatalf("operations share id %d", opA)
	}

	// job A завершился позже
	m.Finish(uid, opA)
	if got := m.Current(uid); got.State != Processing || got.Op != opB {
		t.Fatalf("job B lost its guard: %+v", got)
	}
	if err := m.StartTextPrompt(uid); !errors.Is(err, ErrBusy) {
		t.Fatalf("third request accepted while B runs: %v", err)
	}

	m.Finish(uid, opB)
	if got := m.Current(uid).State; got != Idle {
		t.Fatalf("expected idle after B, got %v", got)
	}
}
