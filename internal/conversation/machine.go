package conversation

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/Vovarama1992/genbot/internal/history"
)

var (
	ErrBusy         = errors.New("conversation: request in progress")
	ErrInvalidCount = errors.New("conversation: count must be a non-negative integer")
	ErrEmptyPrompt  = errors.New("conversation: empty prompt")
	ErrNotExpected  = errors.New("conversation: input not expected in current state")
)

// Machine applies transitions atomically per user. All reads and writes of
// the store go through one mutex, so check-then-set never interleaves.
type Machine struct {
	mu    sync.Mutex
	store SessionStore
	seq   uint64
}

func NewMachine(store SessionStore) *Machine {
	return &Machine{store: store}
}

func (m *Machine) Current(userID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(userID)
}

func (m *Machine) get(userID int64) Session {
	if s, ok := m.store.Get(userID); ok {
		return s
	}
	return Session{State: Idle}
}

func (m *Machine) set(userID int64, s Session) {
	if s.State == Idle {
		m.store.Clear(userID)
		return
	}
	m.store.Set(userID, s)
}

// Reset returns the user to Idle from any state.
func (m *Machine) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Clear(userID)
}

func (m *Machine) StartTextPrompt(userID int64) error {
	return m.enter(userID, Session{State: AwaitingTextPrompt})
}

func (m *Machine) StartImagePrompt(userID int64) error {
	return m.enter(userID, Session{State: AwaitingImagePrompt})
}

// StartCustomCount remembers the sort direction until the count arrives.
func (m *Machine) StartCustomCount(userID int64, d history.Direction) error {
	return m.enter(userID, Session{State: AwaitingCustomCount, Direction: d})
}

func (m *Machine) enter(userID int64, next Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.get(userID).State == Processing {
		return ErrBusy
	}
	m.set(userID, next)
	return nil
}

// SubmitPrompt moves an awaiting-prompt session to Processing and returns the
// backend the prompt goes to together with the operation id Finish expects.
// A blank prompt sends the session back to Idle.
func (m *Machine) SubmitPrompt(userID int64, text string) (Mode, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.get(userID)
	var mode Mode
	switch cur.State {
	case AwaitingTextPrompt:
		mode = ModeText
	case AwaitingImagePrompt:
		mode = ModeImage
	case Processing:
		return 0, 0, ErrBusy
	default:
		return 0, 0, ErrNotExpected
	}

	if strings.TrimSpace(text) == "" {
		m.store.Clear(userID)
		return mode, 0, ErrEmptyPrompt
	}

	m.seq++
	m.set(userID, Session{State: Processing, Mode: mode, Op: m.seq})
	return mode, m.seq, nil
}

// SubmitCustomCount parses the count typed after "custom". A non-integer or
// negative value leaves the session waiting; a valid one returns it to Idle.
func (m *Machine) SubmitCustomCount(userID int64, text string) (history.Filter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.get(userID)
	switch cur.State {
	case AwaitingCustomCount:
	case Processing:
		return history.Filter{}, ErrBusy
	default:
		return history.Filter{}, ErrNotExpected
	}

	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return history.Filter{}, ErrInvalidCount
	}

	m.store.Clear(userID)
	return history.TopTokens(cur.Direction, n), nil
}

// Finish ends the Processing session started by op. A session that was reset
// and resubmitted since then belongs to a newer op and is left untouched, as
// are all other states.
func (m *Machine) Finish(userID int64, op uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.get(userID); cur.State == Processing && cur.Op == op {
		m.store.Clear(userID)
	}
}
