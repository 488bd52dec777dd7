// Package conversation keeps the per-user dialogue state: which input the bot
// expects next and whether a request is already in flight.
package conversation

import "github.com/Vovarama1992/genbot/internal/history"

type State int

const (
	Idle State = iota
	AwaitingTextPrompt
	AwaitingImagePrompt
	AwaitingCustomCount
	Processing
)

func (s State) String() string {
	switch s {
	case AwaitingTextPrompt:
		return "awaiting_text_prompt"
	case AwaitingImagePrompt:
		return "awaiting_image_prompt"
	case AwaitingCustomCount:
		return "awaiting_custom_count"
	case Processing:
		return "processing"
	}
	return "idle"
}

// Session is the stored state of one user. Direction is meaningful only in
// AwaitingCustomCount; Mode and Op only in Processing.
type Session struct {
	State     State
	Direction history.Direction
	Mode      Mode
	// Op identifies the request that put the session into Processing.
	Op uint64
}

// Mode tells which backend a prompt goes to.
type Mode int

const (
	ModeText Mode = iota
	ModeImage
)

func (m Mode) String() string {
	if m == ModeImage {
		return "image"
	}
	return "text"
}

// SessionStore holds non-idle sessions. A missing entry means Idle.
type SessionStore interface {
	Get(userID int64) (Session, bool)
	Set(userID int64, s Session)
	Clear(userID int64)
}
