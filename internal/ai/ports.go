package ai

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("ai: completion has no choices")

// Completion is one answer of the text backend with its token accounting.
type Completion struct {
	Answer           string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type TextBackend interface {
	// Complete отправляет одиночный запрос без истории диалога.
	Complete(ctx context.Context, prompt string) (*Completion, error)
}
