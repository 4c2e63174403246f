package career

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_career/internal/engine"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", invalid("prompt", "prompt is required"), "prompt: prompt is required"},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), "not found"},
		{"state", fmt.Errorf("%w: session is completed", ErrSessionState), "invalid session state: session is completed"},
		{"no search", ErrNoJobSearch, "Job search is not configured"},
		{"no provider", engine.ErrNoProvider, "AI provider is not configured"},
		{"parse", &engine.ParseError{Op: "x", Raw: "secret raw", Err: errors.New("bad")}, "The AI service returned an invalid response. Please try again."},
		{"llm", &engine.LLMError{Op: "x", Err: errors.New("sk-123 leaked")}, "The AI service is unavailable. Please try again later."},
		{"timeout", context.DeadlineExceeded, "The request timed out. Please try again."},
		{"other", errors.New("disk on fire"), "Internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
