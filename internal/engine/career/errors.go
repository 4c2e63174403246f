package career

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// UserMessage turns err into text safe to show a user. Validation and state
// errors pass through; model and infrastructure errors become generic text.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		le *engine.LLMError
		pe *engine.ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrSessionState):
		return err.Error()
	case errors.Is(err, ErrDOCXUnlicensed):
		return "DOCX export is not configured"
	case errors.Is(err, ErrNoJobSearch):
		return "Job search is not configured"
	case errors.Is(err, engine.ErrNoProvider):
		return "AI provider is not configured"
	case errors.As(err, &pe):
		return "The AI service returned an invalid response. Please try again."
	case errors.As(err, &le):
		return "The AI service is unavailable. Please try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	}
	return "Internal error"
}
