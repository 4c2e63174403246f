package toolutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_career/internal/engine"
	"github.com/anatolykoptev/go_career/internal/engine/career"
)

func TestStatusCode(t *testing.T) {
	_, verr := career.GenerateRoadmap(context.Background(), career.RoadmapParams{})
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", verr, http.StatusBadRequest},
		{"not found", fmt.Errorf("x: %w", career.ErrNotFound), http.StatusNotFound},
		{"state", fmt.Errorf("x: %w", career.ErrSessionState), http.StatusConflict},
		{"parse", &engine.ParseError{Op: "x", Err: errors.New("bad")}, http.StatusBadGateway},
		{"llm", &engine.LLMError{Op: "x", Err: errors.New("bad")}, http.StatusBadGateway},
		{"no provider", engine.ErrNoProvider, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestPublicErrorHidesInternals(t *testing.T) {
	assert.NoError(t, PublicError("op", nil))
	err := PublicError("op", &engine.LLMError{Op: "x", Err: errors.New("api key sk-123 rejected")})
	assert.NotContains(t, err.Error(), "sk-123")
}

func TestNormLimit(t *testing.T) {
	assert.Equal(t, 50, NormLimit(0, 50, 100))
	assert.Equal(t, 100, NormLimit(500, 50, 100))
	assert.Equal(t, 7, NormLimit(7, 50, 100))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"go", "sql"}, SplitList(" go, ,sql,"))
	assert.Nil(t, SplitList(""))
}
