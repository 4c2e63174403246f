// Package toolutil holds helpers shared by the MCP tools and the HTTP API.
package toolutil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_career/internal/engine"
	"github.com/anatolykoptev/go_career/internal/engine/career"
)

// StatusCode maps a domain error to an HTTP status.
func StatusCode(err error) int {
	var (
		le *engine.LLMError
		pe *engine.ParseError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case career.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, career.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, career.ErrSessionState):
		return http.StatusConflict
	case errors.As(err, &pe), errors.As(err, &le):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrNoProvider), errors.Is(err, career.ErrDOCXUnlicensed),
		errors.Is(err, career.ErrNoJobSearch):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// PublicError logs err in full and returns an error carrying only the
// user-safe message. op names the calling tool or route.
func PublicError(op string, err error) error {
	if err == nil {
		return nil
	}
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Warn(op+" failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		slog.Debug(op+" rejected", slog.Int("status", status), slog.Any("error", err))
	}
	return errors.New(career.UserMessage(err))
}

// NormLimit clamps a page size to [1, ceiling], using def for non-positive input.
func NormLimit(limit, def, ceiling int) int {
	switch {
	case limit <= 0:
		return def
	case limit > ceiling:
		return ceiling
	}
	return limit
}

// SplitList parses a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
