package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoProvider is returned when no LLM backend is configured.
var ErrNoProvider = errors.New("llm: no provider configured")

// LLMError is a provider failure that survived retries.
type LLMError struct {
	Op  string
	Err error
}

func (e *LLMError) Error() string { return fmt.Sprintf("%s: llm call failed: %v", e.Op, e.Err) }
func (e *LLMError) Unwrap() error { return e.Err }

// ParseError means the model replied but the reply was not the expected JSON.
type ParseError struct {
	Op  string
	Raw string // truncated
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse: %v (raw: %s)", e.Op, e.Err, e.Raw)
}
func (e *ParseError) Unwrap() error { return e.Err }

// llmLimiter throttles outbound chat calls across all features.
var llmLimiter *rate.Limiter

func initLimiter(perSecond float64, burst int) {
	if perSecond <= 0 {
		llmLimiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	llmLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a chat request through the configured provider with retry.
// A nil Temperature or zero MaxTokens falls back to the configured default.
func CallLLM(ctx context.Context, req ChatRequest) (string, error) {
	p := cfg.Provider
	if p == nil {
		return "", ErrNoProvider
	}
	if req.Temperature == nil {
		req.Temperature = Float(cfg.LLMTemperature)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = cfg.LLMMaxTokens
	}

	start := time.Now()
	resp, err := RetryDo(ctx, cfg.Retry, func() (string, error) {
		if llmLimiter != nil {
			if err := llmLimiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		metrics.LLMCalls.Add(1)
		out, err := p.Chat(ctx, req)
		if err != nil {
			metrics.LLMErrors.Add(1)
			return "", err
		}
		return out, nil
	})
	metrics.LLMLatencyMs.Add(time.Since(start).Milliseconds())
	if err != nil {
		return "", err
	}
	return stripFences(resp), nil
}

// CompleteJSON calls the LLM and decodes the JSON object embedded in the reply into T.
// When schema is non-empty the object is validated against that embedded schema first.
func CompleteJSON[T any](ctx context.Context, op string, req ChatRequest, schema string) (T, error) {
	var zero T
	raw, err := CallLLM(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNoProvider) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		return zero, &LLMError{Op: op, Err: err}
	}
	return DecodeJSON[T](op, raw, schema)
}

// DecodeJSON extracts, optionally validates and unmarshals a JSON object from raw model text.
func DecodeJSON[T any](op, raw, schema string) (T, error) {
	var zero T
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		metrics.ParseFailures.Add(1)
		return zero, &ParseError{Op: op, Raw: TruncateRunes(raw, 200, "..."), Err: errors.New("no JSON object in reply")}
	}
	if schema != "" {
		if err := ValidateJSON(schema, obj); err != nil {
			metrics.ParseFailures.Add(1)
			return zero, &ParseError{Op: op, Raw: TruncateRunes(obj, 200, "..."), Err: err}
		}
	}
	var out T
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		metrics.ParseFailures.Add(1)
		return zero, &ParseError{Op: op, Raw: TruncateRunes(obj, 200, "..."), Err: err}
	}
	return out, nil
}
