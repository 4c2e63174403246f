package career

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anatolykoptev/go_career/internal/engine"
)

const sampleResume = `Jane Doe
Senior Backend Engineer

Summary
Professional engineer with a track record of shipping reliable distributed systems.

Experience
Acme Corp, 2019-2024. Developed and managed Go microservices, led a team of five,
implemented Kubernetes deployments and PostgreSQL replication.

Education
Bachelor of Science in Computer Science, State University.

Skills
Go, PostgreSQL, Kubernetes, Docker, gRPC, Redis`

// fakeLLM answers by the first rule whose key appears in the prompt.
type fakeLLM struct {
	mu    sync.Mutex
	rules []fakeRule
	calls []engine.ChatRequest
	err   error
}

type fakeRule struct {
	contains string
	reply    string
}

func (f *fakeLLM) Chat(_ context.Context, req engine.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	for _, r := range f.rules {
		if strings.Contains(req.Prompt, r.contains) {
			return r.reply, nil
		}
	}
	return "{}", nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLLM) lastCall() engine.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// withLLM installs p with instant retries and a fresh in-memory cache.
func withLLM(t *testing.T, p engine.Provider) {
	t.Helper()
	prev := *engine.Cfg
	engine.Init(engine.Config{
		Provider:       p,
		LLMTemperature: 0.2,
		LLMMaxTokens:   1000,
		Retry: engine.RetryConfig{
			MaxRetries:  1,
			InitialWait: time.Millisecond,
			MaxWait:     time.Millisecond,
			Multiplier:  1,
		},
	})
	engine.InitCache("", time.Minute, 100, time.Hour)
	t.Cleanup(func() { engine.Init(prev) })
}

// withStore installs a temp SQLite history store.
func withStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(t.TempDir() + "/career.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	SetStore(s)
	t.Cleanup(func() {
		SetStore(nil)
		s.Close()
	})
	return s
}

type stubSearcher struct {
	jobs []JobRecommendation
	err  error
	term string
}

func (s *stubSearcher) Search(_ context.Context, query, _ string) ([]JobRecommendation, error) {
	s.term = query
	return s.jobs, s.err
}

func withSearcher(t *testing.T, s JobSearcher) {
	t.Helper()
	prev := getJobSearcher()
	SetJobSearcher(s)
	t.Cleanup(func() { SetJobSearcher(prev) })
}
