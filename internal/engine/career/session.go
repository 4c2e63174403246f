package career

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// ErrSessionState is returned for operations not allowed in the session's status.
var ErrSessionState = errors.New("invalid session state")

// Session retention limits. Sessions idle longer than SessionTTL are dropped,
// and at most MaxSessions are kept (least recently used go first).
const (
	SessionTTL  = 24 * time.Hour
	MaxSessions = 1000
)

// SessionManager keeps interview sessions in memory.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*InterviewSession
	touched     map[string]time.Time
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

// NewSessionManager returns an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*InterviewSession),
		touched:     make(map[string]time.Time),
		ttl:         SessionTTL,
		maxSessions: MaxSessions,
		now:         time.Now,
	}
}

// Sessions is the process-wide manager used by the HTTP and MCP surfaces.
var Sessions = NewSessionManager()

// StartInput carries optional per-session settings.
type StartInput struct {
	Profile  UserProfile      `json:"profile"`
	Settings *SessionSettings `json:"settings,omitempty"`
}

// Start generates questions for profile and opens an in-progress session.
func (m *SessionManager) Start(ctx context.Context, in StartInput) (*InterviewSession, error) {
	profile := in.Profile
	if strings.TrimSpace(profile.TargetRole) == "" {
		return nil, invalid("targetRole", "target role is required")
	}
	if profile.InterviewType == "" {
		profile.InterviewType = InterviewGeneral
	}
	d := getDefaults().Interview
	settings := SessionSettings{
		Duration:   d.DurationMinutes,
		Difficulty: d.Difficulty,
		FocusAreas: profile.Skills,
	}
	if s := in.Settings; s != nil {
		if s.Duration > 0 {
			settings.Duration = s.Duration
		}
		if s.Difficulty != "" {
			settings.Difficulty = s.Difficulty
		}
		if len(s.FocusAreas) > 0 {
			settings.FocusAreas = s.FocusAreas
		}
	}
	if settings.FocusAreas == nil {
		settings.FocusAreas = []string{}
	}

	questions, err := GenerateQuestions(ctx, profile, d.QuestionCount)
	if err != nil {
		return nil, err
	}
	s := &InterviewSession{
		ID:        uuid.NewString(),
		Profile:   profile,
		Questions: questions,
		Responses: []InterviewResponse{},
		Status:    StatusInProgress,
		Settings:  settings,
		StartTime: m.now().UTC(),
	}
	m.mu.Lock()
	m.evictLocked()
	m.sessions[s.ID] = s
	m.touched[s.ID] = m.now()
	m.mu.Unlock()
	engine.IncrInterviewSessions()
	slog.Info("interview started", slog.String("session", s.ID),
		slog.String("role", profile.TargetRole), slog.Int("questions", len(questions)))
	return snapshot(s), nil
}

// Get returns a copy of the session or ErrNotFound.
func (m *SessionManager) Get(id string) (*InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.touched[id] = m.now()
	return snapshot(s), nil
}

// SubmitResult is the outcome of SubmitResponse.
type SubmitResult struct {
	Analysis *ResponseAnalysis `json:"analysis"`
	Session  *InterviewSession `json:"session"`
}

// SubmitResponse analyses the answer to the current question and advances.
// Answering the last question completes the session.
func (m *SessionManager) SubmitResponse(ctx context.Context, id, text string, durationSecs int) (*SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text", "answer is required")
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if s.Status != StatusInProgress || s.CurrentQuestionIndex >= len(s.Questions) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: session is %s", ErrSessionState, s.Status)
	}
	idx := s.CurrentQuestionIndex
	q := s.Questions[idx]
	profile := s.Profile
	m.mu.Unlock()

	// The LLM call runs unlocked; the index check below rejects a concurrent answer.
	analysis, err := AnalyzeResponse(ctx, q.Text, text, profile)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok = m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Status != StatusInProgress || s.CurrentQuestionIndex != idx {
		return nil, fmt.Errorf("%w: question %d already answered", ErrSessionState, idx+1)
	}
	s.Responses = append(s.Responses, InterviewResponse{
		QuestionID: q.ID,
		Text:       text,
		Duration:   max(0, durationSecs),
		Analysis:   analysis,
	})
	s.CurrentQuestionIndex++
	m.touched[id] = m.now()
	if s.CurrentQuestionIndex >= len(s.Questions) {
		end := m.now().UTC()
		s.Status = StatusCompleted
		s.EndTime = &end
	}
	return &SubmitResult{Analysis: analysis, Session: snapshot(s)}, nil
}

// Finish generates feedback once and stores it on the session. Later calls
// return the stored feedback. Ending early completes the session.
func (m *SessionManager) Finish(ctx context.Context, id string) (*InterviewFeedback, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		m.mu.Unlock()
		return &fb, nil
	}
	if len(s.Responses) == 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: no answers submitted", ErrSessionState)
	}
	snap := snapshot(s)
	m.mu.Unlock()

	fb, err := GenerateFeedback(ctx, snap)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok = m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Feedback != nil {
		out := *s.Feedback
		return &out, nil
	}
	if s.Status != StatusCompleted {
		end := m.now().UTC()
		s.Status = StatusCompleted
		s.EndTime = &end
	}
	s.Feedback = fb
	m.touched[id] = m.now()
	out := *fb
	return &out, nil
}

// Active reports whether the session exists and has no feedback yet.
func (m *SessionManager) Active(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return ok && s.Feedback == nil
}

// Delete drops a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.touched, id)
	return nil
}

// Len is the number of sessions held.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictLocked drops idle sessions, then the least recently used ones until
// there is room for one more. Caller holds m.mu.
func (m *SessionManager) evictLocked() {
	now := m.now()
	for id, at := range m.touched {
		if m.ttl > 0 && now.Sub(at) > m.ttl {
			m.dropLocked(id, "idle")
		}
	}
	for m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		var oldest string
		var oldestAt time.Time
		for id, at := range m.touched {
			if oldest == "" || at.Before(oldestAt) {
				oldest, oldestAt = id, at
			}
		}
		if oldest == "" {
			return
		}
		m.dropLocked(oldest, "capacity")
	}
}

func (m *SessionManager) dropLocked(id, reason string) {
	delete(m.sessions, id)
	delete(m.touched, id)
	slog.Debug("interview session evicted", slog.String("session", id), slog.String("reason", reason))
}

// Elapsed is the mm:ss time since start, frozen at EndTime once completed.
func (m *SessionManager) Elapsed(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", ErrNotFound
	}
	end := m.now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return FormatElapsed(end.Sub(s.StartTime)), nil
}

func snapshot(s *InterviewSession) *InterviewSession {
	c := *s
	c.Questions = append([]InterviewQuestion(nil), s.Questions...)
	c.Responses = append([]InterviewResponse{}, s.Responses...)
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		c.Feedback = &fb
	}
	return &c
}
