package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_career/internal/engine"
	"github.com/anatolykoptev/go_career/internal/engine/career"
)

const testResume = `Jane Doe
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

const (
	analysisReply = `{"atsScore": 82, "formatScore": 75, "keywordCount": 12, "yearsOfExperience": "5",
		"educationLevel": "Bachelor's", "jobMatchScore": 0, "skills": ["Go", "Kubernetes"],
		"scoreBreakdown": [], "improvementSuggestions": [], "jobRecommendations": []}`
	questionsReply = "1. Tell me about a time when you shipped late?\n2. How would you debug a memory leak?"
	answerReply    = `{"clarity": 80, "confidence": 70, "relevance": 90, "completeness": 60, "strengths": ["structured"]}`
	feedbackReply  = `{"overallScore": 77, "summary": "Solid.", "strengths": ["clear"], "areasForImprovement": ["depth"], "recommendations": ["practice"]}`
)

// replies answers with the first reply whose key appears in the prompt.
func replies(pairs ...string) engine.Provider {
	return engine.ProviderFunc(func(_ context.Context, req engine.ChatRequest) (string, error) {
		for i := 0; i+1 < len(pairs); i += 2 {
			if strings.Contains(req.Prompt, pairs[i]) {
				return pairs[i+1], nil
			}
		}
		return "{}", nil
	})
}

func newTestApp(t *testing.T, p engine.Provider) *fiber.App {
	t.Helper()
	prev := *engine.Cfg
	engine.Init(engine.Config{
		Provider:     p,
		LLMMaxTokens: 1000,
		Retry:        engine.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1},
	})
	engine.InitCache("", time.Minute, 100, time.Hour)

	store, err := career.OpenSQLiteStore(t.TempDir() + "/career.db")
	require.NoError(t, err)
	career.SetStore(store)
	career.SetJobSearcher(nil)

	t.Cleanup(func() {
		career.SetStore(nil)
		store.Close()
		engine.Init(prev)
	})
	return New(Options{Sessions: career.NewSessionManager()})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorOf(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Error
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	resp, data := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))

	resp, data = doJSON(t, app, http.MethodGet, "/api/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, data)
}

func TestPromptRoute(t *testing.T) {
	tests := []struct {
		name     string
		provider engine.Provider
		body     any
		status   int
		want     string
	}{
		{"ok", replies("salary", "Research market rates."), map[string]string{"prompt": "How do I negotiate salary?"}, http.StatusOK, "Research market rates."},
		{"missing prompt", replies(), map[string]string{}, http.StatusBadRequest, "prompt is required"},
		{"no provider", nil, map[string]string{"prompt": "hi"}, http.StatusServiceUnavailable, "AI provider is not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.provider)
			resp, data := doJSON(t, app, http.MethodPost, "/api/openai", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				var out map[string]string
				require.NoError(t, json.Unmarshal(data, &out))
				assert.Equal(t, tt.want, out["result"])
				return
			}
			assert.Contains(t, errorOf(t, data), tt.want)
		})
	}
}

func TestInvalidPayload(t *testing.T) {
	app := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/openai", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, data := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid payload", errorOf(t, data))
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	app := newTestApp(t, replies("RESUME:", analysisReply))

	resp, data := doJSON(t, app, http.MethodPost, "/api/analyze-resume", map[string]string{
		"resumeText": testResume,
		"fileName":   "jane.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var got analyzeResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 82.0, got.ATSScore)
	require.NotEmpty(t, got.HistoryID)

	resp, data = doJSON(t, app, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list career.HistoryListResult
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "jane.pdf", list.Entries[0].FileName)

	resp, data = doJSON(t, app, http.MethodGet, "/api/history/"+got.HistoryID+"/report?format=html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(data), "jane.pdf")

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/history/"+got.HistoryID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = doJSON(t, app, http.MethodGet, "/api/history/"+got.HistoryID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", errorOf(t, data))
}

func TestAnalyzeValidation(t *testing.T) {
	app := newTestApp(t, replies())
	resp, data := doJSON(t, app, http.MethodPost, "/api/analyze-resume", map[string]string{"resumeText": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, data), "resume text is required")
}

func multipartUpload(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	app := newTestApp(t, replies("RESUME:", analysisReply))

	t.Run("text resume is analyzed", func(t *testing.T) {
		resp, data := do(t, app, multipartUpload(t, "jane.txt", testResume))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		var got analyzeResponse
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, []string{"Go", "Kubernetes"}, got.Skills)
		assert.NotEmpty(t, got.HistoryID)
	})
	t.Run("unsupported extension", func(t *testing.T) {
		resp, data := do(t, app, multipartUpload(t, "jane.exe", testResume))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, errorOf(t, data), "unsupported file type")
	})
	t.Run("not a resume", func(t *testing.T) {
		resp, _ := do(t, app, multipartUpload(t, "notes.txt", strings.Repeat("lorem ipsum ", 30)))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("missing file", func(t *testing.T) {
		resp, data := doJSON(t, app, http.MethodPost, "/api/upload", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "file is required", errorOf(t, data))
	})
}

func TestSavedJobs(t *testing.T) {
	app := newTestApp(t, nil)

	resp, data := doJSON(t, app, http.MethodPost, "/api/jobs/j-1/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"j-1","saved":true}`, string(data))

	_, data = doJSON(t, app, http.MethodGet, "/api/jobs/saved", nil)
	assert.JSONEq(t, `["j-1"]`, string(data))

	_, data = doJSON(t, app, http.MethodPost, "/api/jobs/j-1/save", nil)
	assert.JSONEq(t, `{"id":"j-1","saved":false}`, string(data))

	resp, data = doJSON(t, app, http.MethodGet, "/api/jobs?q=go", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))

	resp, _ = doJSON(t, app, http.MethodGet, "/api/jobs?live=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestInterviewSessionFlow(t *testing.T) {
	app := newTestApp(t, replies(
		"interview questions", questionsReply,
		"Answer:", answerReply,
		"final feedback", feedbackReply,
	))

	resp, data := doJSON(t, app, http.MethodPost, "/api/interview/sessions", map[string]any{
		"profile": map[string]any{"name": "Ann", "targetRole": "Backend Engineer", "interviewType": "technical"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var s career.InterviewSession
	require.NoError(t, json.Unmarshal(data, &s))
	require.Len(t, s.Questions, 2)
	base := "/api/interview/sessions/" + s.ID

	resp, data = doJSON(t, app, http.MethodGet, base+"/report?format=html", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(data))

	resp, _ = doJSON(t, app, http.MethodPost, base+"/feedback", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for range s.Questions {
		resp, data = doJSON(t, app, http.MethodPost, base+"/responses", map[string]any{"text": "I would profile the heap.", "duration": 30})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	}
	resp, _ = doJSON(t, app, http.MethodPost, base+"/responses", map[string]any{"text": "one more"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = doJSON(t, app, http.MethodPost, base+"/feedback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var fb career.InterviewFeedback
	require.NoError(t, json.Unmarshal(data, &fb))
	assert.Equal(t, 77.0, fb.OverallScore)

	resp, data = doJSON(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view sessionView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.False(t, view.Active)
	assert.Equal(t, career.StatusCompleted, view.Session.Status)
	assert.Regexp(t, `^\d{2}:\d{2}$`, view.Elapsed)

	resp, data = doJSON(t, app, http.MethodGet, base+"/report?format=html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".html")

	resp, _ = doJSON(t, app, http.MethodGet, base+"/report?format=xls", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoadmapValidation(t *testing.T) {
	app := newTestApp(t, replies())
	resp, data := doJSON(t, app, http.MethodPost, "/api/roadmap", map[string]string{"goals": "get hired"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, errorOf(t, data))
}
