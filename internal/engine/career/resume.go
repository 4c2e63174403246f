package career

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// AnalyzeInput is the input for AnalyzeResume.
type AnalyzeInput struct {
	ResumeText     string `json:"resumeText" jsonschema:"Plain text of the resume"`
	JobDescription string `json:"jobDescription,omitempty" jsonschema:"Optional job description to score against"`
}

// GenerateResumeInput is the input for GenerateResume.
type GenerateResumeInput struct {
	JobDescription string `json:"jobDescription" jsonschema:"Target job description"`
	Resume         string `json:"resume" jsonschema:"Current resume text"`
}

// GenerateResumeResult carries the tailored résumé text.
type GenerateResumeResult struct {
	Content string `json:"content"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

type llmJob struct {
	ID              flexString `json:"id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	MatchPercentage float64    `json:"matchPercentage"`
	Skills          []string   `json:"skills"`
	Link            string     `json:"link"`
	Salary          *Salary    `json:"salary"`
}

type llmAnalysis struct {
	ATSScore               float64                 `json:"atsScore"`
	FormatScore            float64                 `json:"formatScore"`
	KeywordCount           float64                 `json:"keywordCount"`
	YearsOfExperience      flexString              `json:"yearsOfExperience"`
	EducationLevel         string                  `json:"educationLevel"`
	JobMatchScore          float64                 `json:"jobMatchScore"`
	Skills                 []string                `json:"skills"`
	ScoreBreakdown         []ScoreBreakdown        `json:"scoreBreakdown"`
	ImprovementSuggestions []ImprovementSuggestion `json:"improvementSuggestions"`
	JobRecommendations     []llmJob                `json:"jobRecommendations"`
}

// defaultSearchTerm is used for job enrichment when the résumé lists no skills.
const defaultSearchTerm = "software developer"

// AnalyzeResume scores a résumé for ATS compatibility and attaches job recommendations.
func AnalyzeResume(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	text := strings.TrimSpace(input.ResumeText)
	if text == "" {
		return nil, invalid("resumeText", "resume text is required")
	}
	if n := utf8.RuneCountInString(text); n < MinAnalyzeChars {
		return nil, invalid("resumeText", "resume text too short (%d characters, need at least %d)", n, MinAnalyzeChars)
	}
	jd := engine.HTMLToText(input.JobDescription)

	cacheKey := engine.CacheKey("resume_analyze", text, jd)
	if out, ok := engine.CacheLoadJSON[AnalysisResult](ctx, cacheKey); ok {
		return &out, nil
	}

	jobSection := ""
	against := ""
	if jd != "" {
		jobSection = fmt.Sprintf(analyzeJobSection, engine.TruncateRunes(jd, 4000, "..."))
		against = " against the job description"
	}
	prompt := fmt.Sprintf(analyzePrompt, against, jobSection, engine.TruncateRunes(text, 12000, "..."))

	raw, err := engine.CompleteJSON[llmAnalysis](ctx, "resume_analyze", engine.ChatRequest{
		System:      analyzeSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.5),
		MaxTokens:   3000,
	}, engine.SchemaAnalysis)
	if err != nil {
		return nil, err
	}
	engine.IncrResumeAnalyses()

	result := normalizeAnalysis(raw)
	result.JobRecommendations = enrichRecommendations(ctx, result, text)

	engine.CacheStoreJSON(ctx, cacheKey, *result)
	return result, nil
}

// normalizeAnalysis clamps scores and fills enum defaults on a model reply.
func normalizeAnalysis(raw llmAnalysis) *AnalysisResult {
	out := &AnalysisResult{
		ATSScore:               engine.ClampScore(raw.ATSScore),
		FormatScore:            engine.ClampScore(raw.FormatScore),
		KeywordCount:           max(0, int(raw.KeywordCount)),
		YearsOfExperience:      string(raw.YearsOfExperience),
		EducationLevel:         raw.EducationLevel,
		JobMatchScore:          engine.ClampScore(raw.JobMatchScore),
		Skills:                 dedupeStrings(raw.Skills),
		ScoreBreakdown:         raw.ScoreBreakdown,
		ImprovementSuggestions: raw.ImprovementSuggestions,
	}
	for i := range out.ScoreBreakdown {
		out.ScoreBreakdown[i].Score = engine.ClampScore(out.ScoreBreakdown[i].Score)
	}
	for i := range out.ImprovementSuggestions {
		out.ImprovementSuggestions[i].Priority = normalizePriority(out.ImprovementSuggestions[i].Priority)
		if out.ImprovementSuggestions[i].Examples == nil {
			out.ImprovementSuggestions[i].Examples = []string{}
		}
	}
	for i, j := range raw.JobRecommendations {
		id := string(j.ID)
		if id == "" {
			id = fmt.Sprintf("rec-%d", i+1)
		}
		out.JobRecommendations = append(out.JobRecommendations, JobRecommendation{
			ID:              id,
			Title:           j.Title,
			Company:         j.Company,
			Location:        j.Location,
			Description:     j.Description,
			MatchPercentage: engine.ClampScore(j.MatchPercentage),
			Skills:          j.Skills,
			Link:            j.Link,
			Salary:          j.Salary,
		})
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return out
}

func normalizePriority(p Priority) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(string(p)))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	}
	return PriorityMedium
}

// enrichRecommendations replaces model-invented jobs with live listings when a
// job search source is configured. Any failure keeps the model's list.
func enrichRecommendations(ctx context.Context, result *AnalysisResult, resumeText string) []JobRecommendation {
	src := getJobSearcher()
	if src == nil {
		return result.JobRecommendations
	}
	term := defaultSearchTerm
	if len(result.Skills) > 0 {
		term = result.Skills[0]
	}
	live, err := src.Search(ctx, term, "")
	if err != nil {
		slog.Warn("resume_analyze: job enrichment failed, keeping model recommendations",
			slog.String("term", term), slog.Any("error", err))
		return result.JobRecommendations
	}
	if len(live) == 0 {
		return result.JobRecommendations
	}
	return RankJobs(live, resumeText)
}

// GenerateResume rewrites a résumé tailored to a job description.
func GenerateResume(ctx context.Context, input GenerateResumeInput) (*GenerateResumeResult, error) {
	if strings.TrimSpace(input.JobDescription) == "" {
		return nil, invalid("jobDescription", "job description is required")
	}
	if strings.TrimSpace(input.Resume) == "" {
		return nil, invalid("resume", "resume is required")
	}
	prompt := fmt.Sprintf(generateResumePrompt,
		engine.TruncateRunes(engine.HTMLToText(input.JobDescription), 4000, "..."),
		engine.TruncateRunes(input.Resume, 12000, "..."),
	)
	raw, err := engine.CallLLM(ctx, engine.ChatRequest{
		System:      generateResumeSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.7),
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, llmFailure("resume_generate", err)
	}
	return &GenerateResumeResult{Content: strings.TrimSpace(raw)}, nil
}

// CompletePrompt forwards a free-form prompt to the assistant model.
func CompletePrompt(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", invalid("prompt", "prompt is required")
	}
	out, err := engine.CallLLM(ctx, engine.ChatRequest{
		System:      assistantSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.7),
		MaxTokens:   500,
	})
	if err != nil {
		return "", llmFailure("prompt_complete", err)
	}
	return out, nil
}

// llmFailure wraps provider errors the way engine.CompleteJSON does.
func llmFailure(op string, err error) error {
	if errors.Is(err, engine.ErrNoProvider) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &engine.LLMError{Op: op, Err: err}
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
