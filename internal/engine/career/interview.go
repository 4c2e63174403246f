package career

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// DefaultQuestionCount is the number of questions per session.
const DefaultQuestionCount = 5

var reQuestionNumbering = regexp.MustCompile(`^\s*(?:[-*•]\s*|\(?\d+[.):]\s*|Q\d+[.:]\s*)`)

// GenerateQuestions asks the model for interview questions tailored to profile.
func GenerateQuestions(ctx context.Context, profile UserProfile, count int) ([]InterviewQuestion, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if strings.TrimSpace(profile.TargetRole) == "" {
		return nil, invalid("targetRole", "target role is required")
	}
	itype := profile.InterviewType
	if itype == "" {
		itype = InterviewGeneral
	}
	skills := strings.Join(profile.Skills, ", ")
	if skills == "" {
		skills = "not specified"
	}
	prompt := fmt.Sprintf(questionsPrompt, profile.TargetRole, orDefault(profile.ExperienceLevel, "not specified"),
		skills, itype, count)

	raw, err := engine.CallLLM(ctx, engine.ChatRequest{
		System:      assistantSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.7),
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, llmFailure("interview_questions", err)
	}
	questions := ParseQuestions(raw, itype, count)
	if len(questions) == 0 {
		return nil, &engine.ParseError{Op: "interview_questions", Raw: engine.TruncateRunes(raw, 200, "..."),
			Err: fmt.Errorf("no questions in reply")}
	}
	return questions, nil
}

// ParseQuestions keeps lines with a question mark, strips list numbering and
// classifies each. At most count questions are returned.
func ParseQuestions(raw string, itype InterviewType, count int) []InterviewQuestion {
	var out []InterviewQuestion
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, "?") {
			continue
		}
		text := strings.TrimSpace(reQuestionNumbering.ReplaceAllString(line, ""))
		text = strings.Trim(text, `"*`)
		if text == "" {
			continue
		}
		out = append(out, InterviewQuestion{
			ID:   uuid.NewString(),
			Text: text,
			Type: ClassifyQuestion(text, itype),
		})
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out
}

// ClassifyQuestion assigns a question type from keywords. First match wins.
func ClassifyQuestion(text string, itype InterviewType) QuestionType {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "situation", "example", "time when"):
		return QuestionBehavioral
	case containsAny(t, "how would you", "what would you do"):
		return QuestionSituational
	case containsAny(t, "experience", "project", "worked on"):
		return QuestionExperience
	case itype == InterviewTechnical || containsAny(t, "technical", "algorithm", "code"):
		return QuestionTechnical
	}
	return QuestionProblemSolving
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// AnalyzeResponse scores one answer. technicalAccuracy is requested and kept
// only for technical interviews.
func AnalyzeResponse(ctx context.Context, question, answer string, profile UserProfile) (*ResponseAnalysis, error) {
	if strings.TrimSpace(question) == "" {
		return nil, invalid("question", "question is required")
	}
	if strings.TrimSpace(answer) == "" {
		return nil, invalid("answer", "answer is required")
	}
	technical := profile.InterviewType == InterviewTechnical
	extra := ""
	if technical {
		extra = technicalAccuracyField
	}
	prompt := fmt.Sprintf(responseAnalysisPrompt,
		orDefault(profile.TargetRole, "not specified"),
		orDefault(profile.ExperienceLevel, "not specified"),
		orDefault(string(profile.InterviewType), string(InterviewGeneral)),
		question,
		engine.TruncateRunes(answer, 6000, "..."),
		extra,
	)
	a, err := engine.CompleteJSON[ResponseAnalysis](ctx, "interview_analyze", engine.ChatRequest{
		System:      assistantSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.3),
		MaxTokens:   1000,
	}, engine.SchemaResponseAnalysis)
	if err != nil {
		return nil, err
	}
	a.Clarity = engine.ClampScore(a.Clarity)
	a.Confidence = engine.ClampScore(a.Confidence)
	a.Relevance = engine.ClampScore(a.Relevance)
	a.Completeness = engine.ClampScore(a.Completeness)
	if technical && a.TechnicalAccuracy != nil {
		v := engine.ClampScore(*a.TechnicalAccuracy)
		a.TechnicalAccuracy = &v
	} else {
		a.TechnicalAccuracy = nil
	}
	a.Strengths = nonNil(a.Strengths)
	a.Weaknesses = nonNil(a.Weaknesses)
	a.Suggestions = nonNil(a.Suggestions)
	return &a, nil
}

type llmFeedback struct {
	OverallScore        float64  `json:"overallScore"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
	Recommendations     []string `json:"recommendations"`
	Summary             string   `json:"summary"`
}

// GenerateFeedback writes the end-of-interview report. Metrics are averaged
// locally from per-answer analyses.
func GenerateFeedback(ctx context.Context, session *InterviewSession) (*InterviewFeedback, error) {
	if session == nil {
		return nil, invalid("session", "session is required")
	}
	if len(session.Responses) == 0 {
		return nil, invalid("responses", "no answers to evaluate")
	}
	p := session.Profile
	prompt := fmt.Sprintf(feedbackPrompt,
		orDefault(p.Name, "Candidate"),
		orDefault(p.TargetRole, "not specified"),
		orDefault(p.ExperienceLevel, "not specified"),
		orDefault(string(p.InterviewType), string(InterviewGeneral)),
		transcript(session),
	)
	fb, err := engine.CompleteJSON[llmFeedback](ctx, "interview_feedback", engine.ChatRequest{
		System:      assistantSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.5),
		MaxTokens:   1500,
	}, engine.SchemaFeedback)
	if err != nil {
		return nil, err
	}
	return &InterviewFeedback{
		OverallScore:        engine.ClampScore(fb.OverallScore),
		Strengths:           nonNil(fb.Strengths),
		AreasForImprovement: nonNil(fb.AreasForImprovement),
		Recommendations:     nonNil(fb.Recommendations),
		Summary:             strings.TrimSpace(fb.Summary),
		Metrics:             AverageMetrics(session.Responses),
	}, nil
}

// AverageMetrics averages analysed responses. TechnicalAccuracy is set only
// when at least one analysis carries it.
func AverageMetrics(responses []InterviewResponse) FeedbackMetrics {
	var (
		m         FeedbackMetrics
		n, nTech  int
		techTotal float64
	)
	for _, r := range responses {
		a := r.Analysis
		if a == nil {
			continue
		}
		n++
		m.Clarity += a.Clarity
		m.Confidence += a.Confidence
		m.Relevance += a.Relevance
		m.Completeness += a.Completeness
		if a.TechnicalAccuracy != nil {
			nTech++
			techTotal += *a.TechnicalAccuracy
		}
	}
	if n == 0 {
		return m
	}
	div := float64(n)
	m.Clarity = engine.ClampScore(m.Clarity / div)
	m.Confidence = engine.ClampScore(m.Confidence / div)
	m.Relevance = engine.ClampScore(m.Relevance / div)
	m.Completeness = engine.ClampScore(m.Completeness / div)
	if nTech > 0 {
		v := engine.ClampScore(techTotal / float64(nTech))
		m.TechnicalAccuracy = &v
	}
	return m
}

func transcript(s *InterviewSession) string {
	byID := make(map[string]string, len(s.Questions))
	for _, q := range s.Questions {
		byID[q.ID] = q.Text
	}
	var b strings.Builder
	for i, r := range s.Responses {
		fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n", i+1, byID[r.QuestionID], engine.TruncateRunes(r.Text, 1500, "..."))
		if a := r.Analysis; a != nil {
			fmt.Fprintf(&b, "   Scores: clarity %.0f, confidence %.0f, relevance %.0f, completeness %.0f\n",
				a.Clarity, a.Confidence, a.Relevance, a.Completeness)
		}
	}
	return b.String()
}

// FormatElapsed renders d as mm:ss. Minutes are not wrapped at an hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
