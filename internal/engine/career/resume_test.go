package career

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_career/internal/engine"
)

const analysisReply = "```json\n" + `{
  "atsScore": 104,
  "formatScore": 71.6,
  "keywordCount": 18,
  "yearsOfExperience": 5,
  "educationLevel": "Bachelor's",
  "jobMatchScore": -3,
  "skills": ["Go", "go", "PostgreSQL", " Kubernetes "],
  "scoreBreakdown": [{"category": "Keywords", "score": 120, "description": "Strong"}],
  "improvementSuggestions": [
    {"title": "Quantify", "description": "Add numbers", "section": "Experience", "priority": "HIGH"},
    {"title": "Typos", "description": "Fix", "section": "Summary", "priority": "urgent", "examples": ["x"]}
  ],
  "jobRecommendations": [
    {"id": 7, "title": "Platform Engineer", "company": "Initech", "location": "Remote", "description": "Run k8s", "matchPercentage": 88, "skills": ["Kubernetes"]},
    {"title": "SRE", "company": "Hooli", "location": "NYC", "description": "Keep it up", "matchPercentage": 150, "skills": []}
  ]
}` + "\n```"

func TestAnalyzeResume(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes model output", func(t *testing.T) {
		llm := &fakeLLM{rules: []fakeRule{{"RESUME:", analysisReply}}}
		withLLM(t, llm)
		withSearcher(t, nil)

		got, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume})
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.ATSScore)
		assert.Equal(t, 72.0, got.FormatScore)
		assert.Equal(t, 0.0, got.JobMatchScore)
		assert.Equal(t, "5", got.YearsOfExperience)
		assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, got.Skills)
		assert.Equal(t, 100.0, got.ScoreBreakdown[0].Score)
		assert.Equal(t, PriorityHigh, got.ImprovementSuggestions[0].Priority)
		assert.Equal(t, PriorityMedium, got.ImprovementSuggestions[1].Priority)
		assert.NotNil(t, got.ImprovementSuggestions[0].Examples)
		require.Len(t, got.JobRecommendations, 2)
		assert.Equal(t, "7", got.JobRecommendations[0].ID)
		assert.Equal(t, "rec-2", got.JobRecommendations[1].ID)
		assert.Equal(t, 100.0, got.JobRecommendations[1].MatchPercentage)
		assert.Equal(t, engine.Float(0.5), llm.lastCall().Temperature)
		assert.Equal(t, 3000, llm.lastCall().MaxTokens)
	})

	t.Run("cached on second call", func(t *testing.T) {
		llm := &fakeLLM{rules: []fakeRule{{"RESUME:", analysisReply}}}
		withLLM(t, llm)
		withSearcher(t, nil)

		_, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume, JobDescription: "<p>Go role</p>"})
		require.NoError(t, err)
		_, err = AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume, JobDescription: "<p>Go role</p>"})
		require.NoError(t, err)
		assert.Equal(t, 1, llm.callCount())
		assert.Contains(t, llm.lastCall().Prompt, "JOB DESCRIPTION")
	})

	t.Run("live jobs replace model jobs", func(t *testing.T) {
		withLLM(t, &fakeLLM{rules: []fakeRule{{"RESUME:", analysisReply}}})
		src := &stubSearcher{jobs: []JobRecommendation{
			{ID: "chef", Title: "Pastry Chef", Skills: []string{"baking"}},
			{ID: "be", Title: "Backend Engineer", Skills: []string{"PostgreSQL"}},
		}}
		withSearcher(t, src)

		got, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume + "\nlive"})
		require.NoError(t, err)
		assert.Equal(t, "Go", src.term)
		require.Len(t, got.JobRecommendations, 2)
		assert.Equal(t, "be", got.JobRecommendations[0].ID)
	})

	t.Run("search failure keeps model jobs", func(t *testing.T) {
		withLLM(t, &fakeLLM{rules: []fakeRule{{"RESUME:", analysisReply}}})
		withSearcher(t, &stubSearcher{err: errors.New("quota")})

		got, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume + "\nfallback"})
		require.NoError(t, err)
		assert.Equal(t, "Platform Engineer", got.JobRecommendations[0].Title)
	})

	t.Run("validation", func(t *testing.T) {
		withLLM(t, &fakeLLM{})
		_, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: "   "})
		assert.True(t, IsValidation(err))
		_, err = AnalyzeResume(ctx, AnalyzeInput{ResumeText: "too short"})
		assert.True(t, IsValidation(err))
	})

	t.Run("garbage reply is a parse error", func(t *testing.T) {
		withLLM(t, &fakeLLM{rules: []fakeRule{{"RESUME:", "I cannot help with that."}}})
		withSearcher(t, nil)
		_, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume + "\ngarbage"})
		var pe *engine.ParseError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("provider failure is an llm error", func(t *testing.T) {
		withLLM(t, &fakeLLM{err: errors.New("boom")})
		_, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: sampleResume + "\nfail"})
		var le *engine.LLMError
		assert.ErrorAs(t, err, &le)
	})
}

func TestGenerateResume(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{rules: []fakeRule{{"CURRENT RESUME", "\nProfessional Summary\n...\n"}}}
	withLLM(t, llm)

	got, err := GenerateResume(ctx, GenerateResumeInput{JobDescription: "Go dev", Resume: sampleResume})
	require.NoError(t, err)
	assert.Equal(t, "Professional Summary\n...", got.Content)
	assert.Equal(t, engine.Float(0.7), llm.lastCall().Temperature)

	_, err = GenerateResume(ctx, GenerateResumeInput{Resume: sampleResume})
	assert.True(t, IsValidation(err))
	_, err = GenerateResume(ctx, GenerateResumeInput{JobDescription: "x"})
	assert.True(t, IsValidation(err))
}

func TestCompletePrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		llm := &fakeLLM{rules: []fakeRule{{"hello", "hi there"}}}
		withLLM(t, llm)
		out, err := CompletePrompt(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, "hi there", out)
		assert.Equal(t, 500, llm.lastCall().MaxTokens)
	})
	t.Run("missing prompt", func(t *testing.T) {
		withLLM(t, &fakeLLM{})
		_, err := CompletePrompt(ctx, "")
		assert.True(t, IsValidation(err))
	})
	t.Run("no provider", func(t *testing.T) {
		withLLM(t, nil)
		_, err := CompletePrompt(ctx, "hello")
		assert.ErrorIs(t, err, engine.ErrNoProvider)
	})
}
