package careerserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InterviewQuestionsInput is the input for interview_questions.
type InterviewQuestionsInput struct {
	Profile career.UserProfile `json:"profile" jsonschema:"Candidate profile: name, targetRole, experienceLevel, skills, interviewType (behavioral|technical|case_study|general)"`
	Count   int                `json:"count,omitempty" jsonschema:"Number of questions (default 5, max 15)"`
}

// InterviewQuestionsOutput lists the generated questions.
type InterviewQuestionsOutput struct {
	Questions []career.InterviewQuestion `json:"questions"`
}

func registerInterviewQuestions(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "interview_questions",
		Description: "Generate mock interview questions for a candidate profile. Each question is classified as behavioral, technical, situational, experience or problem_solving.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input InterviewQuestionsInput) (*mcp.CallToolResult, InterviewQuestionsOutput, error) {
		count := toolutil.NormLimit(input.Count, career.DefaultQuestionCount, 15)
		qs, err := career.GenerateQuestions(ctx, input.Profile, count)
		if err != nil {
			return nil, InterviewQuestionsOutput{}, toolutil.PublicError("interview_questions", err)
		}
		return nil, InterviewQuestionsOutput{Questions: qs}, nil
	})
}

// AnalyzeResponseInput is the input for interview_analyze_response.
type AnalyzeResponseInput struct {
	Question string             `json:"question" jsonschema:"Interview question text"`
	Answer   string             `json:"answer" jsonschema:"Candidate answer"`
	Profile  career.UserProfile `json:"profile" jsonschema:"Candidate profile; interviewType=technical adds a technicalAccuracy score"`
}

func registerInterviewAnalyzeResponse(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "interview_analyze_response",
		Description: "Score one interview answer on clarity, confidence, relevance and completeness (0-100, plus technicalAccuracy for technical interviews) with strengths, weaknesses and suggestions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeResponseInput) (*mcp.CallToolResult, *career.ResponseAnalysis, error) {
		a, err := career.AnalyzeResponse(ctx, input.Question, input.Answer, input.Profile)
		if err != nil {
			return nil, nil, toolutil.PublicError("interview_analyze_response", err)
		}
		return nil, a, nil
	})
}

// Exchange is one answered question in a stateless feedback request.
type Exchange struct {
	Question string                   `json:"question" jsonschema:"Question text"`
	Answer   string                   `json:"answer" jsonschema:"Candidate answer"`
	Duration int                      `json:"duration,omitempty" jsonschema:"Seconds spent answering"`
	Analysis *career.ResponseAnalysis `json:"analysis,omitempty" jsonschema:"Prior interview_analyze_response result; computed when missing"`
}

// InterviewFeedbackInput is the input for interview_feedback.
type InterviewFeedbackInput struct {
	Profile   career.UserProfile `json:"profile" jsonschema:"Candidate profile"`
	Exchanges []Exchange         `json:"exchanges" jsonschema:"Answered questions in order"`
}

func registerInterviewFeedback(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "interview_feedback",
		Description: "Produce end-of-interview feedback from a list of question/answer exchanges: overall score, strengths, areas for improvement, recommendations, summary and averaged metrics. Unanalyzed answers are scored first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input InterviewFeedbackInput) (*mcp.CallToolResult, *career.InterviewFeedback, error) {
		session, err := sessionFromExchanges(ctx, input.Profile, input.Exchanges)
		if err != nil {
			return nil, nil, toolutil.PublicError("interview_feedback", err)
		}
		fb, err := career.GenerateFeedback(ctx, session)
		if err != nil {
			return nil, nil, toolutil.PublicError("interview_feedback", err)
		}
		return nil, fb, nil
	})
}

// sessionFromExchanges rebuilds a completed session, analyzing any answer
// that arrives without a prior analysis.
func sessionFromExchanges(ctx context.Context, profile career.UserProfile, exchanges []Exchange) (*career.InterviewSession, error) {
	s := &career.InterviewSession{Profile: profile, Status: career.StatusCompleted}
	for i, ex := range exchanges {
		if strings.TrimSpace(ex.Answer) == "" {
			continue
		}
		id := fmt.Sprintf("q%d", i+1)
		analysis := ex.Analysis
		if analysis == nil {
			a, err := career.AnalyzeResponse(ctx, ex.Question, ex.Answer, profile)
			if err != nil {
				return nil, err
			}
			analysis = a
		}
		s.Questions = append(s.Questions, career.InterviewQuestion{
			ID:   id,
			Text: ex.Question,
			Type: career.ClassifyQuestion(ex.Question, profile.InterviewType),
		})
		s.Responses = append(s.Responses, career.InterviewResponse{
			QuestionID: id,
			Text:       ex.Answer,
			Duration:   ex.Duration,
			Analysis:   analysis,
		})
	}
	s.CurrentQuestionIndex = len(s.Questions)
	return s, nil
}
