package careerserver

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResumeAnalyzeInput is the input for resume_analyze.
type ResumeAnalyzeInput struct {
	ResumeText     string `json:"resume_text" jsonschema:"Plain text of the resume"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"Optional job description (text or HTML) to score against"`
	FileName       string `json:"file_name,omitempty" jsonschema:"Name to store in history (default: Unnamed Resume)"`
	SaveHistory    bool   `json:"save_history,omitempty" jsonschema:"Store the result in analysis history"`
}

// ResumeAnalyzeOutput wraps the analysis with its history id when stored.
type ResumeAnalyzeOutput struct {
	HistoryID string                 `json:"history_id,omitempty"`
	Result    *career.AnalysisResult `json:"result"`
}

func registerResumeAnalyze(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_analyze",
		Description: "Score a resume for ATS compatibility. Returns atsScore, formatScore, keyword count, skills, a per-category score breakdown, prioritized improvement suggestions and job recommendations (live listings when a job search API is configured).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResumeAnalyzeInput) (*mcp.CallToolResult, ResumeAnalyzeOutput, error) {
		result, err := career.AnalyzeResume(ctx, career.AnalyzeInput{
			ResumeText:     input.ResumeText,
			JobDescription: input.JobDescription,
		})
		if err != nil {
			return nil, ResumeAnalyzeOutput{}, toolutil.PublicError("resume_analyze", err)
		}
		out := ResumeAnalyzeOutput{Result: result}
		if input.SaveHistory {
			entry, err := career.RecordAnalysis(ctx, input.FileName, result)
			if err != nil {
				slog.Warn("resume_analyze: history save failed", slog.Any("error", err))
			} else {
				out.HistoryID = entry.ID
			}
		}
		return nil, out, nil
	})
}

// ResumeValidateInput is the input for resume_validate.
type ResumeValidateInput struct {
	ResumeText string `json:"resume_text" jsonschema:"Plain text extracted from a resume"`
}

// ResumeValidateOutput reports whether text plausibly is a resume.
type ResumeValidateOutput struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	Characters int    `json:"characters"`
}

func registerResumeValidate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_validate",
		Description: "Check whether extracted text looks like a resume: minimum length, recognizable sections (experience, education, skills...) and professional vocabulary. No LLM call.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input ResumeValidateInput) (*mcp.CallToolResult, ResumeValidateOutput, error) {
		text := strings.TrimSpace(input.ResumeText)
		out := ResumeValidateOutput{Valid: true, Characters: utf8.RuneCountInString(text)}
		if err := career.ValidateResumeText(text); err != nil {
			out.Valid = false
			out.Reason = career.UserMessage(err)
		}
		return nil, out, nil
	})
}

func registerResumeGenerate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_generate",
		Description: "Rewrite a resume tailored to a job description. Output has Professional Summary, Experience, Skills, Contact Information, References and Certifications sections and keeps the original facts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input career.GenerateResumeInput) (*mcp.CallToolResult, *career.GenerateResumeResult, error) {
		result, err := career.GenerateResume(ctx, input)
		if err != nil {
			return nil, nil, toolutil.PublicError("resume_generate", err)
		}
		return nil, result, nil
	})
}
