package careerserver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// JobRecommendationsInput is the input for job_recommendations.
type JobRecommendationsInput struct {
	Query      string `json:"query,omitempty" jsonschema:"Filter by title, company, location or skill"`
	Band       string `json:"band,omitempty" jsonschema:"Match band: all (default), high (>=80), medium (60-79), low (<60)"`
	ResumeText string `json:"resume_text,omitempty" jsonschema:"Resume text used to rank listings by keyword match"`
	Live       bool   `json:"live,omitempty" jsonschema:"Search live listings via the job search API instead of the curated store"`
	Location   string `json:"location,omitempty" jsonschema:"Location for live search (default: united states)"`
}

// JobRecommendationsOutput lists matching jobs, best first.
type JobRecommendationsOutput struct {
	Jobs  []career.JobRecommendation `json:"jobs"`
	Total int                        `json:"total"`
}

func registerJobRecommendations(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_recommendations",
		Description: "List job recommendations from the curated job store (or live search with live=true), ranked against an optional resume and filtered by query and match band.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobRecommendationsInput) (*mcp.CallToolResult, JobRecommendationsOutput, error) {
		band := career.MatchBand(strings.ToLower(strings.TrimSpace(input.Band)))
		var jobs []career.JobRecommendation
		if input.Live {
			live, err := career.SearchLive(ctx, input.Query, input.Location, input.ResumeText)
			if err != nil {
				return nil, JobRecommendationsOutput{}, toolutil.PublicError("job_recommendations", err)
			}
			jobs = career.FilterByBand(live, band)
		} else {
			jobs = career.ListRecommendations(ctx, input.Query, band, input.ResumeText)
		}
		slog.Debug("job_recommendations", slog.String("query", input.Query), slog.Int("count", len(jobs)))
		return nil, JobRecommendationsOutput{Jobs: jobs, Total: len(jobs)}, nil
	})
}

// JobSaveInput is the input for job_save_toggle.
type JobSaveInput struct {
	JobID string `json:"job_id" jsonschema:"Job id from job_recommendations"`
}

// JobSaveOutput reports the new saved state.
type JobSaveOutput struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

func registerJobSaveToggle(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_save_toggle",
		Description: "Save a job if it is not saved yet, otherwise unsave it. Returns the new saved state.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobSaveInput) (*mcp.CallToolResult, JobSaveOutput, error) {
		saved, err := career.ToggleSavedJob(ctx, input.JobID)
		if err != nil {
			return nil, JobSaveOutput{}, toolutil.PublicError("job_save_toggle", err)
		}
		return nil, JobSaveOutput{ID: input.JobID, Saved: saved}, nil
	})
}
