package careerserver

import (
	"context"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RoadmapInput is the input for roadmap_generate.
type RoadmapInput struct {
	Category     string `json:"category,omitempty" jsonschema:"education or software (default from config)"`
	Topic        string `json:"topic" jsonschema:"Subject to learn, e.g. Kubernetes"`
	Goals        string `json:"goals" jsonschema:"What the learner wants to achieve"`
	CurrentLevel string `json:"current_level,omitempty" jsonschema:"beginner, intermediate or advanced"`
	Timeframe    string `json:"timeframe,omitempty" jsonschema:"1month, 3months, 6months or 1year"`
}

func registerRoadmapGenerate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "roadmap_generate",
		Description: "Generate a learning roadmap with milestones (title, type, description, duration, tasks) and resources (title, type, url, level, tags, free/paid cost) for a topic, goals, level and timeframe.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input RoadmapInput) (*mcp.CallToolResult, *career.Roadmap, error) {
		rm, err := career.GenerateRoadmap(ctx, career.RoadmapParams{
			Category:     career.RoadmapCategory(input.Category),
			Topic:        input.Topic,
			Goals:        input.Goals,
			CurrentLevel: input.CurrentLevel,
			Timeframe:    input.Timeframe,
		})
		if err != nil {
			return nil, nil, toolutil.PublicError("roadmap_generate", err)
		}
		return nil, rm, nil
	})
}
