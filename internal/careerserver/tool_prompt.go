package careerserver

import (
	"context"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PromptInput is the input for prompt_complete.
type PromptInput struct {
	Prompt string `json:"prompt" jsonschema:"Free-form prompt for the career assistant"`
}

// PromptOutput carries the assistant reply.
type PromptOutput struct {
	Result string `json:"result"`
}

func registerPromptComplete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "prompt_complete",
		Description: "Send a free-form prompt to the career assistant model and return its reply (max ~500 tokens).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PromptInput) (*mcp.CallToolResult, PromptOutput, error) {
		out, err := career.CompletePrompt(ctx, input.Prompt)
		if err != nil {
			return nil, PromptOutput{}, toolutil.PublicError("prompt_complete", err)
		}
		return nil, PromptOutput{Result: out}, nil
	})
}
