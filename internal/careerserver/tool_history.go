package careerserver

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistoryListInput is the input for history_list.
type HistoryListInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Return a single entry with its full analysis"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max entries, newest first (default 20, max 100)"`
}

// HistoryListOutput is either one entry or a page of entries.
type HistoryListOutput struct {
	Entry   *career.HistoryEntry  `json:"entry,omitempty"`
	Entries []career.HistoryEntry `json:"entries,omitempty"`
	Total   int                   `json:"total"`
}

func registerHistoryList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_list",
		Description: "List stored resume analyses newest first, or fetch one by id.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, HistoryListOutput, error) {
		if id := strings.TrimSpace(input.ID); id != "" {
			e, err := career.GetHistory(ctx, id)
			if err != nil {
				return nil, HistoryListOutput{}, toolutil.PublicError("history_list", err)
			}
			return nil, HistoryListOutput{Entry: e, Total: 1}, nil
		}
		res, err := career.ListHistory(ctx, toolutil.NormLimit(input.Limit, 20, 100))
		if err != nil {
			return nil, HistoryListOutput{}, toolutil.PublicError("history_list", err)
		}
		return nil, HistoryListOutput{Entries: res.Entries, Total: res.Total}, nil
	})
}

// HistoryDeleteInput is the input for history_delete.
type HistoryDeleteInput struct {
	ID  string `json:"id,omitempty" jsonschema:"Entry id to delete"`
	All bool   `json:"all,omitempty" jsonschema:"Delete every entry"`
}

// HistoryDeleteOutput confirms the deletion.
type HistoryDeleteOutput struct {
	Deleted string `json:"deleted"`
}

func registerHistoryDelete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_delete",
		Description: "Delete one stored analysis by id, or all of them with all=true.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryDeleteInput) (*mcp.CallToolResult, HistoryDeleteOutput, error) {
		switch {
		case input.All:
			if err := career.ClearHistory(ctx); err != nil {
				return nil, HistoryDeleteOutput{}, toolutil.PublicError("history_delete", err)
			}
			return nil, HistoryDeleteOutput{Deleted: "all"}, nil
		case strings.TrimSpace(input.ID) != "":
			if err := career.DeleteHistory(ctx, input.ID); err != nil {
				return nil, HistoryDeleteOutput{}, toolutil.PublicError("history_delete", err)
			}
			return nil, HistoryDeleteOutput{Deleted: input.ID}, nil
		}
		return nil, HistoryDeleteOutput{}, errors.New("id or all=true is required")
	})
}

func ptr[T any](v T) *T { return &v }
