package careerserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers every CareerPilot tool on the given MCP server.
func RegisterTools(server *mcp.Server) int {
	registers := []func(*mcp.Server){
		registerResumeAnalyze,
		registerResumeValidate,
		registerResumeGenerate,
		registerPromptComplete,
		registerJobRecommendations,
		registerJobSaveToggle,
		registerInterviewQuestions,
		registerInterviewAnalyzeResponse,
		registerInterviewFeedback,
		registerRoadmapGenerate,
		registerHistoryList,
		registerHistoryDelete,
	}
	for _, r := range registers {
		r(server)
	}
	return len(registers)
}
