package career

import "time"

// Salary is an estimated pay range for a role.
type Salary struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// JobRecommendation is a job listing scored against a résumé.
type JobRecommendation struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	MatchPercentage float64  `json:"matchPercentage"`
	Skills          []string `json:"skills"`
	Link            string   `json:"link,omitempty"`
	Salary          *Salary  `json:"salary,omitempty"`
	SourceLink      string   `json:"sourceLink,omitempty"`
}

// ScoreBreakdown is one category of the ATS score.
type ScoreBreakdown struct {
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// Priority of an improvement suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ImprovementSuggestion is an actionable résumé fix.
type ImprovementSuggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Section     string   `json:"section"`
	Priority    Priority `json:"priority"`
	Examples    []string `json:"examples"`
}

// AnalysisResult is the ATS analysis of one résumé.
type AnalysisResult struct {
	ATSScore               float64                 `json:"atsScore"`
	FormatScore            float64                 `json:"formatScore"`
	KeywordCount           int                     `json:"keywordCount"`
	YearsOfExperience      string                  `json:"yearsOfExperience"`
	EducationLevel         string                  `json:"educationLevel"`
	JobMatchScore          float64                 `json:"jobMatchScore"`
	Skills                 []string                `json:"skills"`
	ScoreBreakdown         []ScoreBreakdown        `json:"scoreBreakdown"`
	ImprovementSuggestions []ImprovementSuggestion `json:"improvementSuggestions"`
	JobRecommendations     []JobRecommendation     `json:"jobRecommendations"`
}

// InterviewType selects the flavour of a mock interview.
type InterviewType string

const (
	InterviewBehavioral InterviewType = "behavioral"
	InterviewTechnical  InterviewType = "technical"
	InterviewCaseStudy  InterviewType = "case_study"
	InterviewGeneral    InterviewType = "general"
)

// QuestionType classifies an interview question.
type QuestionType string

const (
	QuestionBehavioral     QuestionType = "behavioral"
	QuestionTechnical      QuestionType = "technical"
	QuestionSituational    QuestionType = "situational"
	QuestionExperience     QuestionType = "experience"
	QuestionProblemSolving QuestionType = "problem_solving"
)

// UserProfile describes the interview candidate.
type UserProfile struct {
	Name            string        `json:"name"`
	Email           string        `json:"email,omitempty"`
	TargetRole      string        `json:"targetRole"`
	ExperienceLevel string        `json:"experienceLevel"`
	Skills          []string      `json:"skills"`
	InterviewType   InterviewType `json:"interviewType"`
}

// InterviewQuestion is one generated question.
type InterviewQuestion struct {
	ID   string       `json:"id"`
	Text string       `json:"text"`
	Type QuestionType `json:"type"`
}

// ResponseAnalysis scores a single answer. TechnicalAccuracy is set only for
// technical interviews.
type ResponseAnalysis struct {
	Clarity           float64  `json:"clarity"`
	Confidence        float64  `json:"confidence"`
	Relevance         float64  `json:"relevance"`
	Completeness      float64  `json:"completeness"`
	TechnicalAccuracy *float64 `json:"technicalAccuracy,omitempty"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Suggestions       []string `json:"suggestions"`
}

// InterviewResponse is the candidate's answer to one question.
type InterviewResponse struct {
	QuestionID string            `json:"questionId"`
	Text       string            `json:"text"`
	Duration   int               `json:"duration"` // seconds
	Analysis   *ResponseAnalysis `json:"analysis,omitempty"`
}

// FeedbackMetrics are per-dimension averages over all analysed answers.
type FeedbackMetrics struct {
	Clarity           float64  `json:"clarity"`
	Confidence        float64  `json:"confidence"`
	Relevance         float64  `json:"relevance"`
	Completeness      float64  `json:"completeness"`
	TechnicalAccuracy *float64 `json:"technicalAccuracy,omitempty"`
}

// InterviewFeedback is the end-of-session report.
type InterviewFeedback struct {
	OverallScore        float64         `json:"overallScore"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	Recommendations     []string        `json:"recommendations"`
	Summary             string          `json:"summary"`
	Metrics             FeedbackMetrics `json:"metrics"`
}

// SessionStatus is the lifecycle state of an interview session.
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
)

// SessionSettings are per-session interview parameters.
type SessionSettings struct {
	Duration   int      `json:"duration"` // minutes
	Difficulty string   `json:"difficulty"`
	FocusAreas []string `json:"focusAreas"`
}

// InterviewSession is a mock interview in progress or finished.
type InterviewSession struct {
	ID                   string              `json:"id"`
	Profile              UserProfile         `json:"profile"`
	Questions            []InterviewQuestion `json:"questions"`
	Responses            []InterviewResponse `json:"responses"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	Status               SessionStatus       `json:"status"`
	Settings             SessionSettings     `json:"settings"`
	StartTime            time.Time           `json:"startTime"`
	EndTime              *time.Time          `json:"endTime,omitempty"`
	Feedback             *InterviewFeedback  `json:"feedback,omitempty"`
}

// RoadmapCategory is the domain of a learning roadmap.
type RoadmapCategory string

const (
	CategoryEducation RoadmapCategory = "education"
	CategorySoftware  RoadmapCategory = "software"
)

// RoadmapParams are the inputs to GenerateRoadmap.
type RoadmapParams struct {
	Category     RoadmapCategory `json:"category"`
	Topic        string          `json:"topic"`
	Goals        string          `json:"goals"`
	CurrentLevel string          `json:"currentLevel"`
	Timeframe    string          `json:"timeframe"`
}

// Milestone is one stage of a roadmap.
type Milestone struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Tasks       []string `json:"tasks"`
}

// Resource is a learning resource attached to a roadmap.
type Resource struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Level       string   `json:"level"`
	Tags        []string `json:"tags"`
	Cost        string   `json:"cost"`
}

// Roadmap is a generated learning plan.
type Roadmap struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Milestones  []Milestone `json:"milestones"`
	Resources   []Resource  `json:"resources"`
}
