package career

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Defaults are tunable interview and roadmap defaults, optionally loaded from YAML.
type Defaults struct {
	Interview InterviewDefaults `yaml:"interview"`
	Roadmap   RoadmapDefaults   `yaml:"roadmap"`
}

// InterviewDefaults apply to new sessions.
type InterviewDefaults struct {
	QuestionCount   int    `yaml:"question_count"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Difficulty      string `yaml:"difficulty"`
}

// RoadmapDefaults fill missing roadmap parameters.
type RoadmapDefaults struct {
	Category  RoadmapCategory `yaml:"category"`
	Level     string          `yaml:"level"`
	Timeframe string          `yaml:"timeframe"`
}

// BuiltinDefaults are used when no config file is given.
func BuiltinDefaults() Defaults {
	return Defaults{
		Interview: InterviewDefaults{
			QuestionCount:   DefaultQuestionCount,
			DurationMinutes: 15,
			Difficulty:      "intermediate",
		},
		Roadmap: RoadmapDefaults{
			Category:  CategorySoftware,
			Level:     "beginner",
			Timeframe: "3months",
		},
	}
}

var (
	defaultsMu sync.RWMutex
	defaults   = BuiltinDefaults()
)

// LoadDefaults reads a YAML file over BuiltinDefaults and validates the result.
func LoadDefaults(filename string) (*Defaults, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	d := BuiltinDefaults()
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateDefaults(&d); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &d, nil
}

func validateDefaults(d *Defaults) error {
	if d.Interview.QuestionCount <= 0 || d.Interview.QuestionCount > 20 {
		return fmt.Errorf("interview.question_count must be between 1 and 20, got %d", d.Interview.QuestionCount)
	}
	if d.Interview.DurationMinutes <= 0 {
		return fmt.Errorf("interview.duration_minutes must be positive")
	}
	if !validDifficulty[d.Interview.Difficulty] {
		return fmt.Errorf("interview.difficulty %q is not one of beginner|intermediate|advanced", d.Interview.Difficulty)
	}
	switch d.Roadmap.Category {
	case CategorySoftware, CategoryEducation:
	default:
		return fmt.Errorf("roadmap.category %q is not one of software|education", d.Roadmap.Category)
	}
	if !validDifficulty[d.Roadmap.Level] {
		return fmt.Errorf("roadmap.level %q is not one of beginner|intermediate|advanced", d.Roadmap.Level)
	}
	if _, ok := timeframes[d.Roadmap.Timeframe]; !ok {
		return fmt.Errorf("roadmap.timeframe %q is not one of 1month|3months|6months|1year", d.Roadmap.Timeframe)
	}
	return nil
}

var validDifficulty = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// SetDefaults installs d for subsequent sessions and roadmaps.
func SetDefaults(d Defaults) {
	defaultsMu.Lock()
	defaults = d
	defaultsMu.Unlock()
}

func getDefaults() Defaults {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}
