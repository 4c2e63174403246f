package career

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// timeframes maps the accepted timeframe codes to prompt text.
var timeframes = map[string]string{
	"1month":  "1 month",
	"3months": "3 months",
	"6months": "6 months",
	"1year":   "1 year",
}

// ValidateRoadmapParams fills defaults and rejects unknown enum values.
func ValidateRoadmapParams(p RoadmapParams) (RoadmapParams, error) {
	d := getDefaults().Roadmap
	p.Topic = strings.TrimSpace(p.Topic)
	p.Goals = strings.TrimSpace(p.Goals)
	if p.Topic == "" {
		return p, invalid("topic", "topic is required")
	}
	if p.Category == "" {
		p.Category = d.Category
	}
	switch p.Category {
	case CategorySoftware, CategoryEducation:
	default:
		return p, invalid("category", "category must be software or education, got %q", p.Category)
	}
	p.CurrentLevel = strings.ToLower(strings.TrimSpace(p.CurrentLevel))
	if p.CurrentLevel == "" {
		p.CurrentLevel = d.Level
	}
	if !validDifficulty[p.CurrentLevel] {
		return p, invalid("currentLevel", "level must be beginner, intermediate or advanced")
	}
	p.Timeframe = strings.ToLower(strings.ReplaceAll(p.Timeframe, " ", ""))
	if p.Timeframe == "" {
		p.Timeframe = d.Timeframe
	}
	if _, ok := timeframes[p.Timeframe]; !ok {
		return p, invalid("timeframe", "timeframe must be one of 1month, 3months, 6months, 1year")
	}
	return p, nil
}

// GenerateRoadmap builds a learning roadmap. Results are cached by parameters.
func GenerateRoadmap(ctx context.Context, params RoadmapParams) (*Roadmap, error) {
	p, err := ValidateRoadmapParams(params)
	if err != nil {
		return nil, err
	}
	engine.IncrRoadmapRequests()

	key := engine.CacheKey("roadmap", string(p.Category), strings.ToLower(p.Topic),
		strings.ToLower(p.Goals), p.CurrentLevel, p.Timeframe)
	if rm, ok := engine.CacheLoadJSON[Roadmap](ctx, key); ok {
		return &rm, nil
	}

	goals := p.Goals
	if goals == "" {
		goals = "general proficiency"
	}
	prompt := fmt.Sprintf(roadmapPrompt, p.Category, p.Topic, goals, p.CurrentLevel, timeframes[p.Timeframe])
	rm, err := engine.CompleteJSON[Roadmap](ctx, "roadmap_generate", engine.ChatRequest{
		System:      roadmapSystemPrompt,
		Prompt:      prompt,
		Temperature: engine.Float(0.7),
		MaxTokens:   2500,
	}, engine.SchemaRoadmap)
	if err != nil {
		return nil, err
	}
	normalizeRoadmap(&rm)
	engine.CacheStoreJSON(ctx, key, rm)
	return &rm, nil
}

func normalizeRoadmap(rm *Roadmap) {
	for i := range rm.Milestones {
		rm.Milestones[i].Tasks = nonNil(rm.Milestones[i].Tasks)
	}
	if rm.Resources == nil {
		rm.Resources = []Resource{}
	}
	for i := range rm.Resources {
		r := &rm.Resources[i]
		r.Cost = normalizeCost(r.Cost)
		r.Tags = nonNil(r.Tags)
	}
}

// normalizeCost maps free-form cost text to free|paid. Anything not free is paid.
func normalizeCost(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if strings.HasPrefix(c, "free") || c == "0" || c == "$0" {
		return "free"
	}
	return "paid"
}
