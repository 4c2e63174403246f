package engine

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	smartQuotes     = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// ExtractJSONObject finds the JSON object embedded in a model reply.
// Candidates in order: fenced ```json block, whole text, outermost {...} span.
// Each candidate is tried as-is and then after light repair.
func ExtractJSONObject(raw string) (string, bool) {
	var candidates []string
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	trimmed := strings.TrimSpace(raw)
	candidates = append(candidates, trimmed)
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		candidates = append(candidates, raw[start:end+1])
	}

	for _, c := range candidates {
		if isJSONObject(c) {
			return c, true
		}
		if fixed := repairJSON(c); isJSONObject(fixed) {
			return fixed, true
		}
	}
	return "", false
}

func isJSONObject(s string) bool {
	return gjson.Valid(s) && gjson.Parse(s).IsObject()
}

// repairJSON fixes the mistakes models make most often: typographic quotes
// and trailing commas before a closing bracket.
func repairJSON(s string) string {
	s = smartQuotes.Replace(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// JSONField reads a dotted gjson path from a JSON document.
// Returns "" when absent.
func JSONField(doc, path string) string {
	return gjson.Get(doc, path).String()
}
