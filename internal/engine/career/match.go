package career

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// matchStopWords filters common English words that add noise to keyword matching.
var matchStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"years": true, "year": true, "experience": true, "including": true,
}

// Keywords tokenizes text into a lowercase keyword set (>= 3 runes, stop words dropped).
// Keeps + # . inside words so "c++", "c#" and "node.js" survive.
func Keywords(text string) map[string]bool {
	return tokenSet(text, 3)
}

// ResumeKeywords is Keywords plus the short tokens ("go", "ai", "c") that
// skill lookups need. Pass its result to ScoreMatch.
func ResumeKeywords(text string) map[string]bool {
	return tokenSet(text, 1)
}

func tokenSet(text string, minRunes int) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) >= minRunes && !matchStopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// MatchResult explains a résumé/job match.
type MatchResult struct {
	Percentage float64  `json:"percentage"`
	Matching   []string `json:"matching"`
	Missing    []string `json:"missing"`
}

// ScoreMatch scores how well a résumé keyword set (from ResumeKeywords) covers a job.
// Without listed skills the score is the share of job keywords present in the
// résumé. With skills, skill coverage weighs 60% and keyword coverage 40%.
// Missing is capped at 20 entries.
func ScoreMatch(resumeKW map[string]bool, job JobRecommendation) MatchResult {
	jobKW := Keywords(job.Title + " " + job.Description + " " + strings.Join(job.Skills, " "))

	var res MatchResult
	for kw := range jobKW {
		if resumeKW[kw] {
			res.Matching = append(res.Matching, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}

	var coverage float64
	if len(jobKW) > 0 {
		coverage = float64(len(res.Matching)) / float64(len(jobKW))
	}
	score := coverage
	if len(job.Skills) > 0 {
		hit := 0
		for _, s := range job.Skills {
			if skillPresent(resumeKW, s) {
				hit++
			}
		}
		score = 0.6*float64(hit)/float64(len(job.Skills)) + 0.4*coverage
	}
	res.Percentage = math.Round(score * 100)

	sort.Strings(res.Matching)
	sort.Strings(res.Missing)
	if len(res.Missing) > 20 {
		res.Missing = res.Missing[:20]
	}
	return res
}

// skillPresent is true when every keyword of a (possibly multi-word) skill is in the set.
func skillPresent(resumeKW map[string]bool, skill string) bool {
	parts := tokenSet(skill, 1)
	if len(parts) == 0 {
		return resumeKW[strings.ToLower(strings.TrimSpace(skill))]
	}
	for p := range parts {
		if !resumeKW[p] {
			return false
		}
	}
	return true
}

// RankJobs sets MatchPercentage on every job against resumeText and sorts best first.
// Ties keep their original order.
func RankJobs(jobs []JobRecommendation, resumeText string) []JobRecommendation {
	if strings.TrimSpace(resumeText) == "" {
		return jobs
	}
	kw := ResumeKeywords(resumeText)
	out := make([]JobRecommendation, len(jobs))
	copy(out, jobs)
	for i := range out {
		out[i].MatchPercentage = ScoreMatch(kw, out[i]).Percentage
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchPercentage > out[j].MatchPercentage
	})
	return out
}

// FilterJobs keeps jobs whose title, company, location or skills contain term
// (case-insensitive). An empty term keeps everything.
func FilterJobs(jobs []JobRecommendation, term string) []JobRecommendation {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return jobs
	}
	out := make([]JobRecommendation, 0, len(jobs))
	for _, j := range jobs {
		if strings.Contains(strings.ToLower(j.Title), term) ||
			strings.Contains(strings.ToLower(j.Company), term) ||
			strings.Contains(strings.ToLower(j.Location), term) ||
			anyContains(j.Skills, term) {
			out = append(out, j)
		}
	}
	return out
}

func anyContains(list []string, term string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
