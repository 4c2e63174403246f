package career

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Upload limits.
const (
	MaxUploadBytes     = 5 << 20
	MinResumeChars     = 200
	MinAnalyzeChars    = 50
	minSectionMatches  = 2
	minProfessionalHit = 3
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var sectionKeywords = []string{
	"experience", "education", "skills", "objective", "summary", "work",
	"employment", "qualification", "achievement", "certification", "project",
	"reference", "contact",
}

var professionalKeywords = []string{
	"developed", "managed", "led", "created", "implemented", "degree",
	"university", "college", "graduate", "bachelor", "master", "certified",
	"responsible", "team", "project", "experience", "skill", "professional",
	"work",
}

var allowedExt = map[string]bool{".pdf": true, ".txt": true, ".docx": true}

// ValidateUpload checks file name and size before any parsing.
func ValidateUpload(fileName string, size int64) error {
	if size <= 0 {
		return invalid("file", "file is empty")
	}
	if size > MaxUploadBytes {
		return invalid("file", "file exceeds 5MB limit (%d bytes)", size)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExt[ext] {
		return invalid("file", "unsupported file type %q (allowed: .pdf, .txt, .docx)", ext)
	}
	return nil
}

// ValidateResumeText checks that extracted text plausibly is a résumé.
func ValidateResumeText(text string) error {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < MinResumeChars {
		return invalid("resume", "text too short (%d characters, need at least %d)", n, MinResumeChars)
	}
	lower := strings.ToLower(text)
	if n := countContains(lower, sectionKeywords); n < minSectionMatches {
		return invalid("resume", "missing resume sections (found %d of %d required section keywords)", n, minSectionMatches)
	}
	if n := countContains(lower, professionalKeywords); n < minProfessionalHit {
		return invalid("resume", "does not look like a resume (found %d of %d professional keywords)", n, minProfessionalHit)
	}
	return nil
}

func countContains(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
