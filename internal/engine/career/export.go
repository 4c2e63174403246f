package career

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// ReportFormat is an export file format.
type ReportFormat string

const (
	FormatPDF  ReportFormat = "pdf"
	FormatDOCX ReportFormat = "docx"
	FormatHTML ReportFormat = "html"
)

// Report is a printable document built from a session or an analysis.
type Report struct {
	Kind        string          `json:"kind"` // interview-report | resume-analysis
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle"`
	Score       float64         `json:"score"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Sections    []ReportSection `json:"sections"`
}

// ReportSection is a heading with key/value rows and bullet lines.
type ReportSection struct {
	Heading string      `json:"heading"`
	Rows    []ReportRow `json:"rows,omitempty"`
	Bullets []string    `json:"bullets,omitempty"`
	Text    string      `json:"text,omitempty"`
}

// ReportRow is one labelled value.
type ReportRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildInterviewReport summarises a finished session.
func BuildInterviewReport(s *InterviewSession) (*Report, error) {
	if s == nil {
		return nil, invalid("session", "session is required")
	}
	if s.Feedback == nil {
		return nil, fmt.Errorf("%w: feedback not generated yet", ErrSessionState)
	}
	fb := s.Feedback
	r := &Report{
		Kind:        "interview-report",
		Title:       "Interview Report",
		Subtitle:    fmt.Sprintf("%s · %s · %s", orDefault(s.Profile.Name, "Candidate"), s.Profile.TargetRole, s.Profile.InterviewType),
		Score:       fb.OverallScore,
		GeneratedAt: time.Now().UTC(),
	}
	m := fb.Metrics
	metrics := ReportSection{Heading: "Performance Metrics", Rows: []ReportRow{
		{"Overall", scoreText(fb.OverallScore)},
		{"Clarity", scoreText(m.Clarity)},
		{"Confidence", scoreText(m.Confidence)},
		{"Relevance", scoreText(m.Relevance)},
		{"Completeness", scoreText(m.Completeness)},
	}}
	if m.TechnicalAccuracy != nil {
		metrics.Rows = append(metrics.Rows, ReportRow{"Technical accuracy", scoreText(*m.TechnicalAccuracy)})
	}
	end := time.Now().UTC()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	metrics.Rows = append(metrics.Rows, ReportRow{"Duration", FormatElapsed(end.Sub(s.StartTime))})

	r.Sections = append(r.Sections,
		ReportSection{Heading: "Summary", Text: fb.Summary},
		metrics,
		ReportSection{Heading: "Strengths", Bullets: fb.Strengths},
		ReportSection{Heading: "Areas for Improvement", Bullets: fb.AreasForImprovement},
		ReportSection{Heading: "Recommendations", Bullets: fb.Recommendations},
	)

	byID := make(map[string]string, len(s.Questions))
	for _, q := range s.Questions {
		byID[q.ID] = q.Text
	}
	for i, resp := range s.Responses {
		sec := ReportSection{
			Heading: fmt.Sprintf("Question %d", i+1),
			Rows:    []ReportRow{{"Question", byID[resp.QuestionID]}, {"Answer", resp.Text}},
		}
		if a := resp.Analysis; a != nil {
			sec.Rows = append(sec.Rows, ReportRow{"Scores", fmt.Sprintf("clarity %.0f, confidence %.0f, relevance %.0f, completeness %.0f",
				a.Clarity, a.Confidence, a.Relevance, a.Completeness)})
			sec.Bullets = a.Suggestions
		}
		r.Sections = append(r.Sections, sec)
	}
	return r, nil
}

// BuildAnalysisReport summarises a résumé analysis.
func BuildAnalysisReport(fileName string, a *AnalysisResult) (*Report, error) {
	if a == nil {
		return nil, invalid("results", "analysis is required")
	}
	r := &Report{
		Kind:        "resume-analysis",
		Title:       "Resume Analysis",
		Subtitle:    orDefault(fileName, DefaultFileName),
		Score:       a.ATSScore,
		GeneratedAt: time.Now().UTC(),
	}
	overview := ReportSection{Heading: "Overview", Rows: []ReportRow{
		{"ATS score", scoreText(a.ATSScore)},
		{"Format score", scoreText(a.FormatScore)},
		{"Job match", scoreText(a.JobMatchScore)},
		{"Keywords", fmt.Sprintf("%d", a.KeywordCount)},
		{"Experience", a.YearsOfExperience},
		{"Education", a.EducationLevel},
	}}
	breakdown := ReportSection{Heading: "Score Breakdown"}
	for _, b := range a.ScoreBreakdown {
		breakdown.Rows = append(breakdown.Rows, ReportRow{b.Category, fmt.Sprintf("%s: %s", scoreText(b.Score), b.Description)})
	}
	r.Sections = append(r.Sections, overview, breakdown, ReportSection{Heading: "Skills", Bullets: a.Skills})

	for _, s := range a.ImprovementSuggestions {
		r.Sections = append(r.Sections, ReportSection{
			Heading: fmt.Sprintf("[%s] %s", s.Priority, s.Title),
			Text:    s.Description,
			Bullets: s.Examples,
		})
	}
	jobs := ReportSection{Heading: "Job Recommendations"}
	for _, j := range a.JobRecommendations {
		jobs.Rows = append(jobs.Rows, ReportRow{j.Title, fmt.Sprintf("%s, %s (%s match)", j.Company, j.Location, scoreText(j.MatchPercentage))})
	}
	if len(jobs.Rows) > 0 {
		r.Sections = append(r.Sections, jobs)
	}
	return r, nil
}

func scoreText(v float64) string { return fmt.Sprintf("%.0f%%", v) }

// ReportFileName is <kind>-YYYY-MM-DD.<ext>.
func ReportFileName(r *Report, f ReportFormat) string {
	return fmt.Sprintf("%s-%s.%s", r.Kind, r.GeneratedAt.Format("2006-01-02"), f)
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:32px;color:#1f2937}
h1{margin-bottom:4px}.sub{color:#6b7280;margin-top:0}
.score{font-size:28px;font-weight:bold;color:#2563eb}
h2{border-bottom:1px solid #e5e7eb;padding-bottom:4px;margin-top:28px}
table{border-collapse:collapse;width:100%}td{padding:4px 8px;vertical-align:top}
td.l{font-weight:bold;width:28%}
</style></head><body>
<h1>{{.Title}}</h1>
<p class="sub">{{.Subtitle}} · {{.GeneratedAt.Format "2006-01-02"}}</p>
<p class="score">{{printf "%.0f" .Score}}/100</p>
{{range .Sections}}<h2>{{.Heading}}</h2>
{{if .Text}}<p>{{.Text}}</p>{{end}}
{{if .Rows}}<table>{{range .Rows}}<tr><td class="l">{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</table>{{end}}
{{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}</body></html>
`))

// RenderHTML renders the report as a standalone HTML page.
func RenderHTML(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF prints the HTML report to an A4 PDF with headless Chrome.
// chromePath may be empty to use the browser found on PATH.
func RenderPDF(ctx context.Context, r *Report, chromePath string) ([]byte, error) {
	html, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	runCtx, cancelRun := context.WithTimeout(cctx, 60*time.Second)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "career-report-")
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	htmlPath := filepath.Join(tmpDir, "report.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	engine.IncrReportExports()
	return pdf, nil
}

var (
	docxLicenseOnce sync.Once
	docxLicenseErr  error
)

// ErrDOCXUnlicensed is returned when no UniDoc key was configured.
var ErrDOCXUnlicensed = errors.New("docx export requires UNIDOC_LICENSE_API_KEY")

// SetDOCXLicense registers the UniDoc metered key. Only the first call has effect.
func SetDOCXLicense(key string) error {
	docxLicenseOnce.Do(func() {
		if key == "" {
			docxLicenseErr = ErrDOCXUnlicensed
			return
		}
		docxLicenseErr = license.SetMeteredKey(key)
	})
	return docxLicenseErr
}

// RenderDOCX writes the report as a Word document.
func RenderDOCX(r *Report) ([]byte, error) {
	if err := SetDOCXLicense(""); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	doc := document.New()

	title := doc.AddParagraph()
	title.SetStyle("Title")
	title.AddRun().AddText(r.Title)

	sub := doc.AddParagraph()
	sub.AddRun().AddText(fmt.Sprintf("%s · %s", r.Subtitle, r.GeneratedAt.Format("2006-01-02")))
	score := doc.AddParagraph().AddRun()
	score.Properties().SetBold(true)
	score.AddText(fmt.Sprintf("Score: %.0f/100", r.Score))

	for _, s := range r.Sections {
		h := doc.AddParagraph()
		h.SetStyle("Heading1")
		h.AddRun().AddText(s.Heading)
		if s.Text != "" {
			doc.AddParagraph().AddRun().AddText(s.Text)
		}
		for _, row := range s.Rows {
			p := doc.AddParagraph()
			label := p.AddRun()
			label.Properties().SetBold(true)
			label.AddText(row.Label + ": ")
			p.AddRun().AddText(row.Value)
		}
		for _, b := range s.Bullets {
			doc.AddParagraph().AddRun().AddText("• " + b)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	engine.IncrReportExports()
	return buf.Bytes(), nil
}

// Render dispatches on format.
func Render(ctx context.Context, r *Report, f ReportFormat, chromePath string) ([]byte, string, error) {
	switch f {
	case FormatPDF, "":
		b, err := RenderPDF(ctx, r, chromePath)
		return b, "application/pdf", err
	case FormatDOCX:
		b, err := RenderDOCX(r)
		return b, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", err
	case FormatHTML:
		b, err := RenderHTML(r)
		return b, "text/html; charset=utf-8", err
	}
	return nil, "", invalid("format", "format must be pdf, docx or html")
}
