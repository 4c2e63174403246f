package career

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	xmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	paraEndRe = regexp.MustCompile(`</w:p>`)
	spacesRe  = regexp.MustCompile(`[ \t]+`)
)

// ExtractText returns the plain text of an uploaded résumé.
func ExtractText(fileName string, data []byte) (string, error) {
	if err := ValidateUpload(fileName, int64(len(data))); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		if !utf8.Valid(data) {
			return "", invalid("file", "text file is not valid UTF-8")
		}
		text = string(data)
	}
	if err != nil {
		return "", err
	}
	return normalizeWhitespace(text), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		sb.WriteString(txt)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}
	defer r.Close()
	content := r.Editable().GetContent()
	content = paraEndRe.ReplaceAllString(content, "\n")
	return xmlTagRe.ReplaceAllString(content, ""), nil
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spacesRe.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
