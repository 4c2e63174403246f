package career

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		file string
		want string
	}{
		{"plain", "cv.pdf", `^resumes/2026/03/09/[0-9a-f-]{36}-cv\.pdf$`},
		{"spaces", "My Resume.docx", `^resumes/2026/03/09/[0-9a-f-]{36}-My_Resume\.docx$`},
		{"path stripped", "../../etc/passwd.txt", `^resumes/2026/03/09/[0-9a-f-]{36}-passwd\.txt$`},
		{"empty", "", `^resumes/2026/03/09/[0-9a-f-]{36}-resume$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.want), ResumeKey(tt.file, now))
		})
	}
}

func TestNewObjectStoreRequiresBucket(t *testing.T) {
	_, err := NewObjectStore(context.Background(), ObjectStoreConfig{})
	require.Error(t, err)
}

func TestPublishRequiresPayload(t *testing.T) {
	q := &AnalysisQueue{}
	_, err := q.Publish(context.Background(), AnalysisJob{FileName: "cv.pdf"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
