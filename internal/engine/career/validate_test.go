package career

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr string
	}{
		{"pdf ok", "cv.pdf", 1024, ""},
		{"docx ok", "CV.DOCX", 1024, ""},
		{"txt ok", "cv.txt", 10, ""},
		{"empty", "cv.pdf", 0, "empty"},
		{"too large", "cv.pdf", MaxUploadBytes + 1, "5MB"},
		{"exact limit", "cv.pdf", MaxUploadBytes, ""},
		{"bad ext", "cv.exe", 10, "unsupported"},
		{"no ext", "resume", 10, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.file, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateResumeText(t *testing.T) {
	t.Run("valid resume", func(t *testing.T) {
		assert.NoError(t, ValidateResumeText(sampleResume))
	})
	t.Run("too short", func(t *testing.T) {
		err := ValidateResumeText("Experience Education")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})
	t.Run("no sections", func(t *testing.T) {
		err := ValidateResumeText(strings.Repeat("lorem ipsum dolor sit amet ", 20))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sections")
	})
	t.Run("sections but not professional", func(t *testing.T) {
		text := "Summary and contact. " + strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
		err := ValidateResumeText(text)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not look like a resume")
	})
}

func TestValidationErrorWrapping(t *testing.T) {
	err := invalid("topic", "topic is required")
	wrapped := errors.Join(errors.New("outer"), err)
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "topic: topic is required", err.Error())
	assert.False(t, IsValidation(errors.New("plain")))
}
