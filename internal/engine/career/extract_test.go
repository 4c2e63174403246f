package career

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	t.Run("plain text is normalized", func(t *testing.T) {
		got, err := ExtractText("cv.txt", []byte("Jane   Doe\t\tEngineer\r\n\r\n\r\n\r\nSkills"))
		require.NoError(t, err)
		assert.NotContains(t, got, "   ")
		assert.Contains(t, got, "Jane Doe")
		assert.Contains(t, got, "Skills")
	})
	t.Run("invalid utf8", func(t *testing.T) {
		_, err := ExtractText("cv.txt", []byte{0xff, 0xfe, 0xfd})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
	t.Run("unsupported type", func(t *testing.T) {
		_, err := ExtractText("cv.rtf", []byte("hello"))
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := ExtractText("cv.pdf", []byte("not a pdf"))
		assert.Error(t, err)
	})
	t.Run("corrupt docx", func(t *testing.T) {
		_, err := ExtractText("cv.docx", []byte("not a zip"))
		assert.Error(t, err)
	})
}
