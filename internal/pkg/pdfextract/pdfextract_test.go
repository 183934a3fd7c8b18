package pdfextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_Empty(t *testing.T) {
	text, err := ExtractText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_NotAPDF(t *testing.T) {
	_, err := ExtractText(strings.NewReader("plain text, not a pdf document"))
	assert.Error(t, err)
}
