package docxextract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Studi Kelayakan</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p>
      <w:r><w:t xml:space="preserve">Nilai investasi </w:t></w:r>
      <w:r><w:t>Rp 7.500 miliar</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Sektor</w:t><w:tab/><w:t>Transportasi</w:t></w:r></w:p>
    <w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	docx := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		documentPart:          sampleDocument,
	})

	text, err := ExtractText(bytes.NewReader(docx))
	require.NoError(t, err)
	assert.Equal(t, "Studi Kelayakan\nNilai investasi Rp 7.500 miliar\nSektor\tTransportasi", text)
}

func TestExtractText_Empty(t *testing.T) {
	text, err := ExtractText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_Rejects(t *testing.T) {
	_, err := ExtractText(strings.NewReader("plain text, not a zip archive"))
	assert.ErrorContains(t, err, "open docx failed")

	_, err = ExtractText(bytes.NewReader(buildDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"})))
	assert.ErrorIs(t, err, ErrNoDocumentPart)

	_, err = ExtractText(bytes.NewReader(buildDocx(t, map[string]string{documentPart: "<w:document><w:p>"})))
	assert.ErrorContains(t, err, "parse word/document.xml failed")
}
