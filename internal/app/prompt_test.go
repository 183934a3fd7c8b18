package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kpbu-assistant/internal/model"
)

func TestBuildPrompt_Layout(t *testing.T) {
	chunks := []model.RetrievedChunk{
		chunk("tol.pdf", "1", "Konsesi 40 tahun", score(0.87654)),
		chunk("rs.pdf", "2", "Tipe B", nil),
	}

	got := BuildPrompt("Berapa lama konsesi?", chunks)

	want := "\nAnda adalah asisten AI yang ahli dalam proyek Kerjasama Pemerintah dan Badan Usaha (KPBU). \n" +
		"Berdasarkan dokumen-dokumen yang relevan di bawah ini, berikan jawaban yang akurat dan komprehensif untuk pertanyaan pengguna.\n" +
		"\n" +
		"KONTEKS DOKUMEN:\n" +
		"\n[Dokumen 1]\nSumber: tol.pdf\nID Proyek: 1\nKonten: Konsesi 40 tahun\nSkor Relevansi: 0.8765\n---" +
		"\n" +
		"\n[Dokumen 2]\nSumber: rs.pdf\nID Proyek: 2\nKonten: Tipe B\nSkor Relevansi: N/A\n---" +
		"\n\nPERTANYAAN PENGGUNA: Berapa lama konsesi?\n" +
		"\n" +
		"INSTRUKSI JAWABAN:\n" +
		"1. Berikan jawaban yang berdasarkan pada dokumen yang disediakan\n" +
		"2. Jika informasi tidak tersedia dalam dokumen, nyatakan dengan jelas\n" +
		"3. Sertakan referensi ke dokumen yang relevan jika memungkinkan\n" +
		"4. Gunakan bahasa Indonesia yang profesional dan mudah dipahami\n" +
		"5. Struktur jawaban dengan jelas menggunakan poin-poin jika diperlukan\n" +
		"\n" +
		"JAWABAN:"

	assert.Equal(t, want, got)
}

func TestBuildPrompt_PreservesRetrievalOrder(t *testing.T) {
	chunks := []model.RetrievedChunk{
		chunk("c.pdf", "3", "third", score(0.1)),
		chunk("a.pdf", "1", "first", score(0.9)),
	}

	got := BuildPrompt("q", chunks)

	assert.Less(t, strings.Index(got, "Sumber: c.pdf"), strings.Index(got, "Sumber: a.pdf"))
	assert.Contains(t, got, "[Dokumen 1]\nSumber: c.pdf")
	assert.Contains(t, got, "[Dokumen 2]\nSumber: a.pdf")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	chunks := []model.RetrievedChunk{chunk("a", "1", "x", score(0.5))}
	assert.Equal(t, BuildPrompt("q", chunks), BuildPrompt("q", chunks))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "N/A", formatScore(nil))
	assert.Equal(t, "0.0000", formatScore(score(0)))
	assert.Equal(t, "1.2346", formatScore(score(1.23456)))
}
