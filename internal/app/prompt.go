package app

import (
	"strconv"
	"strings"

	"kpbu-assistant/internal/model"
)

const unknownMetadata = "Unknown"

// NoContextAnswer is returned instead of a generated answer when retrieval finds nothing.
const NoContextAnswer = "Maaf, saya tidak dapat menemukan informasi yang relevan untuk pertanyaan Anda dalam dokumen yang tersedia."

const promptHeader = `
Anda adalah asisten AI yang ahli dalam proyek Kerjasama Pemerintah dan Badan Usaha (KPBU). 
Berdasarkan dokumen-dokumen yang relevan di bawah ini, berikan jawaban yang akurat dan komprehensif untuk pertanyaan pengguna.

KONTEKS DOKUMEN:
`

const promptInstructions = `

INSTRUKSI JAWABAN:
1. Berikan jawaban yang berdasarkan pada dokumen yang disediakan
2. Jika informasi tidak tersedia dalam dokumen, nyatakan dengan jelas
3. Sertakan referensi ke dokumen yang relevan jika memungkinkan
4. Gunakan bahasa Indonesia yang profesional dan mudah dipahami
5. Struktur jawaban dengan jelas menggunakan poin-poin jika diperlukan

JAWABAN:`

// BuildPrompt renders the grounded prompt. Chunks appear in the given order,
// numbered from 1.
func BuildPrompt(question string, chunks []model.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\n[Dokumen ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("]\nSumber: ")
		b.WriteString(orUnknown(c.Metadata.DocumentName))
		b.WriteString("\nID Proyek: ")
		b.WriteString(orUnknown(c.Metadata.ProjectID))
		b.WriteString("\nKonten: ")
		b.WriteString(c.Metadata.Text)
		b.WriteString("\nSkor Relevansi: ")
		b.WriteString(formatScore(c.Score))
		b.WriteString("\n---")
	}
	b.WriteString("\n\nPERTANYAAN PENGGUNA: ")
	b.WriteString(question)
	b.WriteString(promptInstructions)
	return b.String()
}

func formatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*score, 'f', 4, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownMetadata
	}
	return s
}
