// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt derives the system instruction text sent to the
// language-model providers. Build is a pure function: identical inputs
// always yield the identical instruction string.
package prompt

import (
	"strings"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

// DefaultVisionQuestion substitutes for the user's text on the vision
// path when an attachment is sent without any accompanying question.
const DefaultVisionQuestion = "Tolong analisis gambar ini"

// =============================================================================
// PROMPT FRAGMENTS
// =============================================================================

const preamble = `Anda adalah asisten AI untuk Posyandu Menur yang ramah, profesional, dan berpengetahuan luas tentang kesehatan. Fokus utama Anda adalah:

1. Kesehatan Ibu dan Anak (KIA)
2. Imunisasi dan jadwal vaksinasi
3. Gizi dan nutrisi balita
4. Tumbuh kembang anak
5. Kesehatan ibu hamil dan menyusui
6. Keluarga berencana (KB)
7. Pemeriksaan kesehatan rutin
8. Pencegahan penyakit`

const genericFocus = `Jawab pertanyaan seputar layanan posyandu dan kesehatan keluarga secara umum. Jika pertanyaan di luar topik kesehatan, arahkan kembali dengan sopan ke topik layanan posyandu.`

// Operational facts the model must relay verbatim when the user asks
// about schedule or contact details.
const operationalFacts = `INFORMASI LAYANAN (sampaikan persis seperti tertulis bila relevan):
- Jadwal Posyandu Menur: setiap Rabu minggu ke-2, pukul 08.00-11.00 WIB, di Balai RW 05 Kelurahan Menur Pumpungan.
- Kontak kader: Ibu Sri Wahyuni (0812-3456-7890).
- Bidan pendamping: Bu Bidan Ratna, Puskesmas Menur (031-594-1234).`

const markdownDirectives = `PENTING - FORMAT JAWABAN:
- Gunakan format Markdown untuk struktur yang jelas
- Gunakan **bold** untuk poin penting
- Gunakan heading (##) untuk topik utama
- Satu item list per baris, jangan gabungkan beberapa item dalam satu baris
- Pisahkan paragraf dengan jelas
- Buat jawaban yang mudah di-scan dan dibaca
- Hindari paragraf panjang, pecah menjadi poin-poin`

// imageAddendum instructs the model to mark attachment placement with
// positional markers instead of emitting image URLs. Indices are
// zero-based into the turn's image sequence.
const imageAddendum = `GAMBAR TERLAMPIR:
Analisis setiap gambar dengan detail dan berikan informasi medis yang relevan.
Tandai posisi gambar dalam jawaban dengan penanda [IMAGE:n], di mana n adalah indeks gambar mulai dari 0 (gambar pertama = [IMAGE:0]).
Jangan menuliskan URL gambar.`

const closing = `Berikan jawaban yang:
- Mudah dipahami dan ramah
- Berbasis informasi medis yang akurat
- Empati dan mendukung
- Menyarankan konsultasi langsung dengan tenaga medis untuk kasus serius
- Menggunakan bahasa Indonesia yang baik

Selalu ingatkan bahwa informasi yang diberikan bersifat edukatif dan tidak menggantikan konsultasi medis langsung.`

// =============================================================================
// BUILDER
// =============================================================================

// Build assembles the system instruction for one provider call. A nil
// category yields the generic elaboration; hasImages appends the
// image-placement addendum.
func Build(category *model.Category, hasImages bool) string {
	parts := []string{preamble}

	if category != nil && category.Focus != "" {
		parts = append(parts, "FOKUS KONSULTASI SAAT INI: "+category.Name+"\n"+category.Focus)
	} else {
		parts = append(parts, genericFocus)
	}

	parts = append(parts, operationalFacts, markdownDirectives)

	if hasImages {
		parts = append(parts, imageAddendum)
	}

	parts = append(parts, closing)
	return strings.Join(parts, "\n\n")
}

// VisionPrompt combines the system instruction with the user's
// question for the single-string vision call. Empty text falls back to
// DefaultVisionQuestion.
func VisionPrompt(category *model.Category, userText string) string {
	question := strings.TrimSpace(userText)
	if question == "" {
		question = DefaultVisionQuestion
	}
	return Build(category, true) + "\n\nPertanyaan user: " + question
}
