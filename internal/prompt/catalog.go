// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import "github.com/jeranaias/posyandu-tui/internal/model"

// =============================================================================
// QUICK QUESTIONS
// =============================================================================

// QuickQuestions are the ready-made prompts offered on the welcome
// surface when no category is selected.
var QuickQuestions = []string{
	"📅 Jadwal imunisasi bayi",
	"🍼 Tips ASI eksklusif",
	"👶 Tumbuh kembang anak",
	"🤰 Kesehatan ibu hamil",
	"🥗 Menu MPASI",
	"💊 Vitamin untuk balita",
}

// =============================================================================
// CATEGORY CATALOG
// =============================================================================

var categories = []model.Category{
	{
		ID:       "imunisasi",
		Name:     "Imunisasi",
		Icon:     "💉",
		Greeting: "Halo! Saya siap membantu Anda seputar imunisasi dan jadwal vaksinasi. Silakan tanyakan jadwal, jenis vaksin, atau efek samping yang perlu diperhatikan. 😊",
		SuggestedQuestions: []string{
			"Kapan jadwal imunisasi campak?",
			"Apa efek samping imunisasi DPT?",
			"Imunisasi apa saja yang wajib untuk bayi baru lahir?",
		},
		Focus: "Utamakan jawaban seputar imunisasi: jadwal vaksinasi sesuai usia, jenis vaksin program pemerintah, efek samping yang wajar dan yang perlu diwaspadai, serta imunisasi kejar untuk anak yang terlambat.",
	},
	{
		ID:       "gizi",
		Name:     "Gizi Balita",
		Icon:     "🥗",
		Greeting: "Halo! Saya siap membantu Anda seputar gizi dan nutrisi balita. Silakan tanyakan menu MPASI, kebutuhan gizi harian, atau cara mengatasi anak susah makan. 😊",
		SuggestedQuestions: []string{
			"Menu MPASI untuk bayi 6 bulan?",
			"Bagaimana mengatasi anak susah makan?",
			"Apa tanda-tanda stunting pada balita?",
		},
		Focus: "Utamakan jawaban seputar gizi balita: MPASI sesuai usia, kebutuhan gizi harian, pencegahan stunting, dan pemantauan berat badan lewat KMS.",
	},
	{
		ID:       "ibu_hamil",
		Name:     "Ibu Hamil",
		Icon:     "🤰",
		Greeting: "Halo! Saya siap membantu Anda seputar kesehatan ibu hamil dan menyusui. Silakan tanyakan pemeriksaan kehamilan, nutrisi, atau keluhan selama hamil. 😊",
		SuggestedQuestions: []string{
			"Berapa kali pemeriksaan kehamilan ke posyandu?",
			"Makanan apa yang baik untuk ibu hamil?",
			"Apa tanda bahaya pada kehamilan?",
		},
		Focus: "Utamakan jawaban seputar kesehatan ibu hamil dan menyusui: jadwal pemeriksaan kehamilan, nutrisi dan tablet tambah darah, tanda bahaya kehamilan, dan persiapan persalinan.",
	},
	{
		ID:       "tumbuh_kembang",
		Name:     "Tumbuh Kembang",
		Icon:     "👶",
		Greeting: "Halo! Saya siap membantu Anda seputar tumbuh kembang anak. Silakan tanyakan milestone perkembangan, stimulasi, atau hasil penimbangan di posyandu. 😊",
		SuggestedQuestions: []string{
			"Kapan bayi mulai bisa duduk sendiri?",
			"Bagaimana stimulasi untuk bayi 3 bulan?",
			"Berat badan ideal anak usia 2 tahun?",
		},
		Focus: "Utamakan jawaban seputar tumbuh kembang anak: milestone perkembangan sesuai usia, stimulasi di rumah, interpretasi KMS, dan kapan perlu rujukan ke puskesmas.",
	},
}

// Categories returns the full category catalog.
func Categories() []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByID looks up a category by its stable identifier. Returns
// nil when the id is unknown or empty.
func CategoryByID(id string) *model.Category {
	for i := range categories {
		if categories[i].ID == id {
			c := categories[i]
			return &c
		}
	}
	return nil
}
