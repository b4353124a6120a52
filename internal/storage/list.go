// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// =============================================================================
// SESSION GROUPING
// =============================================================================

// Group labels for the session list, ordered from newest to oldest.
const (
	GroupToday     = "Hari Ini"
	GroupYesterday = "Kemarin"
	GroupLastWeek  = "7 Hari Terakhir"
	GroupOlder     = "Lebih Lama"
)

// GroupLabel buckets a session timestamp into a relative-time label.
// Buckets follow local calendar days, not rolling 24h windows.
func GroupLabel(t, now time.Time) string {
	startOfDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	nowDay := startOfDay(now)
	day := startOfDay(t.In(now.Location()))

	switch {
	case day.Equal(nowDay):
		return GroupToday
	case day.Equal(nowDay.AddDate(0, 0, -1)):
		return GroupYesterday
	case day.After(nowDay.AddDate(0, 0, -7)):
		return GroupLastWeek
	default:
		return GroupOlder
	}
}

// GroupSessions buckets sessions into relative-time groups, preserving
// the most-recent-first order inside each group. Empty groups are
// omitted from the returned label list.
func GroupSessions(sessions []*model.Session, now time.Time) ([]string, map[string][]*model.Session) {
	groups := make(map[string][]*model.Session)
	for _, sess := range sessions {
		label := GroupLabel(sess.UpdatedAt, now)
		groups[label] = append(groups[label], sess)
	}

	var labels []string
	for _, label := range []string{GroupToday, GroupYesterday, GroupLastWeek, GroupOlder} {
		if len(groups[label]) > 0 {
			labels = append(labels, label)
		}
	}
	return labels, groups
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList renders the session list grouped by recency, for
// the `sessions list` command.
func FormatSessionList(sessions []*model.Session, now time.Time) string {
	if len(sessions) == 0 {
		return "Belum ada riwayat obrolan."
	}

	var sb strings.Builder
	labels, groups := GroupSessions(sessions, now)
	for _, label := range labels {
		sb.WriteString(label + "\n")
		sb.WriteString("-----------------------------------------------------\n")
		for _, sess := range groups[label] {
			idStr := sess.ID
			if len(idStr) > 8 {
				idStr = idStr[:8]
			}
			sb.WriteString(util.PadRight(idStr, 10) +
				util.PadRight(sess.UpdatedAt.Format("2006-01-02 15:04"), 18) +
				util.TruncateRunes(sess.Title, 50) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// SESSION EXPORT
// =============================================================================

// ExportMarkdown exports a session as a Markdown formatted string.
// Includes session metadata, timestamps, and all turns with role
// labels. Image-bearing turns note their attachment count.
func ExportMarkdown(sess *model.Session) string {
	var sb strings.Builder
	sb.WriteString("# " + sess.Title + "\n\n")
	sb.WriteString("Dibuat: " + sess.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, turn := range sess.Messages {
		role := "**" + turn.Role.DisplayName() + "**"
		sb.WriteString(role + " (" + turn.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(turn.Content)
		if turn.HasImages() {
			sb.WriteString("\n\n")
			for i, img := range turn.Images {
				sb.WriteString("[Gambar " + strconv.Itoa(i+1) + ": " + img.Name + "]\n")
			}
		}
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// ExportJSON exports a session as a pretty-printed JSON byte array.
func ExportJSON(sess *model.Session) ([]byte, error) {
	return json.MarshalIndent(sess, "", "  ")
}
