// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	store, err := NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}
	return store
}

func TestFreshStoreHasOneSession(t *testing.T) {
	store := newTestStore(t)

	if store.Count() != 1 {
		t.Fatalf("fresh store has %d sessions, want 1", store.Count())
	}
	cur := store.Current()
	if cur == nil {
		t.Fatal("fresh store has no active session")
	}
	if cur.Title != model.DefaultTitle {
		t.Errorf("title = %q, want %q", cur.Title, model.DefaultTitle)
	}
	if cur.TurnCount() != 1 || cur.Messages[0].Role != model.RoleAssistant {
		t.Error("fresh session should open with the assistant greeting")
	}
}

func TestCreateSessionBecomesActive(t *testing.T) {
	store := newTestStore(t)
	first := store.Current()

	sess, err := store.CreateSession("")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if store.Current().ID != sess.ID {
		t.Error("new session should become active")
	}
	if store.Count() != 2 {
		t.Errorf("count = %d, want 2", store.Count())
	}
	if first.ID == sess.ID {
		t.Error("sessions must have distinct IDs")
	}
}

func TestSwitchSession(t *testing.T) {
	store := newTestStore(t)
	first := store.Current()
	store.CreateSession("")

	if err := store.SwitchSession(first.ID); err != nil {
		t.Fatalf("SwitchSession failed: %v", err)
	}
	if store.Current().ID != first.ID {
		t.Error("active pointer did not move")
	}

	if err := store.SwitchSession("no-such-id"); err == nil {
		t.Error("expected error switching to unknown session")
	}
}

func TestDeleteNeverLeavesZeroSessions(t *testing.T) {
	store := newTestStore(t)
	only := store.Current()

	if err := store.DeleteSession(only.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if store.Count() != 1 {
		t.Fatalf("count = %d, want 1 after deleting last session", store.Count())
	}
	if store.Current() == nil {
		t.Fatal("active session missing after delete")
	}
	if store.Current().ID == only.ID {
		t.Error("replacement session should be fresh, not the deleted one")
	}
}

func TestDeleteActiveRepointsToMostRecent(t *testing.T) {
	store := newTestStore(t)
	old := store.Current()
	time.Sleep(2 * time.Millisecond)
	mid, _ := store.CreateSession("")
	time.Sleep(2 * time.Millisecond)
	active, _ := store.CreateSession("")

	if err := store.DeleteSession(active.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if store.Current().ID != mid.ID {
		t.Errorf("active = %s, want most recent survivor %s", store.Current().ID, mid.ID)
	}

	// Deleting a non-active session leaves the pointer alone.
	if err := store.DeleteSession(old.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if store.Current().ID != mid.ID {
		t.Error("deleting inactive session moved the active pointer")
	}
}

func TestUpdateMessagesDerivesTitle(t *testing.T) {
	store := newTestStore(t)
	sess := store.Current()

	turns := append(sess.Messages, model.NewUserTurn("Jadwal imunisasi polio kapan ya?", nil))
	if err := store.UpdateMessages(sess.ID, turns); err != nil {
		t.Fatalf("UpdateMessages failed: %v", err)
	}
	if sess.Title != "Jadwal imunisasi polio kapan ya?" {
		t.Errorf("title = %q", sess.Title)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	kv, err := OpenKV(path)
	if err != nil {
		t.Fatalf("failed to open kv: %v", err)
	}
	store, err := NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	sess := store.Current()
	store.AppendTurn(sess.ID, model.NewUserTurn("halo bu bidan", nil))
	kv.Close()

	kv2, err := OpenKV(path)
	if err != nil {
		t.Fatalf("failed to reopen kv: %v", err)
	}
	defer kv2.Close()
	store2, err := NewSessionStore(kv2, nil)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	cur := store2.Current()
	if cur.ID != sess.ID {
		t.Errorf("active session = %s, want %s", cur.ID, sess.ID)
	}
	if cur.TurnCount() != 2 {
		t.Errorf("turn count = %d, want 2", cur.TurnCount())
	}
	if cur.Title != "halo bu bidan" {
		t.Errorf("title = %q", cur.Title)
	}
}

func TestCorruptBlobStartsFresh(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open kv: %v", err)
	}
	defer kv.Close()

	if err := kv.Set(HistoryKey, []byte("{not valid json")); err != nil {
		t.Fatalf("failed to seed corrupt blob: %v", err)
	}

	store, err := NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("corrupt blob should not fail store creation: %v", err)
	}
	if store.Count() != 1 || store.Current() == nil {
		t.Error("corrupt blob should yield a fresh single-session store")
	}
}

func TestDanglingActivePointerRepaired(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open kv: %v", err)
	}
	defer kv.Close()

	blob := `{"sessions":[{"id":"abc","title":"Obrolan Baru","messages":[],"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}],"current_id":"ghost"}`
	if err := kv.Set(HistoryKey, []byte(blob)); err != nil {
		t.Fatalf("failed to seed blob: %v", err)
	}

	store, err := NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("store creation failed: %v", err)
	}
	if store.Current() == nil || store.Current().ID != "abc" {
		t.Error("dangling pointer should be repaired to an existing session")
	}
}

func TestSessionsMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	oldest := store.Current()
	time.Sleep(2 * time.Millisecond)
	store.CreateSession("")
	time.Sleep(2 * time.Millisecond)
	newest, _ := store.CreateSession("")

	sessions := store.Sessions()
	if sessions[0].ID != newest.ID {
		t.Errorf("first session = %s, want newest %s", sessions[0].ID, newest.ID)
	}
	if sessions[len(sessions)-1].ID != oldest.ID {
		t.Error("oldest session should sort last")
	}

	// Touching the oldest session bubbles it to the top.
	time.Sleep(2 * time.Millisecond)
	store.AppendTurn(oldest.ID, model.NewUserTurn("halo", nil))
	if store.Sessions()[0].ID != oldest.ID {
		t.Error("updated session should sort first")
	}
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)
	sess := store.Current()
	store.AppendTurn(sess.ID, model.NewUserTurn("Berapa dosis vitamin A untuk balita?", nil))
	store.CreateSession("")

	matches := store.Search("vitamin a")
	if len(matches) != 1 || matches[0].ID != sess.ID {
		t.Errorf("search matched %d sessions, want the one mentioning vitamin A", len(matches))
	}
	if got := len(store.Search("")); got != store.Count() {
		t.Errorf("empty query matched %d, want all %d", got, store.Count())
	}
	if got := len(store.Search("zzz-tidak-ada")); got != 0 {
		t.Errorf("bogus query matched %d sessions", got)
	}
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t)
	store.CreateSession("")
	store.CreateSession("")

	fresh, err := store.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("count = %d after clear, want 1", store.Count())
	}
	if store.Current().ID != fresh.ID {
		t.Error("fresh session should be active after clear")
	}
}

func TestGroupLabel(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)

	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-1 * time.Hour), GroupToday},
		{now.AddDate(0, 0, -1), GroupYesterday},
		{now.AddDate(0, 0, -3), GroupLastWeek},
		{now.AddDate(0, 0, -30), GroupOlder},
	}
	for _, tc := range cases {
		if got := GroupLabel(tc.t, now); got != tc.want {
			t.Errorf("GroupLabel(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestExportMarkdown(t *testing.T) {
	sess := model.NewSession("")
	sess.AppendTurn(model.NewUserTurn("Apa itu MPASI?", nil))
	sess.AppendTurn(model.NewAssistantTurn("MPASI adalah makanan pendamping ASI."))

	md := ExportMarkdown(sess)
	if !strings.Contains(md, "# "+sess.Title) {
		t.Error("export missing title heading")
	}
	if !strings.Contains(md, "**Anda**") || !strings.Contains(md, "**Asisten**") {
		t.Error("export missing role labels")
	}
	if !strings.Contains(md, "Apa itu MPASI?") {
		t.Error("export missing turn content")
	}
}

func TestFindByPrefix(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	// Seed ids with a shared prefix so ambiguity is deterministic.
	a := model.NewSession("")
	a.ID = "abcd1111-0000-0000-0000-000000000000"
	b := model.NewSession("")
	b.ID = "abcd2222-0000-0000-0000-000000000000"
	data, err := json.Marshal(historyBlob{Sessions: []*model.Session{a, b}, CurrentID: a.ID})
	if err != nil {
		t.Fatalf("failed to encode blob: %v", err)
	}
	if err := kv.Set(HistoryKey, data); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	store, err := NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}

	if got, err := store.FindByPrefix(a.ID); err != nil || got.ID != a.ID {
		t.Errorf("full id lookup = %v, %v", got, err)
	}
	// The shortened id the list command prints must resolve.
	if got, err := store.FindByPrefix("abcd1111"); err != nil || got.ID != a.ID {
		t.Errorf("prefix lookup = %v, %v", got, err)
	}
	if _, err := store.FindByPrefix("abcd"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("ambiguous prefix err = %v, want ErrAmbiguousID", err)
	}
	if _, err := store.FindByPrefix("zzzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown prefix err = %v, want ErrSessionNotFound", err)
	}
	if _, err := store.FindByPrefix(""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("empty prefix err = %v, want ErrSessionNotFound", err)
	}
}
