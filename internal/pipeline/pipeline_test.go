// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/provider"
	"github.com/jeranaias/posyandu-tui/internal/storage"
)

// =============================================================================
// FAKE PROVIDERS
// =============================================================================

type fakeText struct {
	reply    string
	err      error
	gotCalls [][]provider.ChatMessage
}

func (f *fakeText) Chat(_ context.Context, messages []provider.ChatMessage) (string, error) {
	f.gotCalls = append(f.gotCalls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeVision struct {
	reply      string
	err        error
	gotPrompts []string
	gotImages  [][]model.ImageAttachment
}

func (f *fakeVision) Analyze(_ context.Context, promptText string, images []model.ImageAttachment) (string, error) {
	f.gotPrompts = append(f.gotPrompts, promptText)
	f.gotImages = append(f.gotImages, images)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestPipeline(t *testing.T, text provider.TextCompleter, vision provider.VisionAnalyzer) (*Pipeline, *storage.SessionStore) {
	t.Helper()
	kv, err := storage.OpenKV(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	store, err := storage.NewSessionStore(kv, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return New(store, text, vision, nil), store
}

// =============================================================================
// SEND VALIDATION
// =============================================================================

func TestSendRejectsEmptyInput(t *testing.T) {
	text := &fakeText{reply: "jawaban"}
	p, store := newTestPipeline(t, text, &fakeVision{})
	before := store.Current().TurnCount()

	for _, input := range []string{"", "   ", "\n\t "} {
		_, err := p.Send(context.Background(), input, nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("input %q: err = %v, want ErrEmptyInput", input, err)
		}
	}

	if store.Current().TurnCount() != before {
		t.Error("rejected send must not append turns")
	}
	if len(text.gotCalls) != 0 {
		t.Error("rejected send must not call the provider")
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
}

func TestSendSuccessAppendsBothTurns(t *testing.T) {
	text := &fakeText{reply: "## Jadwal Imunisasi\n\nBerikut jadwalnya..."}
	p, store := newTestPipeline(t, text, &fakeVision{})

	res, err := p.Send(context.Background(), "Kapan imunisasi campak?", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res.Failed {
		t.Error("result should not be marked failed")
	}

	sess := store.Current()
	// greeting + user + assistant
	if sess.TurnCount() != 3 {
		t.Fatalf("turn count = %d, want 3", sess.TurnCount())
	}
	if sess.Messages[1].Role != model.RoleUser || sess.Messages[1].Content != "Kapan imunisasi campak?" {
		t.Errorf("user turn = %+v", sess.Messages[1])
	}
	if sess.Messages[2].Role != model.RoleAssistant || sess.Messages[2].Content != text.reply {
		t.Errorf("assistant turn = %+v", sess.Messages[2])
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle after cycle", p.State())
	}
}

func TestTextHistoryReconstruction(t *testing.T) {
	text := &fakeText{reply: "jawaban"}
	p, store := newTestPipeline(t, text, &fakeVision{reply: "analisis gambar"})
	sess := store.Current()

	// Seed an earlier image-bearing exchange.
	img := model.NewImageAttachment("kms.png", []byte{1, 2}, "image/png")
	_, err := p.Send(context.Background(), "lihat KMS ini", []model.ImageAttachment{img})
	if err != nil {
		t.Fatalf("vision send failed: %v", err)
	}

	if _, err := p.Send(context.Background(), "lanjut pertanyaan teks", nil); err != nil {
		t.Fatalf("text send failed: %v", err)
	}

	if len(text.gotCalls) != 1 {
		t.Fatalf("text provider called %d times, want 1", len(text.gotCalls))
	}
	messages := text.gotCalls[0]

	if messages[0].Role != "system" {
		t.Fatal("first message must be the system turn")
	}
	for _, m := range messages {
		if strings.Contains(m.Content, "lihat KMS ini") {
			t.Error("image-bearing turn must be excluded from reconstructed history, not stripped")
		}
	}
	// Greeting, vision answer, and the new user turn survive.
	var haveGreeting, haveNewUser bool
	for _, m := range messages[1:] {
		if m.Content == sess.Messages[0].Content {
			haveGreeting = true
		}
		if m.Content == "lanjut pertanyaan teks" {
			haveNewUser = true
		}
	}
	if !haveGreeting || !haveNewUser {
		t.Errorf("reconstructed history incomplete: %+v", messages)
	}
}

// =============================================================================
// VISION DISPATCH
// =============================================================================

func TestVisionDispatchOnAttachment(t *testing.T) {
	text := &fakeText{reply: "tidak dipakai"}
	vision := &fakeVision{reply: "Ini hasil analisisnya. [IMAGE:0]"}
	p, store := newTestPipeline(t, text, vision)

	img := model.NewImageAttachment("foto.jpg", []byte{9}, "")
	res, err := p.Send(context.Background(), "tolong cek ruam ini", []model.ImageAttachment{img})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(text.gotCalls) != 0 {
		t.Error("attachment must route to the vision provider, not text")
	}
	if len(vision.gotPrompts) != 1 {
		t.Fatalf("vision called %d times, want 1", len(vision.gotPrompts))
	}
	if !strings.Contains(vision.gotPrompts[0], "Pertanyaan user: tolong cek ruam ini") {
		t.Error("vision prompt missing user question")
	}
	if !strings.Contains(vision.gotPrompts[0], "[IMAGE:n]") {
		t.Error("vision prompt missing image addendum")
	}
	if res.Turn.Content != vision.reply {
		t.Errorf("assistant content = %q", res.Turn.Content)
	}
	if !store.Current().Messages[1].HasImages() {
		t.Error("persisted user turn should carry the attachment")
	}
}

func TestVisionDefaultQuestionOnEmptyText(t *testing.T) {
	vision := &fakeVision{reply: "oke"}
	p, _ := newTestPipeline(t, &fakeText{}, vision)

	img := model.NewImageAttachment("foto.jpg", []byte{9}, "")
	if _, err := p.Send(context.Background(), "", []model.ImageAttachment{img}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !strings.Contains(vision.gotPrompts[0], "Pertanyaan user: "+prompt.DefaultVisionQuestion) {
		t.Errorf("empty text should substitute the default question, got %q", vision.gotPrompts[0])
	}
}

// =============================================================================
// FAILURE HANDLING
// =============================================================================

func TestProviderFailureLandsInTranscript(t *testing.T) {
	text := &fakeText{err: provider.ErrAuthFailed}
	p, store := newTestPipeline(t, text, &fakeVision{})

	res, err := p.Send(context.Background(), "halo", nil)
	if err != nil {
		t.Fatalf("provider failure must not escape the pipeline: %v", err)
	}
	if !res.Failed {
		t.Error("result should be marked failed")
	}
	if res.Turn.Content != provider.MsgInvalidKey {
		t.Errorf("error turn = %q, want invalid-key message", res.Turn.Content)
	}

	sess := store.Current()
	if sess.TurnCount() != 3 {
		t.Fatalf("turn count = %d; optimistic user turn must survive failure", sess.TurnCount())
	}
	if sess.Messages[1].Content != "halo" {
		t.Error("user turn missing after failure")
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle after failure", p.State())
	}
}

func TestCredentialVersusBalanceMessages(t *testing.T) {
	p401, store401 := newTestPipeline(t, &fakeText{err: provider.ErrAuthFailed}, &fakeVision{})
	p402, store402 := newTestPipeline(t, &fakeText{err: provider.ErrInsufficientCredits}, &fakeVision{})

	p401.Send(context.Background(), "halo", nil)
	p402.Send(context.Background(), "halo", nil)

	msg401 := store401.Current().LastTurn().Content
	msg402 := store402.Current().LastTurn().Content
	if msg401 != provider.MsgInvalidKey {
		t.Errorf("401 message = %q", msg401)
	}
	if msg402 != provider.MsgInsufficientCredits {
		t.Errorf("402 message = %q", msg402)
	}
	if msg401 == msg402 {
		t.Error("401 and 402 must surface distinct literal strings")
	}
}

// =============================================================================
// CATEGORY
// =============================================================================

func TestCategoryAttachesSuggestedQuestions(t *testing.T) {
	text := &fakeText{reply: "jawaban gizi"}
	p, _ := newTestPipeline(t, text, &fakeVision{})
	cat := prompt.CategoryByID("gizi")
	p.SetCategory(cat)

	res, err := p.Send(context.Background(), "menu MPASI?", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(res.Turn.CategoryQuestions) != len(cat.SuggestedQuestions) {
		t.Errorf("assistant turn carries %d suggested questions, want %d",
			len(res.Turn.CategoryQuestions), len(cat.SuggestedQuestions))
	}
	// The system turn gains the category elaboration.
	if !strings.Contains(text.gotCalls[0][0].Content, "FOKUS KONSULTASI SAAT INI") {
		t.Error("system turn missing category elaboration")
	}
}

func TestNoCategoryNoSuggestedQuestions(t *testing.T) {
	text := &fakeText{reply: "jawaban"}
	p, _ := newTestPipeline(t, text, &fakeVision{})

	res, _ := p.Send(context.Background(), "halo", nil)
	if res.Turn.CategoryQuestions != nil {
		t.Error("no category active, assistant turn must not carry questions")
	}
}

// =============================================================================
// RETRY
// =============================================================================

func TestRetryTruncatesAndReplays(t *testing.T) {
	text := &fakeText{err: provider.ErrRateLimited}
	p, store := newTestPipeline(t, text, &fakeVision{})

	// First send fails: [greeting, user:"Halo", assistant:<error>].
	p.Send(context.Background(), "Halo", nil)
	sess := store.Current()
	if sess.TurnCount() != 3 {
		t.Fatalf("setup: turn count = %d", sess.TurnCount())
	}
	failedContent := sess.Messages[2].Content

	// Second attempt succeeds.
	text.err = nil
	text.reply = "Halo juga! Ada yang bisa dibantu?"

	res, err := p.Retry(context.Background(), 2)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	sess = store.Current()
	if sess.TurnCount() != 3 {
		t.Fatalf("turn count = %d after retry, want 3", sess.TurnCount())
	}
	if sess.Messages[1].Content != "Halo" {
		t.Error("user turn must survive retry")
	}
	if sess.Messages[2].Content != text.reply || sess.Messages[2].Content == failedContent {
		t.Errorf("failed assistant turn not replaced: %q", sess.Messages[2].Content)
	}
	if res.Turn.ID == "" || res.Failed {
		t.Error("retry result should be the fresh assistant turn")
	}

	// The replayed call's history must exclude the failed assistant turn.
	replayMessages := text.gotCalls[len(text.gotCalls)-1]
	for _, m := range replayMessages {
		if m.Content == failedContent {
			t.Error("reconstructed history must exclude the failed assistant turn")
		}
	}
}

func TestRetryWithImagesReplaysAttachments(t *testing.T) {
	vision := &fakeVision{err: provider.ErrQuotaExhausted}
	p, store := newTestPipeline(t, &fakeText{}, vision)

	img := model.NewImageAttachment("foto.png", []byte{1}, "image/png")
	p.Send(context.Background(), "cek ini", []model.ImageAttachment{img})

	vision.err = nil
	vision.reply = "hasil analisis"
	if _, err := p.Retry(context.Background(), 2); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	if len(vision.gotImages) != 2 {
		t.Fatalf("vision called %d times, want 2", len(vision.gotImages))
	}
	if len(vision.gotImages[1]) != 1 || vision.gotImages[1][0].Name != "foto.png" {
		t.Error("retry must replay the original attachments")
	}
	if store.Current().LastTurn().Content != "hasil analisis" {
		t.Errorf("last turn = %q", store.Current().LastTurn().Content)
	}
}

func TestRetryNoPrecedingUserTurnIsNoOp(t *testing.T) {
	p, store := newTestPipeline(t, &fakeText{reply: "x"}, &fakeVision{})
	sess := store.Current()
	// History is only [greeting]; index 0 has no preceding user turn.
	store.AppendTurn(sess.ID, model.NewAssistantTurn("jawaban nyasar"))

	res, err := p.Retry(context.Background(), 1)
	if err != nil {
		t.Fatalf("Retry errored: %v", err)
	}
	if res != nil {
		t.Error("retry with no preceding user turn must be a no-op")
	}
	if store.Current().TurnCount() != 2 {
		t.Error("no-op retry must not mutate history")
	}
	if p.State() != StateIdle {
		t.Errorf("state after no-op retry = %v, want StateIdle", p.State())
	}
}

func TestRetryOutOfRangeIsNoOp(t *testing.T) {
	p, store := newTestPipeline(t, &fakeText{reply: "x"}, &fakeVision{})
	before := store.Current().TurnCount()

	for _, idx := range []int{-1, 0, 99} {
		res, err := p.Retry(context.Background(), idx)
		if err != nil || res != nil {
			t.Errorf("index %d: res=%v err=%v, want no-op", idx, res, err)
		}
	}
	if store.Current().TurnCount() != before {
		t.Error("out-of-range retry mutated history")
	}
	if p.State() != StateIdle {
		t.Errorf("state after out-of-range retry = %v, want StateIdle", p.State())
	}
}

// =============================================================================
// RETRY AFFORDANCE
// =============================================================================

func TestLooksRetryable(t *testing.T) {
	cases := []struct {
		name string
		turn *model.Turn
		want bool
	}{
		{"nil", nil, false},
		{"user turn", model.NewUserTurn("⚠️ bukan asisten", nil), false},
		{"error marker", model.NewAssistantTurn(provider.MsgInvalidKey), true},
		{"generic apology", model.NewAssistantTurn(provider.MsgGenericError), true},
		{"too short", model.NewAssistantTurn("ok"), true},
		{"healthy answer", model.NewAssistantTurn("Berikut jadwal imunisasi lengkap untuk bayi Anda."), false},
	}
	for _, tc := range cases {
		if got := LooksRetryable(tc.turn); got != tc.want {
			t.Errorf("%s: LooksRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// =============================================================================
// SUBMITTING EXCLUSIVITY
// =============================================================================

// blockingText parks inside the provider call until released, so tests
// can assert what happens while a call is in flight.
type blockingText struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newBlockingText() *blockingText {
	return &blockingText{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingText) Chat(_ context.Context, _ []provider.ChatMessage) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return "jawaban tertunda", nil
}

func (b *blockingText) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestSendWhileInFlightReturnsBusy(t *testing.T) {
	text := newBlockingText()
	p, store := newTestPipeline(t, text, &fakeVision{})

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Send(context.Background(), "Halo", nil)
		firstErr <- err
	}()
	<-text.entered

	if _, err := p.Send(context.Background(), "Kedua", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("second Send err = %v, want ErrBusy", err)
	}
	if _, err := p.Retry(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Errorf("Retry while busy err = %v, want ErrBusy", err)
	}
	// Greeting plus the in-flight user turn; rejections append nothing.
	if got := store.Current().TurnCount(); got != 2 {
		t.Errorf("turn count during in-flight call = %d, want 2", got)
	}

	close(text.release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first Send errored: %v", err)
	}
	if got := store.Current().TurnCount(); got != 3 {
		t.Errorf("turn count after completion = %d, want 3", got)
	}
	if p.State() != StateIdle {
		t.Errorf("state after completion = %v, want StateIdle", p.State())
	}
}

func TestConcurrentRetriesDispatchOnce(t *testing.T) {
	text := newBlockingText()
	p, store := newTestPipeline(t, text, &fakeVision{})
	sess := store.Current()
	if err := store.AppendTurn(sess.ID, model.NewUserTurn("Halo", nil)); err != nil {
		t.Fatalf("seed user turn: %v", err)
	}
	if err := store.AppendTurn(sess.ID, model.NewAssistantTurn(provider.MsgGenericError)); err != nil {
		t.Fatalf("seed failed turn: %v", err)
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Retry(context.Background(), 2)
		firstErr <- err
	}()
	<-text.entered

	// The slot is claimed with the busy check, so the overlapping
	// retry is rejected before it can truncate or dispatch.
	if _, err := p.Retry(context.Background(), 2); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping Retry err = %v, want ErrBusy", err)
	}

	close(text.release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first Retry errored: %v", err)
	}

	if got := text.callCount(); got != 1 {
		t.Errorf("provider calls = %d, want exactly 1", got)
	}
	// Greeting, replayed user turn, fresh answer.
	if got := store.Current().TurnCount(); got != 3 {
		t.Errorf("turn count after retry = %d, want 3", got)
	}
	if got := store.Current().Messages[2].Content; got != "jawaban tertunda" {
		t.Errorf("final answer = %q, want the retried reply", got)
	}
	if p.State() != StateIdle {
		t.Errorf("state after retry = %v, want StateIdle", p.State())
	}
}
