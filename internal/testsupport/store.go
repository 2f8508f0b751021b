package testsupport

import (
	"context"
	"testing"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewItem creates a draft content item for tests.
func NewItem(t testing.TB, st *store.Store, topic string) *content.Item {
	t.Helper()

	item, err := st.CreateItem(context.Background(), topic, "engineering", "", content.TypeProblem)
	if err != nil {
		t.Fatalf("store.CreateItem: %v", err)
	}
	return item
}

// NewReadyItem creates an item already advanced to ready with a script
// and diagram artifact, the state the publish subsystem operates on.
func NewReadyItem(t testing.TB, st *store.Store, topic string) *content.Item {
	t.Helper()

	item := NewItem(t, st, topic)
	ctx := context.Background()

	item, err := st.TransitionItem(ctx, item.ID, content.StatusDraft, content.StatusGenerating, nil)
	if err != nil {
		t.Fatalf("transition to generating: %v", err)
	}

	script := &content.Script{
		Type:               "problem",
		HookText:           "Can you solve this?",
		DiagramDescription: "Simply supported beam, 8m, 20 kN center load.",
		AnswerOptions:      []string{"A: 10 kN", "B: 20 kN", "C: 5 kN", "D: 40 kN"},
		CorrectAnswer:      "A",
		TweetText:          "quick statics problem. go.",
	}
	encoded, err := script.Encode()
	if err != nil {
		t.Fatalf("encode script: %v", err)
	}

	item, err = st.TransitionItem(ctx, item.ID, content.StatusGenerating, content.StatusReady, func(it *content.Item) {
		it.ScriptJSON = encoded
		it.DiagramPath = "/tmp/diagram.png"
	})
	if err != nil {
		t.Fatalf("transition to ready: %v", err)
	}
	return item
}
