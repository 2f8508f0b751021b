package content_test

import (
	"testing"

	"edustream/internal/content"
)

func TestLegalTransitions(t *testing.T) {
	allowed := []struct{ from, to content.Status }{
		{content.StatusDraft, content.StatusGenerating},
		{content.StatusGenerating, content.StatusReady},
		{content.StatusGenerating, content.StatusFailed},
		{content.StatusReady, content.StatusQueued},
		{content.StatusReady, content.StatusPublished},
		{content.StatusQueued, content.StatusPublished},
		{content.StatusQueued, content.StatusFailed},
		{content.StatusFailed, content.StatusGenerating},
	}
	for _, edge := range allowed {
		if !content.CanTransition(edge.from, edge.to) {
			t.Errorf("expected %s -> %s to be legal", edge.from, edge.to)
		}
	}
}

func TestIllegalTransitions(t *testing.T) {
	rejected := []struct{ from, to content.Status }{
		{content.StatusDraft, content.StatusReady},
		{content.StatusDraft, content.StatusFailed},
		{content.StatusReady, content.StatusFailed},
		{content.StatusPublished, content.StatusReady},
		{content.StatusPublished, content.StatusFailed},
		{content.StatusGenerating, content.StatusQueued},
		{content.StatusFailed, content.StatusReady},
	}
	for _, edge := range rejected {
		if content.CanTransition(edge.from, edge.to) {
			t.Errorf("expected %s -> %s to be rejected", edge.from, edge.to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := content.ParseStatus("  Ready "); !ok || status != content.StatusReady {
		t.Fatalf("ParseStatus normalized = %q, %v", status, ok)
	}
	if _, ok := content.ParseStatus("archived"); ok {
		t.Fatal("unknown status accepted")
	}
}

func TestScriptRoundTripAndPlainText(t *testing.T) {
	script := &content.Script{
		Type:               "problem",
		HookText:           "Can you solve this beam problem?",
		DiagramDescription: "Simply supported beam, 8m, 20 kN center load.",
		ContentSteps: []content.Step{
			{Text: "Given: 8m beam with 20 kN center load", Highlight: "load"},
			{Text: "Find: reactions at A and B", Highlight: "reactions"},
		},
		AnswerOptions: []string{"A: 10 kN", "B: 20 kN", "C: 5 kN", "D: 40 kN"},
		CorrectAnswer: "A",
		TemplateID:    "beam_ss_center",
	}

	encoded, err := script.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := content.DecodeScript(encoded)
	if err != nil {
		t.Fatalf("DecodeScript failed: %v", err)
	}
	if decoded.CorrectAnswer != "A" || len(decoded.ContentSteps) != 2 {
		t.Fatalf("round trip lost data: %#v", decoded)
	}

	want := "Can you solve this beam problem? Given: 8m beam with 20 kN center load Find: reactions at A and B"
	if got := decoded.PlainText(); got != want {
		t.Fatalf("PlainText = %q, want %q", got, want)
	}
}

func TestScriptValidate(t *testing.T) {
	script := &content.Script{HookText: "hook"}
	if err := script.Validate(); err == nil {
		t.Fatal("expected missing diagram description to fail validation")
	}
	script.DiagramDescription = "a beam"
	if err := script.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}
