package scenario

import (
	"errors"
	"math/rand"
	"testing"

	"edustream/internal/services"
)

func seeded(t *testing.T) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewSource(42))
}

func fakePool(n int) []*Template {
	out := make([]*Template, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Template{
			ID:       string(rune('a' + i)),
			Category: "statics",
			Tags:     []string{"beam"},
			Format:   FormatQuiz,
		})
	}
	return out
}

func TestSelectExcludesRecentWithinWindow(t *testing.T) {
	window := 3
	s := NewSelector(window, WithRand(seeded(t)), WithTemplates(fakePool(2*window)))

	seen := make(map[string]bool)
	for i := 0; i < window; i++ {
		tmpl, err := s.Select(Filter{})
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if seen[tmpl.ID] {
			t.Fatalf("template %s repeated within window of %d", tmpl.ID, window)
		}
		seen[tmpl.ID] = true
	}
}

func TestSelectRelaxesWindowForTinyPool(t *testing.T) {
	s := NewSelector(5, WithRand(seeded(t)), WithTemplates(fakePool(1)))
	for i := 0; i < 10; i++ {
		if _, err := s.Select(Filter{}); err != nil {
			t.Fatalf("select %d on single-template pool: %v", i, err)
		}
	}
}

func TestSelectRotatesSmallPool(t *testing.T) {
	s := NewSelector(4, WithRand(seeded(t)), WithTemplates(fakePool(2)))
	counts := make(map[string]int)
	for i := 0; i < 8; i++ {
		tmpl, err := s.Select(Filter{})
		if err != nil {
			t.Fatal(err)
		}
		counts[tmpl.ID]++
	}
	if len(counts) != 2 {
		t.Fatalf("expected both templates used, got %v", counts)
	}
}

func TestSelectEmptyPoolForUnmatchedFilter(t *testing.T) {
	s := NewSelector(2, WithRand(seeded(t)))
	_, err := s.Select(Filter{Topic: "quantum chromodynamics"})
	if !errors.Is(err, services.ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSelectPrefersMatchingTags(t *testing.T) {
	s := NewSelector(0, WithRand(seeded(t)))
	for i := 0; i < 20; i++ {
		tmpl, err := s.Select(Filter{Topic: "cantilever beam moment"})
		if err != nil {
			t.Fatal(err)
		}
		if tmpl.ID != "beam_cantilever_end" {
			t.Fatalf("expected cantilever template for cantilever topic, got %s", tmpl.ID)
		}
	}
}

func TestGenerateProducesValidScript(t *testing.T) {
	s := NewSelector(2, WithRand(seeded(t)))
	for i := 0; i < 30; i++ {
		script, tmpl, err := s.Generate(Filter{})
		if err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
		if err := script.Validate(); err != nil {
			t.Fatalf("template %s produced invalid script: %v", tmpl.ID, err)
		}
		if script.TemplateID != tmpl.ID {
			t.Fatalf("script template id %q != %q", script.TemplateID, tmpl.ID)
		}
		if script.TweetText == "" {
			t.Fatalf("template %s produced empty tweet text", tmpl.ID)
		}
	}
}

func TestGenerateCorrectAnswerPointsAtOption(t *testing.T) {
	s := NewSelector(0, WithRand(seeded(t)))
	for i := 0; i < 20; i++ {
		script, tmpl, err := s.Generate(Filter{Topic: "beam reaction simply supported"})
		if err != nil {
			t.Fatal(err)
		}
		if tmpl.Format != FormatQuiz {
			continue
		}
		if len(script.AnswerOptions) == 0 || len(script.CorrectAnswer) != 1 {
			t.Fatalf("template %s: options %v answer %q", tmpl.ID, script.AnswerOptions, script.CorrectAnswer)
		}
		idx := int(script.CorrectAnswer[0] - 'A')
		if idx < 0 || idx >= len(script.AnswerOptions) {
			t.Fatalf("answer %q out of range for %d options", script.CorrectAnswer, len(script.AnswerOptions))
		}
	}
}

func TestBuiltinPoolIsWellFormed(t *testing.T) {
	ids := make(map[string]bool)
	for _, tmpl := range builtinTemplates() {
		if tmpl.ID == "" || tmpl.Category == "" || tmpl.Format == "" {
			t.Fatalf("template missing identity fields: %+v", tmpl)
		}
		if ids[tmpl.ID] {
			t.Fatalf("duplicate template id %s", tmpl.ID)
		}
		ids[tmpl.ID] = true
		if tmpl.hook == nil || tmpl.diagramDesc == nil {
			t.Fatalf("template %s missing hook or diagram formatter", tmpl.ID)
		}
	}
}
