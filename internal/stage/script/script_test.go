package script

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"edustream/internal/content"
	"edustream/internal/scenario"
	"edustream/internal/services"
)

type stubFallback struct {
	script *content.Script
	err    error
	calls  int
}

func (s *stubFallback) GenerateScript(context.Context, string, string, string) (*content.Script, error) {
	s.calls++
	return s.script, s.err
}

func newSelector() *scenario.Selector {
	return scenario.NewSelector(2, scenario.WithRand(rand.New(rand.NewSource(7))))
}

func TestExecuteUsesTemplatePool(t *testing.T) {
	fallback := &stubFallback{}
	st := New(newSelector(), fallback, nil)

	item := &content.Item{ID: 1, TopicName: "beam reactions simply supported"}
	if err := st.Execute(context.Background(), item); err != nil {
		t.Fatal(err)
	}
	if item.ScriptJSON == "" {
		t.Fatal("script json not set")
	}
	if item.TemplateID == "" {
		t.Fatal("template id not set")
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback called %d times for a pool topic", fallback.calls)
	}

	script, err := item.Script()
	if err != nil {
		t.Fatal(err)
	}
	if err := script.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteFallsBackForUnmatchedTopic(t *testing.T) {
	fallback := &stubFallback{
		script: &content.Script{
			Type:               "infographic",
			HookText:           "Entropy in 60 seconds",
			DiagramDescription: "Heat engine diagram with entropy flow",
		},
	}
	st := New(newSelector(), fallback, nil)

	item := &content.Item{ID: 2, TopicName: "thermodynamic entropy"}
	if err := st.Execute(context.Background(), item); err != nil {
		t.Fatal(err)
	}
	if fallback.calls != 1 {
		t.Fatalf("fallback calls = %d", fallback.calls)
	}
	if item.ScriptJSON == "" {
		t.Fatal("script json not set from fallback")
	}
}

func TestExecuteFailsWithoutAnySource(t *testing.T) {
	st := New(newSelector(), nil, nil)
	item := &content.Item{ID: 3, TopicName: "thermodynamic entropy"}
	err := st.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure, got %v", err)
	}
}

func TestExecuteFailsWhenFallbackErrs(t *testing.T) {
	fallback := &stubFallback{err: errors.New("model down")}
	st := New(newSelector(), fallback, nil)
	item := &content.Item{ID: 4, TopicName: "thermodynamic entropy"}
	err := st.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure, got %v", err)
	}
}

func TestExecuteRejectsIncompleteFallbackScript(t *testing.T) {
	fallback := &stubFallback{script: &content.Script{Type: "infographic", HookText: "hi"}}
	st := New(newSelector(), fallback, nil)
	item := &content.Item{ID: 5, TopicName: "thermodynamic entropy"}
	if err := st.Execute(context.Background(), item); err == nil {
		t.Fatal("expected validation failure for incomplete script")
	}
}

func TestHealthCheck(t *testing.T) {
	st := New(newSelector(), nil, nil)
	if h := st.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected healthy, got %+v", h)
	}
}
