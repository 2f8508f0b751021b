package diagram

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/services"
)

func testStage(t *testing.T) (*Stage, string) {
	t.Helper()
	dir := t.TempDir()
	return New(config.Diagram{Width: 320, Height: 568}, dir, nil), dir
}

func itemWithScript(t *testing.T, script *content.Script) *content.Item {
	t.Helper()
	encoded, err := script.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return &content.Item{ID: 7, TopicName: "Beam Reactions", ScriptJSON: encoded}
}

func TestExecuteRendersPNG(t *testing.T) {
	st, dir := testStage(t)
	item := itemWithScript(t, &content.Script{
		Type:               "quiz_abcd",
		HookText:           "What do the supports carry?",
		DiagramDescription: "Simply supported beam with a 20 kN point load at midspan",
		Formula:            "Ra = Rb = P / 2",
	})

	if err := st.Execute(context.Background(), item); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "diagrams", "item-7-beam_reactions.png")
	if item.DiagramPath != want {
		t.Fatalf("diagram path = %q, want %q", item.DiagramPath, want)
	}

	f, err := os.Open(item.DiagramPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 568 {
		t.Fatalf("canvas = %v", b)
	}
}

func TestExecuteCoversAllDiagramKinds(t *testing.T) {
	descriptions := []string{
		"Cantilever beam fixed at the wall with a tip load",
		"Stress-strain curve for a ductile metal",
		"Free body diagram of a sign hung by two cables",
		"Circular rod loaded axially in tension",
		"Schematic of a gearbox input shaft",
	}
	st, _ := testStage(t)
	for i, desc := range descriptions {
		item := itemWithScript(t, &content.Script{
			Type:               "infographic",
			HookText:           "hook",
			DiagramDescription: desc,
		})
		item.ID = int64(100 + i)
		if err := st.Execute(context.Background(), item); err != nil {
			t.Fatalf("%q: %v", desc, err)
		}
		if _, err := os.Stat(item.DiagramPath); err != nil {
			t.Fatalf("%q: %v", desc, err)
		}
	}
}

func TestExecuteFailsWithoutScript(t *testing.T) {
	st, _ := testStage(t)
	err := st.Execute(context.Background(), &content.Item{ID: 9})
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure, got %v", err)
	}
}

func TestExecuteFailsOnMissingFont(t *testing.T) {
	dir := t.TempDir()
	st := New(config.Diagram{Width: 100, Height: 100, FontPath: filepath.Join(dir, "nope.ttf")}, dir, nil)
	item := itemWithScript(t, &content.Script{
		Type:               "infographic",
		HookText:           "hook",
		DiagramDescription: "Simply supported beam",
	})
	if err := st.Execute(context.Background(), item); err == nil {
		t.Fatal("expected error for unreadable font path")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]kind{
		"Cantilever beam with a tip load":     kindCantilever,
		"Simply supported beam":               kindBeam,
		"Stress-strain curve":                 kindCurve,
		"Free body diagram of a block":        kindFBD,
		"Rod in tension":                      kindRod,
		"Layout of a four-bar linkage":        kindRod,
		"Exploded view of a bolted flange":    kindGeneric,
	}
	for desc, want := range cases {
		if got := classify(desc); got != want {
			t.Errorf("classify(%q) = %s, want %s", desc, got, want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	st, _ := testStage(t)
	if h := st.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected ready, got %+v", h)
	}
	bad := New(config.Diagram{}, t.TempDir(), nil)
	if h := bad.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy for zero dimensions")
	}
}
