package textutil

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "Cantilever Beam", []string{"cantilever", "beam"}},
		{"drops short tokens", "FBD of a sign", []string{"fbd", "sign"}},
		{"punctuation", "stress-strain curve: yield?", []string{"stress", "strain", "curve", "yield"}},
		{"numbers kept", "beam 20kN span", []string{"beam", "20kn", "span"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewFingerprintEmpty(t *testing.T) {
	if NewFingerprint("") != nil {
		t.Error("expected nil for empty text")
	}
	if NewFingerprint("a to it") != nil {
		t.Error("expected nil when only short tokens remain")
	}
}

func TestNewFingerprintNorm(t *testing.T) {
	// "beam beam span" -> beam:2, span:1, norm sqrt(5)
	fp := NewFingerprint("beam beam span")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 0.0001 {
		t.Errorf("norm = %v, want sqrt(5)", fp.norm)
	}
}

func TestCosineSimilarity(t *testing.T) {
	topic := NewFingerprint("cantilever beam end load moment")
	cantilever := NewFingerprint("cantilever beam moment fixed reaction")
	rod := NewFingerprint("stress axial rod cross section tension")

	if sim := CosineSimilarity(topic, topic); math.Abs(sim-1) > 0.0001 {
		t.Errorf("self similarity = %v, want 1", sim)
	}
	if CosineSimilarity(topic, rod) != 0 {
		t.Errorf("disjoint texts should score 0")
	}
	if CosineSimilarity(topic, cantilever) <= CosineSimilarity(topic, rod) {
		t.Error("related text should outscore unrelated text")
	}
	if CosineSimilarity(topic, cantilever) != CosineSimilarity(cantilever, topic) {
		t.Error("similarity should be symmetric")
	}
	if CosineSimilarity(nil, topic) != 0 || CosineSimilarity(topic, nil) != 0 {
		t.Error("nil fingerprints should score 0")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Beam Reactions", "beam_reactions"},
		{"stress/strain", "stress_strain"},
		{"  ", "unknown"},
		{"__--", "unknown"},
		{"Euler-Buckling", "euler-buckling"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.input); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
