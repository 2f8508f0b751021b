package scenario

import (
	"math/rand"
	"strings"

	"edustream/internal/textutil"
)

// Engagement formats supported by the template pool.
const (
	FormatQuiz        = "quiz_abcd"
	FormatIdentify    = "identify"
	FormatTrueFalse   = "true_false"
	FormatInfographic = "infographic"
)

// paramRange defines a randomizable numeric parameter.
type paramRange struct {
	min  float64
	max  float64
	step float64
	unit string
}

func (p paramRange) sample(rng *rand.Rand) float64 {
	if p.step <= 0 {
		p.step = 1
	}
	steps := int((p.max - p.min) / p.step)
	if steps <= 0 {
		return p.min
	}
	return p.min + float64(rng.Intn(steps+1))*p.step
}

// params carries one sampled variant of a template.
type params struct {
	nums    map[string]float64
	choices map[string]string
}

// solved carries the computed answer values for a variant.
type solved map[string]float64

// Template generates randomized problem variants for one scenario. The
// formatter funcs receive the sampled parameters (and solution) and
// produce the script payload pieces; options formatters return the
// correct answer first, shuffling happens at script assembly.
type Template struct {
	ID          string
	Category    string
	Tags        []string
	DiagramType string
	Format      string

	numParams    map[string]paramRange
	choiceParams map[string][]string

	fingerprint *textutil.Fingerprint

	solve       func(params) solved
	hook        func(params) string
	diagramDesc func(params) string
	steps       func(params) []stepSpec
	options     func(params, solved) []string
	explanation func(params, solved) string
	keyFacts    func(params, solved) []string
	formula     func(params, solved) string
}

type stepSpec struct {
	text      string
	highlight string
}

func (t *Template) sample(rng *rand.Rand) (params, solved) {
	p := params{
		nums:    make(map[string]float64, len(t.numParams)),
		choices: make(map[string]string, len(t.choiceParams)),
	}
	for name, spec := range t.numParams {
		p.nums[name] = spec.sample(rng)
	}
	for name, choices := range t.choiceParams {
		p.choices[name] = choices[rng.Intn(len(choices))]
	}
	var s solved
	if t.solve != nil {
		s = t.solve(p)
	}
	return p, s
}

// matchScore measures how well free-text search terms fit the
// template, as the cosine similarity between the search text and the
// template's tags and category.
func (t *Template) matchScore(search *textutil.Fingerprint) float64 {
	if t.fingerprint == nil {
		text := strings.Join(t.Tags, " ") + " " + strings.ReplaceAll(t.Category, "_", " ")
		t.fingerprint = textutil.NewFingerprint(text)
	}
	return textutil.CosineSimilarity(search, t.fingerprint)
}
