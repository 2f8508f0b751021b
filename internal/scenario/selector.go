// Package scenario holds the template pool and the selector that picks
// scenarios for generation while avoiding recent repeats.
package scenario

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"edustream/internal/content"
	"edustream/internal/services"
	"edustream/internal/textutil"
)

// Filter narrows template selection. All fields are optional; empty
// fields match everything.
type Filter struct {
	Topic       string
	Category    string
	Description string
}

func (f Filter) searchText() string {
	return strings.ToLower(strings.TrimSpace(f.Topic + " " + f.Category + " " + f.Description))
}

func (f Filter) empty() bool {
	return strings.TrimSpace(f.Topic) == "" && strings.TrimSpace(f.Category) == "" && strings.TrimSpace(f.Description) == ""
}

// Selector picks templates from the pool, excluding the most recently
// selected ones. Safe for concurrent use.
type Selector struct {
	mu        sync.Mutex
	rng       *rand.Rand
	window    int
	templates []*Template
	seq       uint64
	recency   map[string]uint64
}

type Option func(*Selector)

// WithRand injects the random source. Tests use a seeded source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) { s.rng = rng }
}

// WithTemplates replaces the built-in pool.
func WithTemplates(templates []*Template) Option {
	return func(s *Selector) { s.templates = templates }
}

// NewSelector builds a selector with the given exclusion window. A
// window of zero disables exclusion.
func NewSelector(window int, opts ...Option) *Selector {
	s := &Selector{
		window:    window,
		templates: builtinTemplates(),
		recency:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// PoolSize reports how many templates the selector draws from.
func (s *Selector) PoolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.templates)
}

// Templates returns the pool, for listing.
func (s *Selector) Templates() []*Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Select picks one template matching the filter, excluding the most
// recently selected templates where the remaining pool allows it. The
// window relaxes rather than starve: when every candidate has been
// used recently, the least recently used one is eligible again.
// Returns services.ErrEmptyPool when no template matches the filter at
// all.
func (s *Selector) Select(filter Filter) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.match(filter)
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrEmptyPool, "scenario", "select",
			fmt.Sprintf("no template matches topic %q", filter.Topic), nil)
	}

	eligible := s.excludeRecent(candidates)
	picked := eligible[s.rng.Intn(len(eligible))]
	s.seq++
	s.recency[picked.ID] = s.seq
	return picked, nil
}

// match returns the best-scoring templates for the filter, or the
// whole pool when the filter is empty. Scoring is cosine similarity
// between the filter text and each template's tags, with a bonus for
// an exact category match.
func (s *Selector) match(filter Filter) []*Template {
	if filter.empty() {
		out := make([]*Template, len(s.templates))
		copy(out, s.templates)
		return out
	}
	const tie = 1e-9
	search := textutil.NewFingerprint(filter.searchText())
	best := 0.0
	var out []*Template
	for _, t := range s.templates {
		score := t.matchScore(search)
		if filter.Category != "" && t.Category == strings.ToLower(strings.TrimSpace(filter.Category)) {
			score += 0.5
		}
		if score == 0 {
			continue
		}
		switch {
		case score > best+tie:
			best = score
			out = out[:0]
			out = append(out, t)
		case score > best-tie:
			out = append(out, t)
		}
	}
	return out
}

// excludeRecent drops the templates selected within the window. When
// the exclusion would empty the pool it keeps the least recently used
// candidates instead, so a small pool still rotates.
func (s *Selector) excludeRecent(candidates []*Template) []*Template {
	if s.window <= 0 {
		return candidates
	}
	eligible := make([]*Template, 0, len(candidates))
	for _, t := range candidates {
		seq, used := s.recency[t.ID]
		if !used || s.seq-seq >= uint64(s.window) {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) > 0 {
		return eligible
	}
	lru := make([]*Template, len(candidates))
	copy(lru, candidates)
	sort.Slice(lru, func(i, j int) bool { return s.recency[lru[i].ID] < s.recency[lru[j].ID] })
	return lru[:1]
}

// Generate selects a template, samples a variant and assembles the
// full script payload.
func (s *Selector) Generate(filter Filter) (*content.Script, *Template, error) {
	t, err := s.Select(filter)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, sol := t.sample(s.rng)

	script := &content.Script{
		Type:       t.Format,
		TemplateID: t.ID,
	}
	if t.hook != nil {
		script.HookText = t.hook(p)
	}
	if t.diagramDesc != nil {
		script.DiagramDescription = t.diagramDesc(p)
	}
	if t.steps != nil {
		for _, step := range t.steps(p) {
			script.ContentSteps = append(script.ContentSteps, content.Step{
				Text:      step.text,
				Highlight: step.highlight,
			})
		}
	}
	if t.options != nil {
		opts := t.options(p, sol)
		correct := opts[0]
		s.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		script.AnswerOptions = opts
		for i, o := range opts {
			if o == correct {
				script.CorrectAnswer = string(rune('A' + i))
				break
			}
		}
	}
	if t.Format == FormatTrueFalse {
		script.Statement = strings.TrimPrefix(script.HookText, "True or false: ")
	}
	if t.keyFacts != nil {
		script.KeyFacts = t.keyFacts(p, sol)
	}
	if t.formula != nil {
		script.Formula = t.formula(p, sol)
	}
	if t.explanation != nil {
		script.Explanation = t.explanation(p, sol)
	}
	script.CTAText = "Follow for more bite-size engineering."
	if pool := tweetPools[t.Format]; len(pool) > 0 {
		script.TweetText = pool[s.rng.Intn(len(pool))]
	}
	return script, t, nil
}
