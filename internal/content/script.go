package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step is one ordered beat of a script.
type Step struct {
	Text      string `json:"text"`
	Highlight string `json:"highlight,omitempty"`
}

// Script is the structured payload produced by the script stage. The
// engagement format decides which optional fields are populated:
// quiz/identify carry answer options, true_false carries a statement,
// infographic carries key facts and a formula.
type Script struct {
	Type               string   `json:"type"`
	HookText           string   `json:"hook_text"`
	DiagramDescription string   `json:"diagram_description"`
	ContentSteps       []Step   `json:"content_steps"`
	AnswerOptions      []string `json:"answer_options,omitempty"`
	CorrectAnswer      string   `json:"correct_answer,omitempty"`
	Statement          string   `json:"statement,omitempty"`
	KeyFacts           []string `json:"key_facts,omitempty"`
	Formula            string   `json:"formula,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
	CTAText            string   `json:"cta_text,omitempty"`
	TweetText          string   `json:"tweet_text,omitempty"`
	TemplateID         string   `json:"template_id,omitempty"`
}

// PlainText flattens the script for narration input.
func (s *Script) PlainText() string {
	parts := make([]string, 0, len(s.ContentSteps)+1)
	if hook := strings.TrimSpace(s.HookText); hook != "" {
		parts = append(parts, hook)
	}
	for _, step := range s.ContentSteps {
		if text := strings.TrimSpace(step.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Validate rejects payloads the diagram stage cannot work with.
func (s *Script) Validate() error {
	if strings.TrimSpace(s.HookText) == "" {
		return fmt.Errorf("script payload missing hook text")
	}
	if strings.TrimSpace(s.DiagramDescription) == "" {
		return fmt.Errorf("script payload missing diagram description")
	}
	return nil
}

// Encode serializes the payload for storage.
func (s *Script) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	return string(data), nil
}

// DecodeScript parses a stored script payload.
func DecodeScript(raw string) (*Script, error) {
	var script Script
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &script, nil
}
