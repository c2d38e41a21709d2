package dto

import (
	"encoding/json"
	"fmt"
)

// SubjectSubmission is everything one participant sends after finishing a survey.
type SubjectSubmission struct {
	Subject    SubjectPayload    `json:"subject"`
	Results    [][]ActionPayload `json:"results"`
	Evaluation EvaluationPayload `json:"evaluation"`
}

// SubjectPayload carries the personalia from the starting form.
type SubjectPayload struct {
	Name      string          `json:"name"`
	Birth     string          `json:"birth"`
	Languages []LanguageLevel `json:"languages"`
	Numeral   LooseInt        `json:"numeral"`
	Eyesight  string          `json:"eyesight"`
}

// LanguageLevel is a [name, level] pair. The client appends the level
// after the name, so a pair may arrive incomplete.
type LanguageLevel struct {
	Name     string
	Level    int
	HasLevel bool
}

// UnmarshalJSON decodes the two element array form.
func (l *LanguageLevel) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("language must be a [name, level] pair: %w", err)
	}
	if len(parts) == 0 || len(parts) > 2 {
		return fmt.Errorf("language must be a [name, level] pair")
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return fmt.Errorf("language name must be a string: %w", err)
	}

	result := LanguageLevel{Name: name}
	if len(parts) == 2 {
		var level LooseInt
		if err := json.Unmarshal(parts[1], &level); err != nil {
			return fmt.Errorf("language level: %w", err)
		}
		result.Level = level.Value
		result.HasLevel = level.Valid
	}

	*l = result
	return nil
}

// MarshalJSON encodes the pair back into array form.
func (l LanguageLevel) MarshalJSON() ([]byte, error) {
	if !l.HasLevel {
		return json.Marshal([]interface{}{l.Name})
	}
	return json.Marshal([]interface{}{l.Name, l.Level})
}

// ActionPayload is one event of a page's action log. Color and Target are
// only set for fill actions.
type ActionPayload struct {
	Action string   `json:"action"`
	Color  string   `json:"color,omitempty"`
	Target string   `json:"target,omitempty"`
	Time   LooseInt `json:"time"`
}

// EvaluationPayload holds the answers from the ending form.
type EvaluationPayload struct {
	Difficulty LooseInt `json:"difficulty"`
	Topic      string   `json:"topic" validate:"max=200"`
	Comments   string   `json:"comments" validate:"max=5000"`
}
