package devserver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAnswer is returned when no fixture matches the question.
const DefaultAnswer = "I don't know. No fixture matches this question."

// Fixtures is the canned knowledge served by the development service.
type Fixtures struct {
	DefaultAnswer string    `yaml:"default_answer,omitempty"`
	Entries       []Fixture `yaml:"entries"`
}

// Fixture answers every question containing one of its keywords.
type Fixture struct {
	Match   []string        `yaml:"match"` // case-insensitive keywords
	Answer  string          `yaml:"answer"`
	Context []FixtureSource `yaml:"context,omitempty"`
}

// FixtureSource is one context entry returned with an answer. Extra keys are
// passed through to the client untouched.
type FixtureSource struct {
	Source string         `yaml:"source"`
	Text   string         `yaml:"text,omitempty"`
	Extra  map[string]any `yaml:",inline"`
}

// LoadFixtures reads a YAML fixtures file. A missing file yields empty fixtures.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Fixtures{DefaultAnswer: DefaultAnswer}, nil
		}
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes YAML fixtures.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if f.DefaultAnswer == "" {
		f.DefaultAnswer = DefaultAnswer
	}
	for i, e := range f.Entries {
		if len(e.Match) == 0 {
			return nil, fmt.Errorf("fixture %d: match is empty", i)
		}
	}
	return &f, nil
}

// Lookup returns the first fixture matching query.
func (f *Fixtures) Lookup(query string) (Fixture, bool) {
	for _, e := range f.Entries {
		if e.Matches(query) {
			return e, true
		}
	}
	return Fixture{}, false
}

// Matches reports whether query contains one of the fixture keywords.
func (e Fixture) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range e.Match {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw != "" && strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func (s FixtureSource) toMap() map[string]any {
	out := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["source"] = s.Source
	out["text"] = s.Text
	return out
}
