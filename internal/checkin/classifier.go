package checkin

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind int

const (
	Invalid Kind = iota
	Daily
	Meeting
)

func (k Kind) String() string {
	switch k {
	case Daily:
		return "daily"
	case Meeting:
		return "meeting"
	default:
		return "invalid"
	}
}

// Tokens lists the substrings recognised for each check-in category.
type Tokens struct {
	Meeting []string `yaml:"meeting"`
	Daily   []string `yaml:"daily"`
}

// DefaultTokens covers both traditional and simplified spellings.
func DefaultTokens() Tokens {
	return Tokens{
		Meeting: []string{"暢想", "畅想"},
		Daily:   []string{"簽到", "签到"},
	}
}

func (t Tokens) Validate() error {
	if len(nonEmpty(t.Meeting)) == 0 {
		return errors.New("no meeting tokens configured")
	}
	if len(nonEmpty(t.Daily)) == 0 {
		return errors.New("no daily tokens configured")
	}
	return nil
}

// LoadTokens reads a YAML token file. An empty path yields DefaultTokens.
func LoadTokens(path string) (Tokens, error) {
	if path == "" {
		return DefaultTokens(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var tokens Tokens
	if err := yaml.Unmarshal(raw, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	if err := tokens.Validate(); err != nil {
		return Tokens{}, fmt.Errorf("token file %s: %w", path, err)
	}
	return tokens, nil
}

type Classifier struct {
	meeting []string
	daily   []string
}

func NewClassifier(tokens Tokens) *Classifier {
	return &Classifier{
		meeting: nonEmpty(tokens.Meeting),
		daily:   nonEmpty(tokens.Daily),
	}
}

// Classify never fails. Meeting wins when both categories match.
func (c *Classifier) Classify(text string) Kind {
	if containsAny(text, c.meeting) {
		return Meeting
	}
	if containsAny(text, c.daily) {
		return Daily
	}
	return Invalid
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func nonEmpty(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
