// Package synth expands taxonomy categories into concrete query strings.
package synth

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/taxonomy"
)

// Strategy selects how one query string is phrased.
type Strategy int

const (
	StrategyPattern Strategy = iota
	StrategyKeyword
	StrategyVariation
)

func (s Strategy) String() string {
	switch s {
	case StrategyPattern:
		return "pattern"
	case StrategyKeyword:
		return "keyword"
	case StrategyVariation:
		return "variation"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

const (
	keywordPlaceholder  = "{keyword}"
	categoryPlaceholder = "{category}"
	keywordTemplate     = "how to treat {keyword}?"
)

var variationTemplates = []string{
	"What should I do if someone has {category}?",
	"Emergency response for {category}",
	"First aid for {category}",
	"Medical help for {category}",
	"Emergency care when someone has {category}",
}

// Synthesizer generates raw query text from a category. It owns its random
// source and must not be shared between goroutines.
type Synthesizer struct {
	rng *rand.Rand
}

// New returns a synthesizer drawing from rng. A nil rng is replaced by a
// time-seeded source.
func New(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng}
}

// NewSeeded returns a synthesizer with a fixed seed.
func NewSeeded(seed int64) *Synthesizer {
	return New(rand.New(rand.NewSource(seed)))
}

// Generate produces count normalized strings for the category.
func (s *Synthesizer) Generate(c model.Category, count int) ([]string, error) {
	if err := CheckCategory(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		strategy := Strategy(s.rng.Intn(3))
		out = append(out, Normalize(s.phrase(c, strategy)))
	}
	return out, nil
}

// GenerateSamples wraps Generate output as labeled samples.
func (s *Synthesizer) GenerateSamples(c model.Category, count int) ([]model.Sample, error) {
	texts, err := s.Generate(c, count)
	if err != nil {
		return nil, err
	}
	samples := make([]model.Sample, 0, len(texts))
	for _, text := range texts {
		samples = append(samples, model.Sample{Text: text, Label: c.ID, Category: c.Name})
	}
	return samples, nil
}

// Phrase renders one unnormalized string with the given strategy.
func (s *Synthesizer) Phrase(c model.Category, strategy Strategy) (string, error) {
	if err := CheckCategory(c); err != nil {
		return "", err
	}
	return s.phrase(c, strategy), nil
}

func (s *Synthesizer) phrase(c model.Category, strategy Strategy) string {
	switch strategy {
	case StrategyPattern:
		pattern := pick(s.rng, c.Patterns)
		if strings.Contains(pattern, taxonomy.SymptomPlaceholder) {
			return strings.ReplaceAll(pattern, taxonomy.SymptomPlaceholder, pick(s.rng, c.Symptoms))
		}
		return pattern + " " + pick(s.rng, c.Keywords)
	case StrategyKeyword:
		return strings.ReplaceAll(keywordTemplate, keywordPlaceholder, pick(s.rng, c.Keywords))
	default:
		return strings.ReplaceAll(pick(s.rng, variationTemplates), categoryPlaceholder, taxonomy.HumanName(c.Name))
	}
}

// CheckCategory reports taxonomy content the synthesizer cannot expand.
func CheckCategory(c model.Category) error {
	if len(c.Keywords) == 0 {
		return &taxonomy.ConfigError{Category: c.Name, Field: "keywords", Reason: "keyword list is empty"}
	}
	if len(c.Patterns) == 0 {
		return &taxonomy.ConfigError{Category: c.Name, Field: "patterns", Reason: "pattern list is empty"}
	}
	for _, list := range []struct {
		field string
		items []string
	}{
		{"keywords", c.Keywords},
		{"patterns", c.Patterns},
		{"symptoms", c.Symptoms},
	} {
		for _, item := range list.items {
			if Normalize(item) == "" {
				return &taxonomy.ConfigError{
					Category: c.Name,
					Field:    list.field,
					Reason:   fmt.Sprintf("entry %q is blank after normalization", item),
				}
			}
		}
	}
	if len(c.Symptoms) == 0 {
		for _, p := range c.Patterns {
			if strings.Contains(p, taxonomy.SymptomPlaceholder) {
				return &taxonomy.ConfigError{
					Category: c.Name,
					Field:    "symptoms",
					Reason:   fmt.Sprintf("pattern %q uses %s but no symptoms are listed", p, taxonomy.SymptomPlaceholder),
				}
			}
		}
	}
	return nil
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}
