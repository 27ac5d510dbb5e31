package synth

import (
	"strings"

	"github.com/rcliao/triage-corpus/internal/model"
)

var keywordVariations = []string{
	"help with {keyword}",
	"what to do for {keyword}",
	"{keyword} emergency",
	"treatment for {keyword}",
	"how to handle {keyword}",
	"{keyword} symptoms",
	"{keyword} first aid",
	"{keyword} medical help",
	"emergency {keyword}",
	"urgent {keyword} help",
}

// Examples returns the category's hand-authored texts as samples.
// Texts that normalize to nothing are skipped.
func Examples(c model.Category) []model.Sample {
	samples := make([]model.Sample, 0, len(c.Examples))
	for _, text := range c.Examples {
		if n := Normalize(text); n != "" {
			samples = append(samples, model.Sample{Text: n, Label: c.ID, Category: c.Name})
		}
	}
	return samples
}

// KeywordVariations phrases every keyword with each fixed variation, keyword
// by keyword.
func KeywordVariations(c model.Category) []model.Sample {
	samples := make([]model.Sample, 0, len(c.Keywords)*len(keywordVariations))
	for _, keyword := range c.Keywords {
		for _, tmpl := range keywordVariations {
			if n := Normalize(strings.ReplaceAll(tmpl, keywordPlaceholder, keyword)); n != "" {
				samples = append(samples, model.Sample{Text: n, Label: c.ID, Category: c.Name})
			}
		}
	}
	return samples
}
