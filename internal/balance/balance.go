// Package balance tops up under-represented categories with deterministic
// synthetic text.
package balance

import (
	"fmt"
	"strings"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/synth"
	"github.com/rcliao/triage-corpus/internal/taxonomy"
)

// DefaultCap is the per-category ceiling applied to the balancing target.
const DefaultCap = 500

const keywordPlaceholder = "{keyword}"

var templates = []string{
	"emergency situation with {keyword}",
	"medical emergency {keyword}",
	"urgent help needed {keyword}",
	"serious {keyword} case",
	"critical {keyword} situation",
	"severe {keyword} emergency",
	"patient with {keyword}",
	"case of {keyword} emergency",
	"{keyword} medical emergency",
	"emergency response {keyword}",
	"immediate help {keyword}",
	"emergency care {keyword}",
	"urgent medical {keyword}",
	"emergency protocol {keyword}",
	"critical care {keyword}",
}

var modifiers = []string{"serious ", "urgent ", ""}

// Report describes one balancing pass.
type Report struct {
	Target   int            `json:"target"`
	Observed map[string]int `json:"observed"`
	Added    map[string]int `json:"added"`
}

// Balancer equalizes per-category sample counts.
type Balancer struct {
	cap int
}

// New returns a balancer with the given cap. A cap <= 0 selects DefaultCap.
func New(limit int) *Balancer {
	if limit <= 0 {
		limit = DefaultCap
	}
	return &Balancer{cap: limit}
}

// Cap returns the configured ceiling.
func (b *Balancer) Cap() int { return b.cap }

// Target returns min(max(counts), cap).
func (b *Balancer) Target(counts []int) int {
	highest := 0
	for _, n := range counts {
		if n > highest {
			highest = n
		}
	}
	return min(highest, b.cap)
}

// Balance returns the corpus followed by synthetic samples for every
// category below target, grouped in label order. The input is not modified.
func (b *Balancer) Balance(corpus []model.Sample, tax *taxonomy.Taxonomy) ([]model.Sample, Report, error) {
	counts, err := Count(corpus, tax)
	if err != nil {
		return nil, Report{}, err
	}

	target := b.Target(counts)
	report := Report{
		Target:   target,
		Observed: make(map[string]int, len(counts)),
		Added:    make(map[string]int),
	}

	out := make([]model.Sample, len(corpus), len(corpus)+estimate(counts, target))
	copy(out, corpus)

	for id, observed := range counts {
		c, err := tax.Entry(id)
		if err != nil {
			return nil, Report{}, err
		}
		report.Observed[c.Name] = observed

		needed := target - observed
		if needed <= 0 {
			continue
		}
		texts, err := Fill(c.Keywords, needed)
		if err != nil {
			return nil, Report{}, fmt.Errorf("balance %s: %w", c.Name, err)
		}
		for _, text := range texts {
			out = append(out, model.Sample{Text: text, Label: c.ID, Category: c.Name, Synthetic: true})
		}
		report.Added[c.Name] = needed
	}

	return out, report, nil
}

// Count returns per-label sample counts, checking that every sample's label
// matches its category name.
func Count(corpus []model.Sample, tax *taxonomy.Taxonomy) ([]int, error) {
	counts := make([]int, tax.CategoryCount())
	for i, s := range corpus {
		label, err := tax.LabelForName(s.Category)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if label != s.Label {
			return nil, fmt.Errorf("sample %d: label %d does not match category %s (%d)", i, s.Label, s.Category, label)
		}
		counts[label]++
	}
	return counts, nil
}

// Fill renders count synthetic texts by round robin over keywords and
// templates. The same keywords and count always yield the same texts.
func Fill(keywords []string, count int) ([]string, error) {
	if len(keywords) == 0 {
		return nil, &taxonomy.ConfigError{Field: "keywords", Reason: "keyword list is empty"}
	}
	out := make([]string, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, Phrase(keywords, i))
	}
	return out, nil
}

// Phrase renders the i-th synthetic text for keywords. keywords must be
// non-empty.
func Phrase(keywords []string, i int) string {
	keyword := keywords[i%len(keywords)]
	text := strings.ReplaceAll(templates[i%len(templates)], keywordPlaceholder, keyword)
	return synth.Normalize(modifiers[i%len(modifiers)] + text)
}

func estimate(counts []int, target int) int {
	n := 0
	for _, c := range counts {
		if c < target {
			n += target - c
		}
	}
	return n
}
