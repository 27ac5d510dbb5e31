// Package taxonomy holds the immutable registry of emergency categories.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/triage-corpus/internal/model"
)

// SymptomPlaceholder marks where a symptom is substituted into a pattern.
const SymptomPlaceholder = "{symptom}"

//go:embed default.yaml
var defaultYAML []byte

var (
	// ErrUnknownCategory is returned when a category name is not registered.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownLabel is returned when a label is outside 0..N-1.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrConfiguration marks malformed taxonomy content.
	ErrConfiguration = errors.New("taxonomy configuration error")
)

// ConfigError reports a malformed field of one category.
type ConfigError struct {
	Category string
	Field    string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("taxonomy: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("taxonomy: category %s: %s: %s", e.Category, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Taxonomy is a read-only bijection between dense labels and categories.
type Taxonomy struct {
	categories []model.Category
	byName     map[string]int
}

type document struct {
	Categories []model.Category `yaml:"categories"`
}

// New builds a taxonomy from categories. Ids must be dense 0..N-1 (any
// order), names unique, and every category needs at least one keyword.
func New(categories []model.Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, &ConfigError{Field: "categories", Reason: "at least one category is required"}
	}

	ordered := make([]model.Category, len(categories))
	filled := make([]bool, len(categories))
	byName := make(map[string]int, len(categories))

	for _, c := range categories {
		if c.ID < 0 || c.ID >= len(categories) {
			return nil, &ConfigError{Category: c.Name, Field: "id", Reason: fmt.Sprintf("id %d outside 0..%d", c.ID, len(categories)-1)}
		}
		if filled[c.ID] {
			return nil, &ConfigError{Category: c.Name, Field: "id", Reason: fmt.Sprintf("duplicate id %d", c.ID)}
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, &ConfigError{Field: "name", Reason: fmt.Sprintf("category %d has no name", c.ID)}
		}
		if _, dup := byName[name]; dup {
			return nil, &ConfigError{Category: name, Field: "name", Reason: "duplicate name"}
		}
		if len(c.Keywords) == 0 {
			return nil, &ConfigError{Category: name, Field: "keywords", Reason: "keyword list is empty"}
		}

		c.Name = name
		c.Keywords = cloneStrings(c.Keywords)
		c.Patterns = cloneStrings(c.Patterns)
		c.Symptoms = cloneStrings(c.Symptoms)
		c.Examples = cloneStrings(c.Examples)
		ordered[c.ID] = c
		filled[c.ID] = true
		byName[name] = c.ID
	}

	return &Taxonomy{categories: ordered, byName: byName}, nil
}

// Parse decodes a YAML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy yaml: %w", err)
	}
	return New(doc.Categories)
}

// LoadFromFile reads a YAML taxonomy file.
func LoadFromFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in 16-category emergency taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// CategoryCount returns N, the size of the label space.
func (t *Taxonomy) CategoryCount() int { return len(t.categories) }

// LabelForName returns the label of a category name.
func (t *Taxonomy) LabelForName(name string) (int, error) {
	id, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return id, nil
}

// NameForLabel returns the category name bound to a label.
func (t *Taxonomy) NameForLabel(id int) (string, error) {
	if id < 0 || id >= len(t.categories) {
		return "", fmt.Errorf("%w: %d", ErrUnknownLabel, id)
	}
	return t.categories[id].Name, nil
}

// Entry returns a copy of the category bound to a label.
func (t *Taxonomy) Entry(id int) (model.Category, error) {
	if id < 0 || id >= len(t.categories) {
		return model.Category{}, fmt.Errorf("%w: %d", ErrUnknownLabel, id)
	}
	c := t.categories[id]
	c.Keywords = cloneStrings(c.Keywords)
	c.Patterns = cloneStrings(c.Patterns)
	c.Symptoms = cloneStrings(c.Symptoms)
	c.Examples = cloneStrings(c.Examples)
	return c, nil
}

// Categories returns copies of all categories in label order.
func (t *Taxonomy) Categories() []model.Category {
	out := make([]model.Category, len(t.categories))
	for i := range t.categories {
		out[i], _ = t.Entry(i)
	}
	return out
}

// Names returns category names in label order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// ClassInfo describes the label space for the training collaborator.
func (t *Taxonomy) ClassInfo() model.ClassInfo {
	labels := make(map[string]int, len(t.categories))
	for _, c := range t.categories {
		labels[c.Name] = c.ID
	}
	return model.ClassInfo{
		NumClasses:  len(t.categories),
		ClassNames:  t.Names(),
		ClassLabels: labels,
	}
}

// HumanName returns the category name with underscores replaced by spaces.
func HumanName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
