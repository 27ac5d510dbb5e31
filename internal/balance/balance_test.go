package balance

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/synth"
	"github.com/rcliao/triage-corpus/internal/taxonomy"
)

func twoCategories(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.New([]model.Category{
		{ID: 0, Name: "alpha", Keywords: []string{"cardiac arrest"}, Patterns: []string{"p"}},
		{ID: 1, Name: "beta", Keywords: []string{"Burn", "scald"}, Patterns: []string{"p"}},
	})
	require.NoError(t, err)
	return tax
}

func samples(name string, label, n int) []model.Sample {
	out := make([]model.Sample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Sample{Text: fmt.Sprintf("%s text %d", name, i), Label: label, Category: name})
	}
	return out
}

func TestBalance_FillsUnderRepresented(t *testing.T) {
	tax := twoCategories(t)
	corpus := append(samples("alpha", 0, 40), samples("beta", 1, 10)...)

	out, report, err := New(40).Balance(corpus, tax)
	require.NoError(t, err)

	require.Len(t, out, 80)
	assert.Equal(t, 40, report.Target)
	assert.Equal(t, map[string]int{"beta": 30}, report.Added)
	assert.Equal(t, corpus, out[:50])

	added := out[50:]
	for _, s := range added {
		assert.True(t, s.Synthetic)
		assert.Equal(t, 1, s.Label)
		assert.Equal(t, "beta", s.Category)
	}

	want := []string{
		"serious emergency situation with burn",
		"urgent medical emergency scald",
		"urgent help needed burn",
		"serious serious scald case",
		"urgent critical burn situation",
	}
	for i, text := range want {
		assert.Equal(t, text, added[i].Text, "synthetic sample %d", i)
	}
}

func TestBalance_CapLimitsTarget(t *testing.T) {
	tax := twoCategories(t)
	corpus := append(samples("alpha", 0, 40), samples("beta", 1, 10)...)

	out, report, err := New(25).Balance(corpus, tax)
	require.NoError(t, err)
	assert.Equal(t, 25, report.Target)
	assert.Equal(t, 15, report.Added["beta"])
	assert.Len(t, out, 65)
}

func TestBalance_EmptyCategoryIsFilled(t *testing.T) {
	tax := twoCategories(t)
	out, report, err := New(500).Balance(samples("alpha", 0, 12), tax)
	require.NoError(t, err)
	assert.Equal(t, 12, report.Added["beta"])
	assert.Len(t, out, 24)
}

func TestBalance_EmptyCorpus(t *testing.T) {
	out, report, err := New(0).Balance(nil, twoCategories(t))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, report.Target)
}

func TestBalance_Deterministic(t *testing.T) {
	tax := taxonomy.Default()
	var corpus []model.Sample
	for _, c := range tax.Categories() {
		corpus = append(corpus, synth.Examples(c)...)
		if c.ID%2 == 0 {
			corpus = append(corpus, synth.KeywordVariations(c)...)
		}
	}

	first, _, err := New(DefaultCap).Balance(corpus, tax)
	require.NoError(t, err)
	second, _, err := New(DefaultCap).Balance(corpus, tax)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	counts, err := Count(first, tax)
	require.NoError(t, err)
	for i := 1; i < len(counts); i++ {
		assert.Equal(t, counts[0], counts[i], "category %d", i)
	}
}

func TestBalance_RejectsUnknownCategory(t *testing.T) {
	corpus := []model.Sample{{Text: "x", Label: 0, Category: "general_emergency"}}
	_, _, err := New(10).Balance(corpus, twoCategories(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, taxonomy.ErrUnknownCategory))
}

func TestBalance_RejectsLabelMismatch(t *testing.T) {
	corpus := []model.Sample{{Text: "x", Label: 0, Category: "beta"}}
	_, _, err := New(10).Balance(corpus, twoCategories(t))
	assert.Error(t, err)
}

func TestFill(t *testing.T) {
	texts, err := Fill([]string{"EpiPen"}, 17)
	require.NoError(t, err)
	require.Len(t, texts, 17)
	assert.Equal(t, "serious emergency situation with epipen", texts[0])
	assert.Equal(t, "critical care epipen", texts[14])
	assert.Equal(t, texts[0], texts[15])
	assert.Equal(t, "urgent medical emergency epipen", texts[16])
	for _, text := range texts {
		assert.Equal(t, synth.Normalize(text), text)
	}

	_, err = Fill(nil, 3)
	assert.True(t, errors.Is(err, taxonomy.ErrConfiguration))
}

func TestTarget(t *testing.T) {
	b := New(500)
	assert.Equal(t, 0, b.Target(nil))
	assert.Equal(t, 40, b.Target([]int{10, 40, 3}))
	assert.Equal(t, 500, b.Target([]int{900, 1}))
	assert.Equal(t, DefaultCap, New(-1).Cap())
}
