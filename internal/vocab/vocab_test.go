package vocab

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/triage-corpus/internal/model"
)

func corpusOf(texts ...string) []model.Sample {
	out := make([]model.Sample, len(texts))
	for i, text := range texts {
		out[i] = model.Sample{Text: text, Category: "burns", Label: 3}
	}
	return out
}

func TestBuild_FrequencyOrderAndTies(t *testing.T) {
	corpus := corpusOf(
		"burn scald burn",
		"scald blister burn",
		"cool water blister",
		"once",
	)
	v, err := Build(corpus, DefaultOptions())
	require.NoError(t, err)

	// burn=3, scald=2, blister=2 (scald seen first), singletons dropped.
	assert.Equal(t, []string{"<PAD>", "<UNK>", "<START>", "<END>", "burn", "scald", "blister"}, v.Tokens())
	_, ok := v.ID("once")
	assert.False(t, ok)
	assert.Equal(t, model.UnkID, v.Lookup("cool"))
}

func TestBuild_SizeCap(t *testing.T) {
	corpus := corpusOf("a a a b b b c c c d d")
	v, err := Build(corpus, Options{Size: 6, MinFrequency: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, v.Len())
	assert.Equal(t, []string{"<PAD>", "<UNK>", "<START>", "<END>", "a", "b"}, v.Tokens())
}

func TestBuild_MinFrequencyOne(t *testing.T) {
	v, err := Build(corpusOf("only once"), Options{Size: 100, MinFrequency: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, v.Len())
}

func TestBuild_RejectsTinySize(t *testing.T) {
	_, err := Build(nil, Options{Size: 3, MinFrequency: 2})
	assert.Error(t, err)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	v, err := Build(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, model.ReservedTokens, v.Tokens())
}

func TestCountingTokens(t *testing.T) {
	assert.Equal(t, []string{"how", "to", "help", "choking", "victim", "heimlich"},
		CountingTokens("How to help choking victim? Heimlich"))
	assert.Equal(t, []string{"cant", "breathe"}, CountingTokens("can't breathe!"))
	assert.Equal(t, []string{"first_aid", "2"}, CountingTokens("first_aid #2"))
	assert.Empty(t, CountingTokens("?!"))
}

func TestCountingTokens_UnicodeSpaces(t *testing.T) {
	for _, text := range []string{"chest\u00a0pain", "chest\vpain", "chest\u2003pain", "chest\u3000pain"} {
		assert.Equal(t, []string{"chest", "pain"}, CountingTokens(text), "%q", text)
	}
}

func TestVocabularyIDsAreContiguous(t *testing.T) {
	word := gen.OneConstOf("burn", "cpr", "pulse", "Choking!", "can't", "heart", "x", "blue-lips", "EpiPen")
	text := gen.SliceOfN(6, word).Map(func(ws []string) string { return strings.Join(ws, " ") })

	properties := gopter.NewProperties(nil)
	properties.Property("ids are 0..len-1 with reserved tokens first", prop.ForAll(
		func(texts []string, size int) bool {
			v, err := Build(corpusOf(texts...), Options{Size: size, MinFrequency: 2})
			if err != nil {
				return false
			}
			if v.Len() > size {
				return false
			}
			seen := make(map[int]bool)
			for tok, id := range v.Map() {
				if id < 0 || id >= v.Len() || seen[id] {
					return false
				}
				seen[id] = true
				back, ok := v.Token(id)
				if !ok || back != tok {
					return false
				}
			}
			for id, tok := range model.ReservedTokens {
				if got, _ := v.Token(id); got != tok {
					return false
				}
			}
			return len(seen) == v.Len()
		},
		gen.SliceOf(text),
		gen.IntRange(4, 12),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestJSONRoundTrip(t *testing.T) {
	v, err := Build(corpusOf("burn burn scald scald"), DefaultOptions())
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"burn":4`)

	raw, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"<PAD>":0,"<UNK>":1,"<START>":2,"<END>":3,"burn":4,"scald":5}`, string(raw))

	var back Vocabulary
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, v.Tokens(), back.Tokens())
}

func TestFromMap_Validation(t *testing.T) {
	tests := []struct {
		name     string
		m        map[string]int
		reserved bool
	}{
		{name: "gap", m: map[string]int{"<PAD>": 0, "<UNK>": 1, "<START>": 2, "<END>": 3, "burn": 5}},
		{name: "duplicate id", m: map[string]int{"<PAD>": 0, "<UNK>": 1, "<START>": 2, "<END>": 3, "burn": 3}},
		{name: "missing reserved", m: map[string]int{"<PAD>": 0, "<UNK>": 1, "burn": 2, "<END>": 3}, reserved: true},
		{name: "empty", m: map[string]int{}, reserved: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.m)
			require.Error(t, err)
			if tt.reserved {
				assert.True(t, errors.Is(err, ErrReservedToken))
			}
		})
	}

	v, err := FromMap(map[string]int{"<PAD>": 0, "<UNK>": 1, "<START>": 2, "<END>": 3, "burn": 4})
	require.NoError(t, err)
	assert.Equal(t, 5, v.Len())
}
