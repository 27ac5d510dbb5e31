// Package vocab builds and holds the frequency-ranked token vocabulary.
package vocab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/triage-corpus/internal/model"
)

const (
	DefaultSize         = 10000
	DefaultMinFrequency = 2
)

// ErrReservedToken reports a vocabulary whose control tokens are missing or
// bound to the wrong ids.
var ErrReservedToken = errors.New("reserved token mismatch")

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Options bounds the vocabulary.
type Options struct {
	// Size is the total entry count including the four reserved tokens.
	Size int
	// MinFrequency drops tokens seen fewer times than this.
	MinFrequency int
}

// DefaultOptions returns the standard vocabulary bounds.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, MinFrequency: DefaultMinFrequency}
}

// TokenCount is a token with its corpus frequency.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Vocabulary is an immutable token to id mapping with ids 0..Len()-1.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// Build counts tokens across the corpus and keeps the most frequent ones.
// Ties keep first-seen corpus order.
func Build(corpus []model.Sample, opts Options) (*Vocabulary, error) {
	if opts.Size < len(model.ReservedTokens) {
		return nil, fmt.Errorf("vocabulary size %d is smaller than the %d reserved tokens", opts.Size, len(model.ReservedTokens))
	}

	tokens := append([]string(nil), model.ReservedTokens...)
	for _, tc := range CountTokens(corpus) {
		if len(tokens) >= opts.Size {
			break
		}
		if tc.Count < opts.MinFrequency {
			// Counts are sorted descending, nothing after this qualifies.
			break
		}
		tokens = append(tokens, tc.Token)
	}
	return newVocabulary(tokens), nil
}

// CountTokens returns token frequencies sorted by descending count, ties in
// first-seen order.
func CountTokens(corpus []model.Sample) []TokenCount {
	counts := make(map[string]int)
	var order []string
	for _, s := range corpus {
		for _, tok := range CountingTokens(s.Text) {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	out := make([]TokenCount, len(order))
	for i, tok := range order {
		out[i] = TokenCount{Token: tok, Count: counts[tok]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// CountingTokens lowercases text, strips characters that are neither word
// characters nor whitespace, and splits on whitespace. Unicode spaces such
// as NBSP separate tokens like ASCII spaces do.
func CountingTokens(text string) []string {
	lowered := cases.Lower(language.Und).String(text)
	spaced := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, lowered)
	return strings.Fields(nonWord.ReplaceAllString(spaced, ""))
}

// FromMap validates a token to id mapping, typically read from a vocabulary
// file. Ids must be contiguous from zero with the reserved tokens at 0..3.
func FromMap(m map[string]int) (*Vocabulary, error) {
	tokens := make([]string, len(m))
	filled := make([]bool, len(m))
	for tok, id := range m {
		if id < 0 || id >= len(m) {
			return nil, fmt.Errorf("token %q has id %d outside 0..%d", tok, id, len(m)-1)
		}
		if filled[id] {
			return nil, fmt.Errorf("id %d is bound to both %q and %q", id, tokens[id], tok)
		}
		tokens[id] = tok
		filled[id] = true
	}
	for id, want := range model.ReservedTokens {
		if id >= len(tokens) || tokens[id] != want {
			return nil, fmt.Errorf("%w: id %d must be %s", ErrReservedToken, id, want)
		}
	}
	return newVocabulary(tokens), nil
}

func newVocabulary(tokens []string) *Vocabulary {
	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		index[tok] = i
	}
	return &Vocabulary{tokens: tokens, index: index}
}

// Len returns the number of entries including reserved tokens.
func (v *Vocabulary) Len() int { return len(v.tokens) }

// ID returns the id bound to token.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.index[token]
	return id, ok
}

// Lookup returns the id bound to token, or the <UNK> id.
func (v *Vocabulary) Lookup(token string) int {
	if id, ok := v.index[token]; ok {
		return id
	}
	return model.UnkID
}

// Token returns the token bound to id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Tokens returns all tokens in id order.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Map returns the vocabulary as a token to id map.
func (v *Vocabulary) Map() map[string]int {
	m := make(map[string]int, len(v.index))
	for tok, id := range v.index {
		m[tok] = id
	}
	return m
}

// MarshalJSON writes a JSON object with entries in id order.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for id, tok := range v.tokens {
		if id > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, tok); err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%d", id)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeKey writes a quoted object key without HTML escaping, so the
// reserved tokens stay readable as "<PAD>".
func writeKey(buf *bytes.Buffer, key string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON reads a token to id object and validates it with FromMap.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
