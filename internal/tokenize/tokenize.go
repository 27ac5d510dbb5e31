// Package tokenize converts normalized text into fixed-length id sequences.
package tokenize

import (
	"fmt"
	"strings"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// DefaultMaxLength is the sequence length consumed by the classifier.
const DefaultMaxLength = 50

// Tokenizer encodes text against a fixed vocabulary.
type Tokenizer struct {
	vocab     *vocab.Vocabulary
	maxLength int
}

// New returns a tokenizer producing sequences of exactly maxLength ids.
func New(v *vocab.Vocabulary, maxLength int) (*Tokenizer, error) {
	if v == nil {
		return nil, fmt.Errorf("tokenizer: vocabulary is required")
	}
	if maxLength < 0 {
		return nil, fmt.Errorf("tokenizer: max length must be >= 0, got %d", maxLength)
	}
	return &Tokenizer{vocab: v, maxLength: maxLength}, nil
}

// MaxLength returns the output sequence length.
func (t *Tokenizer) MaxLength() int { return t.maxLength }

// Encode maps text to <START>, token ids (<UNK> when absent), <END>, then
// truncates or right-pads with <PAD> to MaxLength. A long text loses its
// <END> id to truncation.
func (t *Tokenizer) Encode(text string) []int {
	words := strings.Fields(text)

	ids := make([]int, 0, max(len(words)+2, t.maxLength))
	ids = append(ids, model.StartID)
	for _, w := range words {
		ids = append(ids, t.vocab.Lookup(w))
	}
	ids = append(ids, model.EndID)

	if len(ids) > t.maxLength {
		return ids[:t.maxLength:t.maxLength]
	}
	for len(ids) < t.maxLength {
		ids = append(ids, model.PadID)
	}
	return ids
}

// EncodeSample encodes a sample's text and keeps its label.
func (t *Tokenizer) EncodeSample(s model.Sample) model.TokenizedSample {
	return model.TokenizedSample{IDs: t.Encode(s.Text), Label: s.Label}
}

// EncodeCorpus encodes every sample in order.
func (t *Tokenizer) EncodeCorpus(corpus []model.Sample) []model.TokenizedSample {
	out := make([]model.TokenizedSample, len(corpus))
	for i, s := range corpus {
		out[i] = t.EncodeSample(s)
	}
	return out
}

// Decode maps ids back to tokens, dropping <PAD>. Unknown ids render as
// <UNK>.
func (t *Tokenizer) Decode(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == model.PadID {
			continue
		}
		tok, ok := t.vocab.Token(id)
		if !ok {
			tok = model.UnkToken
		}
		out = append(out, tok)
	}
	return out
}

// Encode is a convenience wrapper for one-off encoding.
func Encode(text string, v *vocab.Vocabulary, maxLength int) ([]int, error) {
	t, err := New(v, maxLength)
	if err != nil {
		return nil, err
	}
	return t.Encode(text), nil
}
