package synth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// trailingCutset holds the characters removed from the end of a text.
// The space is included so a strip never leaves a dangling separator.
const trailingCutset = ".,!? "

// Normalize collapses whitespace runs, lowercases, and strips trailing
// '.', ',', '!' and '?'. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	lowered := cases.Lower(language.Und).String(collapsed)
	return strings.TrimRight(lowered, trailingCutset)
}
