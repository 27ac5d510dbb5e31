package pipeline

import (
	"sort"
	"strings"

	"github.com/rcliao/triage-corpus/internal/model"
)

// Report summarizes a corpus.
type Report struct {
	TotalSamples     int             `json:"total_samples"`
	Categories       int             `json:"categories"`
	CategoryCounts   map[string]int  `json:"category_counts"`
	SyntheticSamples int             `json:"synthetic_samples"`
	WordLength       WordLengthStats `json:"word_length"`
}

// WordLengthStats describes sample lengths in whitespace-separated words.
type WordLengthStats struct {
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Median  float64 `json:"median"`
}

// Summarize computes the corpus report. An empty corpus yields zero stats.
func Summarize(corpus []model.Sample) Report {
	report := Report{
		TotalSamples:   len(corpus),
		CategoryCounts: make(map[string]int),
	}
	if len(corpus) == 0 {
		return report
	}

	lengths := make([]int, len(corpus))
	total := 0
	for i, s := range corpus {
		report.CategoryCounts[s.Category]++
		if s.Synthetic {
			report.SyntheticSamples++
		}
		lengths[i] = len(strings.Fields(s.Text))
		total += lengths[i]
	}
	report.Categories = len(report.CategoryCounts)

	sort.Ints(lengths)
	report.WordLength = WordLengthStats{
		Average: float64(total) / float64(len(lengths)),
		Min:     lengths[0],
		Max:     lengths[len(lengths)-1],
		Median:  median(lengths),
	}
	return report
}

func median(sorted []int) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
