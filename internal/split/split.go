// Package split partitions a corpus into train and validation subsets.
package split

import (
	"fmt"
	"math/rand"

	"github.com/rcliao/triage-corpus/internal/model"
)

const (
	DefaultValidationRatio = 0.2
	DefaultSeed            = 42
)

// Permutation returns a seeded shuffle of 0..n-1. The same n and seed always
// produce the same order.
func Permutation(n int, seed int64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}

// CutPoint returns floor(n * (1 - validationRatio)).
func CutPoint(n int, validationRatio float64) int {
	return int(float64(n) * (1 - validationRatio))
}

// Partition shuffles items with seed and cuts them into train and
// validation slices. The input slice is not reordered.
func Partition[T any](items []T, validationRatio float64, seed int64) (train, validation []T, err error) {
	if validationRatio < 0 || validationRatio > 1 {
		return nil, nil, fmt.Errorf("validation ratio must be between 0 and 1, got %v", validationRatio)
	}

	perm := Permutation(len(items), seed)
	cut := CutPoint(len(items), validationRatio)

	train = make([]T, 0, cut)
	validation = make([]T, 0, len(items)-cut)
	for i, src := range perm {
		if i < cut {
			train = append(train, items[src])
		} else {
			validation = append(validation, items[src])
		}
	}
	return train, validation, nil
}

// Split partitions a corpus with a fixed seed.
func Split(corpus []model.Sample, validationRatio float64, seed int64) (model.Split, error) {
	train, validation, err := Partition(corpus, validationRatio, seed)
	if err != nil {
		return model.Split{}, err
	}
	return model.Split{Train: train, Validation: validation}, nil
}

// Assign returns, for each of n corpus positions, the partition it lands in
// under the same shuffle Split uses.
func Assign(n int, validationRatio float64, seed int64) ([]string, error) {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	_, validation, err := Partition(positions, validationRatio, seed)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		out[i] = model.SplitTrain
	}
	for _, pos := range validation {
		out[pos] = model.SplitValidation
	}
	return out, nil
}
