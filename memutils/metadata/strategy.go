package metadata

//go:generate mockgen -source strategy.go -destination mocks/strategy.go -package mock_metadata

import (
	"math"

	"github.com/pkg/errors"
)

// Strategy chooses which hole should satisfy an allocation request. FindOffset receives the
// request size in words and the arena's current HoleList, and returns the word offset of the
// chosen hole. It returns false if no hole can hold the request.
//
// Implementations must only read the HoleList. The hole at the returned offset must be at
// least wordsNeeded words long; the memory manager applies the result.
type Strategy interface {
	FindOffset(wordsNeeded int, holes HoleList) (offset int, ok bool)
}

// StrategyFunc adapts a plain function to the Strategy interface
type StrategyFunc func(wordsNeeded int, holes HoleList) (int, bool)

func (f StrategyFunc) FindOffset(wordsNeeded int, holes HoleList) (int, bool) {
	return f(wordsNeeded, holes)
}

type bestFitStrategy struct{}

func (bestFitStrategy) String() string { return "best-fit" }

// FindOffset selects the smallest hole that can hold the request. The first such hole in
// offset order wins ties.
func (bestFitStrategy) FindOffset(wordsNeeded int, holes HoleList) (int, bool) {
	offset := -1
	minFitSize := math.MaxInt

	for i := 0; i < holes.Count(); i++ {
		holeOffset, length := holes.Hole(i)
		if length >= wordsNeeded && length < minFitSize {
			offset = holeOffset
			minFitSize = length
		}
	}

	return offset, offset >= 0
}

type worstFitStrategy struct{}

func (worstFitStrategy) String() string { return "worst-fit" }

// FindOffset selects the largest hole that can hold the request. The first such hole in
// offset order wins ties.
func (worstFitStrategy) FindOffset(wordsNeeded int, holes HoleList) (int, bool) {
	offset := -1
	maxFitSize := -1

	for i := 0; i < holes.Count(); i++ {
		holeOffset, length := holes.Hole(i)
		if length >= wordsNeeded && length > maxFitSize {
			offset = holeOffset
			maxFitSize = length
		}
	}

	return offset, offset >= 0
}

var (
	// BestFit places each request in the smallest hole that can hold it
	BestFit Strategy = bestFitStrategy{}
	// WorstFit places each request in the largest hole that can hold it
	WorstFit Strategy = worstFitStrategy{}
)

var strategyMapping = map[string]Strategy{
	"best-fit":  BestFit,
	"worst-fit": WorstFit,
}

// StrategyByName returns the built-in Strategy registered under name
func StrategyByName(name string) (Strategy, error) {
	strategy, ok := strategyMapping[name]
	if !ok {
		return nil, errors.Errorf("unknown placement strategy: %q", name)
	}
	return strategy, nil
}
