package memutils

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// CeilDiv divides value by divisor, rounding up. divisor must be positive.
func CeilDiv[T constraints.Integer](value, divisor T) T {
	return (value + divisor - 1) / divisor
}

// WordsForBytes returns the number of whole words of wordSize bytes needed to hold sizeInBytes bytes
func WordsForBytes(sizeInBytes, wordSize int) int {
	return CeilDiv(sizeInBytes, wordSize)
}

// CheckPositive returns an error wrapping sentinel if number is not greater than zero
func CheckPositive[T constraints.Integer](number T, name string, sentinel error) error {
	if number <= 0 {
		return cerrors.Wrapf(sentinel, "%s is %d", name, number)
	}
	return nil
}
