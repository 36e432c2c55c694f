package memutils

import "github.com/pkg/errors"

var (
	// ErrInvalidWordSize is returned when a manager is created with a word size of zero or less
	ErrInvalidWordSize error = errors.New("word size must be positive")
	// ErrNoStrategy is returned when a manager is created without a placement strategy
	ErrNoStrategy error = errors.New("a placement strategy is required")
	// ErrArenaTooLarge is returned from Initialize when more than MaxArenaWords words are requested
	ErrArenaTooLarge error = errors.New("arena size exceeds the maximum word count")
	// ErrInvalidArenaSize is returned from Initialize when zero or fewer words are requested
	ErrInvalidArenaSize error = errors.New("arena size must be at least one word")
	// ErrNotReady is returned by operations on a manager that has not been initialized or has been shut down
	ErrNotReady error = errors.New("memory manager is not initialized")
	// ErrInvalidAllocationSize is returned when zero or fewer bytes are requested
	ErrInvalidAllocationSize error = errors.New("allocation size must be positive")
	// ErrAllocationTooLarge is returned when more bytes are requested than the arena holds
	ErrAllocationTooLarge error = errors.New("allocation size exceeds the arena limit")
	// ErrNoFit is returned when the placement strategy could not find a hole large enough for a request
	ErrNoFit error = errors.New("no hole is large enough for the request")
	// ErrDumpFailed marks errors returned while writing the memory map dump
	ErrDumpFailed error = errors.New("failed to write memory map")
)
