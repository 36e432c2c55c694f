package arena

import (
	"io"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/wordarena/arena/internal/utils"
	"github.com/vkngwrapper/wordarena/memutils"
	"github.com/vkngwrapper/wordarena/memutils/metadata"
)

// CreateFlags indicate specific manager behaviors to activate or deactivate
type CreateFlags int32

const (
	// ManagerCreateSynchronized guards every Manager method with a single mutex so the
	// manager can be shared between goroutines. Without it the consumer must guarantee the
	// manager is only used from one goroutine at a time.
	ManagerCreateSynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	ManagerCreateSynchronized: "ManagerCreateSynchronized",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}
	return createFlagsMapping[f]
}

// CreateOptions contains optional settings when creating a Manager
type CreateOptions struct {
	// Flags indicates specific manager behaviors to activate or deactivate
	Flags CreateFlags
}

// New creates a new Manager. The manager holds no arena until Initialize is called.
//
// logger - Receives debug records for allocations and frees, and error records for
// allocations that are still live when the arena is shut down. May be nil.
//
// wordSize - The allocation granularity in bytes. Must be positive, and small enough that
// an arena of metadata.MaxArenaWords words fits in an int.
//
// strategy - Chooses the hole each allocation is placed in. See metadata.BestFit
// and metadata.WorstFit.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, wordSize int, strategy metadata.Strategy, options CreateOptions) (*Manager, error) {
	err := memutils.CheckPositive(wordSize, "wordSize", memutils.ErrInvalidWordSize)
	if err != nil {
		return nil, err
	}
	if wordSize > math.MaxInt/metadata.MaxArenaWords {
		return nil, errors.Wrapf(memutils.ErrInvalidWordSize, "wordSize %d does not fit an arena of %d words", wordSize, metadata.MaxArenaWords)
	}

	if strategy == nil {
		return nil, errors.WithStack(memutils.ErrNoStrategy)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		logger:   logger,
		wordSize: wordSize,
		strategy: strategy,
		mutex: utils.OptionalRWMutex{
			UseMutex: options.Flags&ManagerCreateSynchronized != 0,
		},
		blocks: metadata.NewBlockList(),
	}, nil
}
