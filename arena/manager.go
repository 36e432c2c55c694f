package arena

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/wordarena/arena/internal/utils"
	"github.com/vkngwrapper/wordarena/memutils"
	"github.com/vkngwrapper/wordarena/memutils/metadata"
)

// Manager simulates a heap allocator over a single word-addressed arena. It owns the arena's
// bytes and the BlockList that partitions them; no two managers share either.
//
// Allocate returns pointers into the arena. They stay valid until they are passed to Free
// or the arena is released with Shutdown or a new Initialize.
type Manager struct {
	logger   *slog.Logger
	wordSize int
	strategy metadata.Strategy
	mutex    utils.OptionalRWMutex

	arena      []byte
	blocks     *metadata.BlockList
	limitWords int
	ready      bool
}

// Initialize creates an arena of sizeInWords words, all of them free. A manager that is
// already initialized is shut down first. Requests for more than metadata.MaxArenaWords words
// or fewer than one word are rejected and leave the manager untouched.
func (m *Manager) Initialize(sizeInWords int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if sizeInWords > metadata.MaxArenaWords {
		return errors.Wrapf(memutils.ErrArenaTooLarge, "requested %d words, the maximum is %d", sizeInWords, metadata.MaxArenaWords)
	}
	err := memutils.CheckPositive(sizeInWords, "sizeInWords", memutils.ErrInvalidArenaSize)
	if err != nil {
		return err
	}

	if m.ready {
		m.shutdown()
	}

	m.arena = make([]byte, sizeInWords*m.wordSize)
	m.blocks.Init(sizeInWords)
	m.limitWords = sizeInWords
	m.ready = true

	m.logger.Debug("Manager::Initialize", slog.Int("Words", sizeInWords), slog.Int("WordSize", m.wordSize))
	return nil
}

// Shutdown releases the arena. Allocations that were never freed are logged as errors.
// Calling Shutdown on a manager that is not initialized does nothing.
func (m *Manager) Shutdown() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.shutdown()
}

func (m *Manager) shutdown() {
	if !m.ready {
		return
	}

	if !m.blocks.IsEmpty() {
		_ = m.blocks.VisitAllRegions(func(offset int, size int, hole bool) error {
			if !hole {
				m.logUnreleasedMemory(offset, size)
			}
			return nil
		})
	}

	m.arena = nil
	m.blocks.Clear()
	m.limitWords = 0
	m.ready = false
}

func (m *Manager) logUnreleasedMemory(offset, size int) {
	m.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
		slog.Int("offset", offset),
		slog.Int("size", size),
		slog.Int("bytes", size*m.wordSize),
	)
}

// Allocate reserves enough whole words to hold sizeInBytes bytes and returns a pointer to the
// first of them. The manager's Strategy chooses the hole; when the hole is larger than the
// request, the allocation takes its front and the rest stays free.
//
// On failure the returned pointer is nil and the arena is unchanged.
func (m *Manager) Allocate(sizeInBytes int) (unsafe.Pointer, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.ready {
		return nil, errors.WithStack(memutils.ErrNotReady)
	}

	err := memutils.CheckPositive(sizeInBytes, "sizeInBytes", memutils.ErrInvalidAllocationSize)
	if err != nil {
		return nil, err
	}

	if limit := m.limitWords * m.wordSize; sizeInBytes > limit {
		return nil, errors.Wrapf(memutils.ErrAllocationTooLarge, "requested %d bytes from an arena of %d bytes", sizeInBytes, limit)
	}

	wordsNeeded := memutils.WordsForBytes(sizeInBytes, m.wordSize)

	offset, found := m.strategy.FindOffset(wordsNeeded, m.blocks.HoleList())
	if !found {
		m.logger.Debug("Manager::Allocate no fit", slog.Int("Words", wordsNeeded), slog.Int("FreeWords", m.blocks.SumFreeWords()))
		return nil, errors.Wrapf(memutils.ErrNoFit, "requested %d words", wordsNeeded)
	}

	err = m.blocks.Alloc(offset, wordsNeeded)
	if err != nil {
		return nil, errors.Wrapf(err, "placement strategy %s chose an unusable offset", strategyName(m.strategy))
	}

	m.logger.Debug("Manager::Allocate", slog.Int("Offset", offset), slog.Int("Words", wordsNeeded))
	return unsafe.Add(unsafe.Pointer(&m.arena[0]), offset*m.wordSize), nil
}

// Free releases the allocation that starts at ptr and merges the freed words with any
// neighboring holes. nil pointers, pointers outside the arena, and pointers that are not the
// start of a live allocation are ignored.
func (m *Manager) Free(ptr unsafe.Pointer) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.ready || ptr == nil {
		return
	}

	base := uintptr(unsafe.Pointer(&m.arena[0]))
	address := uintptr(ptr)
	if address < base || address-base >= uintptr(len(m.arena)) {
		m.logger.Debug("Manager::Free ignored pointer outside the arena", slog.Any("Pointer", ptr))
		return
	}

	offset := int(address-base) / m.wordSize
	if !m.blocks.Free(offset) {
		m.logger.Debug("Manager::Free ignored pointer with no allocation", slog.Int("Offset", offset))
		return
	}

	m.logger.Debug("Manager::Free", slog.Int("Offset", offset))
}

// SetStrategy replaces the placement strategy used by later calls to Allocate. A nil
// strategy is ignored.
func (m *Manager) SetStrategy(strategy metadata.Strategy) {
	if strategy == nil {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.strategy = strategy
}

// Strategy returns the current placement strategy
func (m *Manager) Strategy() metadata.Strategy {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.strategy
}

// DumpMemoryMap writes the arena's holes to the file at path, creating or truncating it.
// See WriteMemoryMap for the format. Despite the name, allocated blocks are not listed.
// Errors opening or writing the file are marked with memutils.ErrDumpFailed.
func (m *Manager) DumpMemoryMap(path string) (err error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return errors.WithStack(memutils.ErrNotReady)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "opening %s", path), memutils.ErrDumpFailed)
	}
	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Mark(errors.Wrapf(closeErr, "closing %s", path), memutils.ErrDumpFailed)
		}
	}()

	return m.writeMemoryMap(file)
}

// WriteMemoryMap writes every hole in the arena as "[start, length]", in words, joined by
// " - " in ascending offset order, with no trailing separator or newline.
func (m *Manager) WriteMemoryMap(w io.Writer) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return errors.WithStack(memutils.ErrNotReady)
	}

	return m.writeMemoryMap(w)
}

func (m *Manager) writeMemoryMap(w io.Writer) error {
	_, err := io.WriteString(w, m.blocks.HoleMap())
	if err != nil {
		return errors.Mark(errors.Wrap(err, "writing memory map"), memutils.ErrDumpFailed)
	}
	return nil
}

// HoleList returns a freshly encoded list of the arena's holes, or nil if the arena has no
// holes or the manager is not initialized.
func (m *Manager) HoleList() metadata.HoleList {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return nil
	}
	return m.blocks.HoleList()
}

// Bitmap returns a freshly encoded allocation bitmap of the arena, or nil if the manager is
// not initialized.
func (m *Manager) Bitmap() metadata.Bitmap {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return nil
	}
	return m.blocks.Bitmap()
}

// Blocks returns a copy of the arena's blocks in offset order
func (m *Manager) Blocks() []metadata.Block {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.blocks.Blocks()
}

// WordSize returns the allocation granularity in bytes
func (m *Manager) WordSize() int { return m.wordSize }

// ArenaBase returns a pointer to the first byte of the arena, or nil if the manager is not
// initialized
func (m *Manager) ArenaBase() unsafe.Pointer {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return nil
	}
	return unsafe.Pointer(&m.arena[0])
}

// LimitWords returns the size of the arena in words, or 0 if the manager is not initialized
func (m *Manager) LimitWords() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.limitWords
}

// IsReady returns true between a successful Initialize and the next Shutdown
func (m *Manager) IsReady() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.ready
}

// AllocationCount returns the number of live allocations
func (m *Manager) AllocationCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.blocks.AllocationCount()
}

// SumFreeWords returns the number of free words in the arena
func (m *Manager) SumFreeWords() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.blocks.SumFreeWords()
}

// Validate performs internal consistency checks on the arena's blocks
func (m *Manager) Validate() error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.ready && len(m.arena) != m.blocks.Size()*m.wordSize {
		return errors.Newf("arena has %d bytes, but the block list covers %d words of %d bytes", len(m.arena), m.blocks.Size(), m.wordSize)
	}

	return m.blocks.Validate()
}

func strategyName(strategy metadata.Strategy) string {
	if stringer, ok := strategy.(fmt.Stringer); ok {
		return stringer.String()
	}
	return "custom"
}
