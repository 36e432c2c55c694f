package metadata

import (
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/wordarena/memutils"
	"golang.org/x/exp/slices"
)

// BlockList partitions an arena of words into adjacent holes and allocations. Blocks are
// kept in a slice ordered by offset and are always referred to by index, so splitting and
// coalescing never hold on to a block across a mutation of the slice.
//
// After every call to Init, Alloc, Free, and Clear the list satisfies three invariants:
// each block ends where the next one begins, no two neighboring blocks are both holes,
// and every block is at least one word long.
type BlockList struct {
	size   int
	blocks []Block

	// offset -> size of every live allocation
	allocations     *swiss.Map[int, int]
	allocationWords int
}

var _ memutils.Validatable = &BlockList{}

// NewBlockList creates an empty BlockList. Init must be called before it is used.
func NewBlockList() *BlockList {
	return &BlockList{
		allocations: swiss.NewMap[int, int](42),
	}
}

// Init discards any existing blocks and sizes the list to sizeInWords words, all of them
// in a single hole.
func (l *BlockList) Init(sizeInWords int) {
	l.Clear()

	l.size = sizeInWords
	l.blocks = append(l.blocks, Block{Offset: 0, Size: sizeInWords, Hole: true})
}

// Clear removes every block, leaving the list with a size of zero
func (l *BlockList) Clear() {
	l.size = 0
	l.blocks = l.blocks[:0]
	l.allocations = swiss.NewMap[int, int](42)
	l.allocationWords = 0
}

// Size returns the number of words this list was initialized with
func (l *BlockList) Size() int { return l.size }

// Len returns the number of blocks currently in the list
func (l *BlockList) Len() int { return len(l.blocks) }

// Block returns the block at the provided index
func (l *BlockList) Block(index int) Block { return l.blocks[index] }

// Blocks returns a copy of every block in the list, in offset order
func (l *BlockList) Blocks() []Block {
	return slices.Clone(l.blocks)
}

// AllocationCount returns the number of live allocations
func (l *BlockList) AllocationCount() int { return l.allocations.Count() }

// IsEmpty returns true if the list has no live allocations
func (l *BlockList) IsEmpty() bool { return l.allocations.Count() == 0 }

// SumFreeWords returns the total number of words across every hole
func (l *BlockList) SumFreeWords() int { return l.size - l.allocationWords }

// HoleCount returns the number of holes in the list
func (l *BlockList) HoleCount() int {
	count := 0
	for i := range l.blocks {
		if l.blocks[i].Hole {
			count++
		}
	}
	return count
}

// AllocationSize returns the size in words of the live allocation starting at offset
func (l *BlockList) AllocationSize(offset int) (int, bool) {
	return l.allocations.Get(offset)
}

func (l *BlockList) indexOf(offset int) int {
	return slices.IndexFunc(l.blocks, func(b Block) bool {
		return b.Offset == offset
	})
}

// Alloc marks words words starting at offset as allocated. offset must be the start of a
// hole of at least words words. When the hole is larger than the request, the front of the
// hole becomes the allocation and the remainder stays a hole directly after it.
func (l *BlockList) Alloc(offset, words int) error {
	if words < 1 {
		return errors.Errorf("invalid allocation size: %d", words)
	}

	index := l.indexOf(offset)
	if index < 0 {
		return errors.Errorf("no block starts at offset %d", offset)
	}

	block := &l.blocks[index]
	if !block.Hole {
		return errors.Errorf("block at offset %d is already allocated", offset)
	}
	if block.Size < words {
		return errors.Errorf("hole at offset %d has %d words but %d were requested", offset, block.Size, words)
	}

	if block.Size > words {
		block.Offset += words
		block.Size -= words
		l.blocks = slices.Insert(l.blocks, index, Block{Offset: offset, Size: words, Hole: false})
	} else {
		block.Hole = false
	}

	l.allocations.Put(offset, words)
	l.allocationWords += words

	memutils.DebugValidate(l)
	return nil
}

// Free turns the allocation starting at offset back into a hole and merges it with any
// neighboring holes. It returns false without changing anything if no live allocation
// starts at offset.
func (l *BlockList) Free(offset int) bool {
	size, ok := l.allocations.Get(offset)
	if !ok {
		return false
	}

	index := l.indexOf(offset)
	if index < 0 {
		panic("allocation index refers to an offset with no block")
	}

	l.allocations.Delete(offset)
	l.allocationWords -= size
	l.blocks[index].Hole = true

	for index+1 < len(l.blocks) && l.blocks[index+1].Hole {
		l.blocks[index].Size += l.blocks[index+1].Size
		l.blocks = slices.Delete(l.blocks, index+1, index+2)
	}

	// After the forward pass only one hole can sit before this one
	if index > 0 && l.blocks[index-1].Hole {
		l.blocks[index-1].Size += l.blocks[index].Size
		l.blocks = slices.Delete(l.blocks, index, index+1)
	}

	memutils.DebugValidate(l)
	return true
}

// Validate performs internal consistency checks on the list
func (l *BlockList) Validate() error {
	if l.size > MaxArenaWords {
		return errors.Errorf("the list is sized to %d words, more than the maximum of %d", l.size, MaxArenaWords)
	}

	if l.size == 0 {
		if len(l.blocks) != 0 {
			return errors.Errorf("an empty list contains %d blocks", len(l.blocks))
		}
		if l.allocations.Count() != 0 {
			return errors.Errorf("an empty list tracks %d allocations", l.allocations.Count())
		}
		return nil
	}

	nextOffset := 0
	allocCount := 0
	allocWords := 0

	for i, block := range l.blocks {
		if block.Size < 1 {
			return errors.Errorf("block at offset %d has invalid size %d", block.Offset, block.Size)
		}

		if block.Offset != nextOffset {
			return errors.Errorf("block at index %d starts at offset %d, but the previous block ends at offset %d", i, block.Offset, nextOffset)
		}

		if block.Hole {
			if i > 0 && l.blocks[i-1].Hole {
				return errors.Errorf("holes at offsets %d and %d are adjacent but were not merged", l.blocks[i-1].Offset, block.Offset)
			}
		} else {
			allocCount++
			allocWords += block.Size

			size, ok := l.allocations.Get(block.Offset)
			if !ok {
				return errors.Errorf("allocated block at offset %d is missing from the allocation index", block.Offset)
			}
			if size != block.Size {
				return errors.Errorf("allocated block at offset %d has size %d, but the allocation index has size %d", block.Offset, block.Size, size)
			}
		}

		nextOffset = block.End()
	}

	if nextOffset != l.size {
		return errors.Errorf("the full size of the list is %d, but the blocks only added up to %d", l.size, nextOffset)
	}

	if allocCount != l.allocations.Count() {
		return errors.Errorf("the allocation index holds %d allocations, but the blocks only contain %d", l.allocations.Count(), allocCount)
	}

	if allocWords != l.allocationWords {
		return errors.Errorf("the list has %d allocated words, but the allocated blocks only added up to %d", l.allocationWords, allocWords)
	}

	return nil
}

// VisitAllRegions calls the provided callback once for each block in the list, in offset order.
// Iteration stops at the first error, which is returned.
func (l *BlockList) VisitAllRegions(handleBlock func(offset int, size int, hole bool) error) error {
	for _, block := range l.blocks {
		err := handleBlock(block.Offset, block.Size, block.Hole)
		if err != nil {
			return err
		}
	}

	return nil
}

// HoleList encodes every hole in the list. It returns nil when the list has no holes.
func (l *BlockList) HoleList() HoleList {
	return encodeHoleList(l.blocks)
}

// Occupancy returns a bitmap with one entry for every allocated word
func (l *BlockList) Occupancy() *roaring.Bitmap {
	occupancy := roaring.New()
	for _, block := range l.blocks {
		if !block.Hole {
			occupancy.AddRange(uint64(block.Offset), uint64(block.End()))
		}
	}

	return occupancy
}

// Bitmap encodes the allocation status of every word in the list
func (l *BlockList) Bitmap() Bitmap {
	return encodeBitmap(l.size, l.Occupancy())
}

// HoleMap renders every hole as "[offset, size]", joined with " - ". Allocated blocks are
// not included.
func (l *BlockList) HoleMap() string {
	var sb strings.Builder

	for _, block := range l.blocks {
		if !block.Hole {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString(" - ")
		}
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(block.Offset))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(block.Size))
		sb.WriteByte(']')
	}

	return sb.String()
}

// AddStatistics sums this list's allocation statistics into stats
func (l *BlockList) AddStatistics(stats *memutils.Statistics) {
	stats.ArenaCount++
	stats.AllocationCount += l.allocations.Count()
	stats.ArenaWords += l.size
	stats.AllocationWords += l.allocationWords
}

// AddDetailedStatistics sums this list's allocation statistics into stats
func (l *BlockList) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.ArenaCount++
	stats.ArenaWords += l.size

	for _, block := range l.blocks {
		if block.Hole {
			stats.AddHole(block.Size)
		} else {
			stats.AddAllocation(block.Size)
		}
	}
}

// BlockJsonData populates a json object with information about this list
func (l *BlockList) BlockJsonData(json *jwriter.ObjectState) {
	json.Name("TotalWords").Int(l.size)
	json.Name("FreeWords").Int(l.SumFreeWords())
	json.Name("Allocations").Int(l.AllocationCount())
	json.Name("Holes").Int(l.HoleCount())
}

// RegionsJsonData writes every block in the list as an array of json objects
func (l *BlockList) RegionsJsonData(json *jwriter.ArrayState) {
	for _, block := range l.blocks {
		obj := json.Object()
		obj.Name("Offset").Int(block.Offset)
		obj.Name("Type").String(block.Type().String())
		obj.Name("Size").Int(block.Size)
		obj.End()
	}
}
