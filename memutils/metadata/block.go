package metadata

import "math"

const (
	// MaxArenaWords is the largest arena, in words, that a BlockList will manage. Every offset
	// and length in an encoded HoleList must fit in 16 bits, which this bound guarantees.
	MaxArenaWords = 65536

	// maxEncodedField is the largest value a single HoleList field can carry
	maxEncodedField = math.MaxUint16
)

// BlockType identifies whether a Block is a hole or a live allocation
type BlockType uint32

const (
	BlockTypeHole BlockType = iota
	BlockTypeAllocated
)

var blockTypeMapping = map[BlockType]string{
	BlockTypeHole:      "Hole",
	BlockTypeAllocated: "Allocated",
}

func (t BlockType) String() string {
	return blockTypeMapping[t]
}

// Block is one maximal contiguous run of words in an arena that share the same
// allocation status. Offset and Size are in words.
type Block struct {
	Offset int
	Size   int
	Hole   bool
}

// End returns the offset of the first word after this block
func (b Block) End() int { return b.Offset + b.Size }

// Type returns BlockTypeHole for free blocks and BlockTypeAllocated otherwise
func (b Block) Type() BlockType {
	if b.Hole {
		return BlockTypeHole
	}
	return BlockTypeAllocated
}
