package metadata

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HoleList is the compact encoding of an arena's free space handed to a Strategy. Element 0
// is the number of holes, followed by an offset and a length, in words, for each hole in
// ascending offset order.
//
// A nil HoleList means the arena has no holes at all. Each HoleList is a fresh value, so the
// receiver owns it outright and it never aliases the BlockList it was built from.
type HoleList []uint16

func encodeHoleList(blocks []Block) HoleList {
	holeCount := 0
	for i := range blocks {
		if blocks[i].Hole {
			holeCount++
		}
	}

	if holeCount == 0 {
		return nil
	}

	list := make(HoleList, 1, 1+holeCount*2)
	list[0] = uint16(holeCount)

	for _, block := range blocks {
		if !block.Hole {
			continue
		}

		// A fully free arena of MaxArenaWords words is the only hole that overflows
		length := block.Size
		if length > maxEncodedField {
			length = maxEncodedField
		}

		list = append(list, uint16(block.Offset), uint16(length))
	}

	return list
}

// Count returns the number of holes recorded in the list header
func (l HoleList) Count() int {
	if len(l) == 0 {
		return 0
	}

	count := int(l[0])
	if available := (len(l) - 1) / 2; count > available {
		return available
	}
	return count
}

// Hole returns the offset and length in words of the hole at the provided index
func (l HoleList) Hole(index int) (offset, length int) {
	return int(l[index*2+1]), int(l[index*2+2])
}

// Bytes returns the little-endian wire form of the list, two bytes per field
func (l HoleList) Bytes() []byte {
	if l == nil {
		return nil
	}

	data := make([]byte, len(l)*2)
	for i, field := range l {
		binary.LittleEndian.PutUint16(data[i*2:], field)
	}
	return data
}

// DecodeHoleList parses the output of HoleList.Bytes
func DecodeHoleList(data []byte) (HoleList, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if len(data)%2 != 0 {
		return nil, errors.Errorf("hole list data has odd length %d", len(data))
	}

	list := make(HoleList, len(data)/2)
	for i := range list {
		list[i] = binary.LittleEndian.Uint16(data[i*2:])
	}

	if want := 1 + int(list[0])*2; len(list) != want {
		return nil, errors.Errorf("hole list header declares %d holes, which needs %d fields, but %d were present", list[0], want, len(list))
	}

	return list, nil
}
