package metadata

import (
	"encoding/binary"

	"github.com/RoaringBitmap/roaring/v2"
)

// BitmapHeaderSize is the number of bytes before the bitmap payload
const BitmapHeaderSize = 2

// Bitmap is the packed allocation map of an arena: a two-byte little-endian count of payload
// bytes followed by one bit per word, 1 for allocated and 0 for free. Within each payload
// byte the lowest bit belongs to the lowest word, and unused high bits of the final byte
// are zero.
type Bitmap []byte

func encodeBitmap(totalWords int, occupancy *roaring.Bitmap) Bitmap {
	payloadLen := (totalWords + 7) / 8

	bitmap := make(Bitmap, BitmapHeaderSize+payloadLen)
	binary.LittleEndian.PutUint16(bitmap, uint16(payloadLen))

	payload := bitmap[BitmapHeaderSize:]
	iter := occupancy.Iterator()
	for iter.HasNext() {
		word := iter.Next()
		payload[word/8] |= 1 << (word % 8)
	}

	return bitmap
}

// PayloadLen returns the number of payload bytes recorded in the header
func (b Bitmap) PayloadLen() int {
	if len(b) < BitmapHeaderSize {
		return 0
	}
	return int(binary.LittleEndian.Uint16(b))
}

// Payload returns the packed bits that follow the header
func (b Bitmap) Payload() []byte {
	if len(b) < BitmapHeaderSize {
		return nil
	}
	return b[BitmapHeaderSize:]
}

// Allocated reports whether the word at the provided index is marked as allocated
func (b Bitmap) Allocated(word int) bool {
	payload := b.Payload()
	if word < 0 || word/8 >= len(payload) {
		return false
	}
	return payload[word/8]&(1<<(word%8)) != 0
}
