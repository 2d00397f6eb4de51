package parallel

import (
	"math/bits"
	"sync/atomic"
)

// Bitmap is a fixed-size set of small integers backed by atomic words.
//
// The bitmap uses one bit per index, packed into uint64 words (64 indices
// per word). All methods are safe for concurrent use without external
// synchronization.
//
// A render job uses it to record which stripes have reported completion,
// so that a stripe signalling twice is detected instead of being counted.
type Bitmap struct {
	// words is the atomic bitmap.
	// Word index = idx / 64, bit position = idx % 64.
	words []atomic.Uint64

	// size is the number of valid indices.
	size int
}

// NewBitmap creates a bitmap for indices [0, size). All bits start clear.
// Returns nil if size is negative.
func NewBitmap(size int) *Bitmap {
	if size < 0 {
		return nil
	}
	return &Bitmap{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets bit idx and reports whether it was previously clear.
// This is a lock-free O(1) operation using atomic OR.
// Returns false for out-of-range indices.
func (b *Bitmap) Set(idx int) bool {
	if idx < 0 || idx >= b.size {
		return false
	}
	mask := uint64(1) << (idx & 63)
	old := b.words[idx/64].Or(mask)
	return old&mask == 0
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	count := 0
	for i := range b.words {
		count += bits.OnesCount64(b.words[i].Load())
	}
	return count
}
