// Package bitmap is a fixed-size bitset over row positions. The transformer
// uses it to mark which rows of an extract survive deduplication.
package bitmap

import "math/bits"

// Bitmap holds n bits, addressed 0..n-1.
type Bitmap struct {
	words []uint64
	n     int
}

// New returns a bitmap for positions [0, n). n <= 0 yields an empty set.
func New(n int) *Bitmap {
	if n <= 0 {
		return &Bitmap{}
	}
	return &Bitmap{words: make([]uint64, (n+63)/64), n: n}
}

// Len is the number of addressable positions.
func (b *Bitmap) Len() int { return b.n }

// Set marks i. Out-of-range positions are ignored.
func (b *Bitmap) Set(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.words[i>>6] |= 1 << (uint(i) & 63)
}

// Clear unmarks i. Out-of-range positions are ignored.
func (b *Bitmap) Clear(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.words[i>>6] &^= 1 << (uint(i) & 63)
}

// Has reports whether i is marked.
func (b *Bitmap) Has(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// Count returns the number of marked positions.
func (b *Bitmap) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}
