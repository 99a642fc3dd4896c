// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package tokenset provides a dense, fixed-size bitset implementation of
// toktrie.TokenSet, sized once at construction to a vocabulary's
// VocabSize+1 (the extra bit absorbs the bias engine's sentinel id).
package tokenset

import (
	"math/bits"

	"github.com/v-jkegler/toktrie"
)

const wordSize = 64

// Set is a dense bitset over token ids in [0, size), implementing
// toktrie.TokenSet.
type Set struct {
	size  int
	words []uint64
}

var _ toktrie.TokenSet = (*Set)(nil)

// New returns a Set with every id in [0, size) initially disallowed.
// Callers computing bias for a vocabulary of VocabSize tokens should pass
// VocabSize+1, to leave room for the bias engine's sentinel id.
func New(size int) *Set {
	return &Set{
		size:  size,
		words: make([]uint64, wordsNeeded(size)),
	}
}

func wordsNeeded(size int) int {
	return (size + wordSize - 1) / wordSize
}

// Allow marks id as allowed. Ids outside [0, size) are silently ignored.
func (s *Set) Allow(id toktrie.TokenID) {
	if int(id) >= s.size {
		return
	}
	s.words[id/wordSize] |= 1 << (id % wordSize)
}

// Disallow marks id as not allowed.
func (s *Set) Disallow(id toktrie.TokenID) {
	if int(id) >= s.size {
		return
	}
	s.words[id/wordSize] &^= 1 << (id % wordSize)
}

// SetAll marks every id allowed (true) or none (false).
func (s *Set) SetAll(allowed bool) {
	var fill uint64
	if allowed {
		fill = ^uint64(0)
	}
	for i := range s.words {
		s.words[i] = fill
	}
	if allowed {
		s.maskTrailingBits()
	}
}

// maskTrailingBits clears the bits in the final word past size, so NumSet
// and IsAllowed stay consistent after a SetAll(true) on a size that isn't a
// multiple of 64.
func (s *Set) maskTrailingBits() {
	if s.size%wordSize == 0 || len(s.words) == 0 {
		return
	}
	last := len(s.words) - 1
	validBits := uint(s.size % wordSize)
	s.words[last] &= (1 << validBits) - 1
}

// IsAllowed reports whether id is currently marked allowed. Ids outside
// [0, size) are reported as not allowed.
func (s *Set) IsAllowed(id toktrie.TokenID) bool {
	if int(id) >= s.size {
		return false
	}
	return s.words[id/wordSize]&(1<<(id%wordSize)) != 0
}

// NumSet returns the number of ids currently marked allowed.
func (s *Set) NumSet() int {
	var n int
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Negated returns a new Set with every id's membership flipped.
func (s *Set) Negated() toktrie.TokenSet {
	out := New(s.size)
	for i, w := range s.words {
		out.words[i] = ^w
	}
	out.maskTrailingBits()
	return out
}

// Size returns the number of addressable ids, as passed to New.
func (s *Set) Size() int {
	return s.size
}
