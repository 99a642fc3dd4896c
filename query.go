// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import "fmt"

// GreedyTokenize performs longest-prefix-match segmentation: it walks the
// trie as far as possible, remembering the position of the longest token
// seen so far, and backtracks to that position whenever no further byte
// matches or the input ends part-way down a path. It requires every single byte 0x00-0xFF to be reachable as a
// token from the root; if it is not, it returns an error wrapping
// ErrMissingByteCoverage instead of the undefined behavior described in
// spec.md's Open Questions.
func (t *Trie) GreedyTokenize(data []byte) ([]TokenID, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out []TokenID
	n := t.root()
	var lastTok TokenID
	haveLastTok := false
	lastIdx := 0
	idx := 0

	for idx < len(data) {
		c, ok := t.ChildAtByte(n, data[idx])
		if ok {
			if id, has := t.tokenIDAt(c); has {
				lastTok = id
				haveLastTok = true
				lastIdx = idx
			}
			n = c
		} else {
			if !haveLastTok {
				return nil, fmt.Errorf("toktrie: byte 0x%02x at position %d: %w", data[idx], idx, ErrMissingByteCoverage)
			}
			out = append(out, lastTok)
			idx = lastIdx
			n = t.root()
			haveLastTok = false
		}
		idx++
	}

	if !haveLastTok {
		return nil, fmt.Errorf("toktrie: byte 0x%02x at position %d: %w", data[lastIdx], lastIdx, ErrMissingByteCoverage)
	}
	out = append(out, lastTok)
	if lastIdx+1 < len(data) {
		// The input ended below the last token seen; tokenize the bytes
		// after that token the same way.
		rest, err := t.GreedyTokenize(data[lastIdx+1:])
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

// AllSubtokens returns, for every starting offset in data, every token id
// encountered while walking descendants from that offset (terminating each
// inner walk on the first byte with no matching child).
func (t *Trie) AllSubtokens(data []byte) []TokenID {
	var out []TokenID
	for start := range data {
		n := t.root()
		for i := start; i < len(data); i++ {
			c, ok := t.ChildAtByte(n, data[i])
			if !ok {
				break
			}
			n = c
			if id, has := t.tokenIDAt(c); has {
				out = append(out, id)
			}
		}
	}
	return out
}

// PrefixTokenID returns the id and length of the longest prefix of data that
// is itself a token, or (0, 0) if no prefix of data is a token.
func (t *Trie) PrefixTokenID(data []byte) (TokenID, int) {
	n := t.root()
	var bestTok TokenID
	bestLen := 0
	found := false
	for i, b := range data {
		c, ok := t.ChildAtByte(n, b)
		if !ok {
			break
		}
		n = c
		if id, has := t.tokenIDAt(c); has {
			bestTok = id
			bestLen = i + 1
			found = true
		}
	}
	if !found {
		return 0, 0
	}
	return bestTok, bestLen
}

// HasExtensions reports whether node n has any children, i.e., whether any
// vocabulary token has n's byte path as a strict prefix.
func (t *Trie) HasExtensions(n nodeRef) bool {
	return t.nodes[n].subtreeSize() > 1
}
