// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import "github.com/sirupsen/logrus"

// Trie bundles the packed node array, the token byte store, vocabulary
// metadata, the duplicate-token map, and the cached max token length. It is
// constructed once (via Builder.Build or Load) and is immutable afterward;
// any number of goroutines may share one Trie for concurrent reads without
// synchronization. Recognizers driving a bias computation, by contrast, are
// not shared — see the package doc.
type Trie struct {
	info VocabInfo

	nodes       []packedNode
	tokenData   []byte
	tokenOffset []tokenDescriptor

	duplicateMap map[TokenID][]TokenID
	maxTokenLen  int

	buildLog *logrus.Entry
	metrics  *metricsRecorder
}

// Info returns the trie's vocabulary metadata.
func (t *Trie) Info() VocabInfo { return t.info }

// VocabSize returns the number of addressable token ids.
func (t *Trie) VocabSize() int { return t.info.VocabSize }

// MaxTokenLen returns the length in bytes of the longest token in the
// vocabulary.
func (t *Trie) MaxTokenLen() int { return t.maxTokenLen }

// WithInfo returns a shallow clone of t with info replaced. The packed node
// array and token byte store are shared, not copied; this is the mechanism
// for cheaply rebinding, e.g., TokEOS to TokEndOfTurn for chat mode.
func (t *Trie) WithInfo(info VocabInfo) *Trie {
	clone := *t
	clone.info = info
	return &clone
}

// root returns the node at index 0.
func (t *Trie) root() nodeRef { return 0 }

// Root returns the root node reference (index 0); a Trie always has at
// least a root node.
func (t *Trie) Root() nodeRef { return t.root() }

// nextNode returns the index just past n's subtree: the next sibling, or,
// if n was the last child, the next ancestor-sibling.
func (t *Trie) nextNode(n nodeRef) nodeRef {
	return n + nodeRef(t.nodes[n].subtreeSize())
}

// NodeChildIter lazily yields the children of a node by stepping
// current += current.subtree_size, avoiding an allocation for the common
// case of iterating without collecting.
type NodeChildIter struct {
	t       *Trie
	cur     nodeRef
	end     nodeRef
	started bool
}

// NodeChildren returns a lazy iterator over n's direct children.
func (t *Trie) NodeChildren(n nodeRef) *NodeChildIter {
	return &NodeChildIter{t: t, cur: n + 1, end: t.nextNode(n)}
}

// Next advances the iterator and returns the next child, or false when
// exhausted.
func (it *NodeChildIter) Next() (nodeRef, bool) {
	if it.cur >= it.end {
		return 0, false
	}
	child := it.cur
	it.cur = it.t.nextNode(child)
	return child, true
}

// ChildAtByte returns n's child labeled b, if any. Children are sorted by
// byte ascending; fanout is typically small, so this scans linearly. (A
// sufficiently large vocabulary's root node can have up to 256 children;
// even there a linear scan over <=256 comparisons is cheap relative to a
// single recognizer call.)
func (t *Trie) ChildAtByte(n nodeRef, b byte) (nodeRef, bool) {
	end := t.nextNode(n)
	for c := n + 1; c < end; c = t.nextNode(c) {
		eb := t.nodes[c].edgeByte()
		if eb == b {
			return c, true
		}
		if eb > b {
			break // children are sorted ascending; no later child can match
		}
	}
	return 0, false
}

// ChildAtBytes walks ChildAtByte for each byte in word, returning the
// resulting node if the full path exists.
func (t *Trie) ChildAtBytes(n nodeRef, word []byte) (nodeRef, bool) {
	cur := n
	for _, b := range word {
		next, ok := t.ChildAtByte(cur, b)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// tokenIDAt returns the node's token id, or (0, false) if it doesn't
// terminate a token.
func (t *Trie) tokenIDAt(n nodeRef) (TokenID, bool) {
	id := t.nodes[n].tokenID()
	return id, id != noToken
}

// TokenBytes returns the byte content of id, or nil if id is out of range.
func (t *Trie) TokenBytes(id TokenID) []byte {
	if int(id) < 0 || int(id) >= len(t.tokenOffset) {
		return nil
	}
	d := t.tokenOffset[id]
	return t.tokenData[d.offset() : d.offset()+d.length()]
}

// IsSpecial reports whether id's content begins with the reserved
// special-token prefix byte (0xFF).
func (t *Trie) IsSpecial(id TokenID) bool {
	b := t.TokenBytes(id)
	return len(b) > 0 && b[0] == specialPrefixByte
}

// GetSpecialToken returns the token id (if any) whose content is the
// special-token prefix byte followed by name.
func (t *Trie) GetSpecialToken(name string) (TokenID, bool) {
	word := make([]byte, 0, len(name)+1)
	word = append(word, specialPrefixByte)
	word = append(word, name...)
	n, ok := t.ChildAtBytes(t.root(), word)
	if !ok {
		return 0, false
	}
	return t.tokenIDAt(n)
}

// GetSpecialTokens enumerates every token under the 0xFF child of root that
// carries a real token id (i.e., every special token), in node order. Unlike
// the reference implementation this doesn't drop a positional first entry;
// it filters on "has a token id" instead.
func (t *Trie) GetSpecialTokens() []TokenID {
	prefixNode, ok := t.ChildAtByte(t.root(), specialPrefixByte)
	if !ok {
		return nil
	}
	var out []TokenID
	if id, has := t.tokenIDAt(prefixNode); has {
		out = append(out, id)
	}
	var walk func(n nodeRef)
	walk = func(n nodeRef) {
		it := t.NodeChildren(n)
		for {
			c, ok := it.Next()
			if !ok {
				return
			}
			if id, has := t.tokenIDAt(c); has {
				out = append(out, id)
			}
			walk(c)
		}
	}
	walk(prefixNode)
	return out
}

// Decode concatenates the bytes of each token in tokens, stripping the
// leading 0xFF marker from any special token.
func (t *Trie) Decode(tokens []TokenID) []byte {
	var out []byte
	for _, id := range tokens {
		b := t.TokenBytes(id)
		if len(b) > 0 && b[0] == specialPrefixByte {
			b = b[1:]
		}
		out = append(out, b...)
	}
	return out
}

// DecodeRaw concatenates the bytes of each token in tokens, keeping any
// special-token 0xFF marker intact.
func (t *Trie) DecodeRaw(tokens []TokenID) []byte {
	var out []byte
	for _, id := range tokens {
		out = append(out, t.TokenBytes(id)...)
	}
	return out
}
