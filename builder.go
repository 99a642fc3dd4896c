// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import (
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// denseThreshold is the sparse child-list size above which a buildNode
// switches to a dense, 256-slot child array for O(1) indexing.
const denseThreshold = 250

// buildNode is a node in the Builder's intermediate, mutable hash-trie. It
// is never exposed outside this file; Builder.Build flattens it into the
// immutable packed node array described in node.go.
type buildNode struct {
	edge    byte
	tokenID TokenID

	// Exactly one of sparse/dense is non-nil once the node has children.
	sparse []*buildNode
	dense  []*buildNode
}

func newBuildNode(edge byte) *buildNode {
	return &buildNode{edge: edge, tokenID: noToken}
}

// childAt returns the existing child for b, or nil.
func (n *buildNode) childAt(b byte) *buildNode {
	if n.dense != nil {
		return n.dense[b]
	}
	i := sort.Search(len(n.sparse), func(i int) bool { return n.sparse[i].edge >= b })
	if i < len(n.sparse) && n.sparse[i].edge == b {
		return n.sparse[i]
	}
	return nil
}

// ensureChild returns the existing child for b, creating it (and switching
// to dense representation if the sparse list has grown past
// denseThreshold) if necessary.
func (n *buildNode) ensureChild(b byte) *buildNode {
	if n.dense != nil {
		if n.dense[b] == nil {
			n.dense[b] = newBuildNode(b)
		}
		return n.dense[b]
	}

	i := sort.Search(len(n.sparse), func(i int) bool { return n.sparse[i].edge >= b })
	if i < len(n.sparse) && n.sparse[i].edge == b {
		return n.sparse[i]
	}

	child := newBuildNode(b)
	n.sparse = append(n.sparse, nil)
	copy(n.sparse[i+1:], n.sparse[i:])
	n.sparse[i] = child

	if len(n.sparse) > denseThreshold {
		n.denseify()
	}
	return child
}

// denseify converts a sparse child list into a 256-slot dense array.
func (n *buildNode) denseify() {
	dense := make([]*buildNode, 256)
	for _, c := range n.sparse {
		dense[c.edge] = c
	}
	n.dense = dense
	n.sparse = nil
}

// sortedChildren returns n's children in ascending byte order.
func (n *buildNode) sortedChildren() []*buildNode {
	if n.dense != nil {
		out := make([]*buildNode, 0, 16)
		for _, c := range n.dense {
			if c != nil {
				out = append(out, c)
			}
		}
		return out
	}
	return n.sparse
}

// Builder accepts (bytes, TokenID) insertions and produces an immutable
// Trie. It is not safe for concurrent use.
type Builder struct {
	root *buildNode

	// tokenBytes holds every inserted token's content by id, used to build
	// the token byte store and descriptor table in Build.
	tokenBytes map[TokenID][]byte

	// contentHash buckets candidate duplicate ids by a fast hash of their
	// bytes, narrowing the spec-mandated greedy re-tokenization check in
	// finalizeCtor to the rare case where hashes actually collide.
	contentHash map[uint64][]TokenID

	log *logrus.Entry
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	o := newOptions(opts)
	return &Builder{
		root:        newBuildNode(0),
		tokenBytes:  make(map[TokenID][]byte),
		contentHash: make(map[uint64][]TokenID),
		log:         o.logger,
	}
}

// Insert adds word as the content of token id. Empty words are not inserted
// into the trie body (they remain addressable in the token byte store via
// Build, but unreachable from Root). Re-inserting the same bytes under a
// different id overwrites the stored id at that trie position; duplicate
// byte content across distinct ids is resolved later, in finalizeCtor.
func (b *Builder) Insert(word []byte, id TokenID) {
	b.tokenBytes[id] = append([]byte(nil), word...)

	if len(word) > 0 {
		h := xxhash.Sum64(word)
		b.contentHash[h] = append(b.contentHash[h], id)
	}

	if len(word) == 0 {
		return
	}

	n := b.root
	for _, c := range word {
		n = n.ensureChild(c)
	}
	n.tokenID = id
}

// Build finalizes the builder into an immutable Trie. info.VocabSize
// determines the size of the token descriptor table; every TokenID in
// [0, info.VocabSize) must have been inserted (with Insert, possibly with an
// empty byte string) or Build returns an error.
func (b *Builder) Build(info VocabInfo) (*Trie, error) {
	start := time.Now()
	if err := info.Validate(); err != nil {
		return nil, err
	}

	descriptors := make([]tokenDescriptor, info.VocabSize)
	var data []byte
	for id := 0; id < info.VocabSize; id++ {
		word, ok := b.tokenBytes[TokenID(id)]
		if !ok {
			continue // addressable-but-unset tokens default to length 0
		}
		if len(word) >= maxTokenBytes {
			return nil, fmt.Errorf("toktrie: token %d has %d bytes, must be < %d: %w", id, len(word), maxTokenBytes, ErrInvariantViolation)
		}
		if len(data)+len(word) >= maxTotalTokenBytes {
			return nil, fmt.Errorf("toktrie: token byte store would exceed %d bytes: %w", maxTotalTokenBytes, ErrInvariantViolation)
		}
		descriptors[id] = makeDescriptor(len(data), len(word))
		data = append(data, word...)
	}

	nodes, err := serializeTrie(b.root)
	if err != nil {
		return nil, err
	}

	t := &Trie{
		info:        info,
		nodes:       nodes,
		tokenData:   data,
		tokenOffset: descriptors,
		buildLog:    b.log,
		metrics:     &metricsRecorder{},
	}
	if err := t.finalizeCtor(b.contentHash); err != nil {
		return nil, err
	}
	t.metrics.observeLoad(start, headerSize+len(nodes)*8+len(data)+len(descriptors)*4)
	if b.log != nil {
		b.log.Debugf("toktrie: built trie: %d nodes, vocab_size=%d, max_token_len=%d", len(nodes), info.VocabSize, t.maxTokenLen)
	}
	return t, nil
}

// serializeTrie flattens root into depth-first pre-order packed nodes,
// computing subtree_size and num_parents per spec: children are sorted by
// byte; a non-last child gets num_parents=1, the last child gets
// parentNumParents+1; a node's subtree_size is set once its full subtree
// has been emitted.
func serializeTrie(root *buildNode) ([]packedNode, error) {
	var out []packedNode
	var emit func(n *buildNode, numParents uint8) error
	emit = func(n *buildNode, numParents uint8) error {
		idx := len(out)
		out = append(out, makeNode(n.edge, n.tokenID, numParents, 0)) // subtree_size fixed up below

		children := n.sortedChildren()
		for k, c := range children {
			childNumParents := uint8(1)
			if k == len(children)-1 {
				if int(numParents)+1 > 0xFF {
					return fmt.Errorf("toktrie: pop-count chain too deep: %w", ErrInvariantViolation)
				}
				childNumParents = numParents + 1
			}
			if err := emit(c, childNumParents); err != nil {
				return err
			}
		}

		size := len(out) - idx
		if size > nodeSizeMask {
			return fmt.Errorf("toktrie: subtree of %d nodes exceeds addressable range: %w", size, ErrInvariantViolation)
		}
		out[idx] = makeNode(n.edge, n.tokenID, numParents, uint32(size))
		return nil
	}

	if err := emit(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}
