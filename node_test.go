// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import "testing"

func TestPackedNodeRoundTrip(t *testing.T) {
	cases := []struct {
		b          byte
		tok        TokenID
		numParents uint8
		size       uint32
	}{
		{0x41, 7, 1, 1},
		{0xff, noToken, 3, 100},
		{0x00, 0xFFFFFE, 255, 0xFFFFFF},
	}
	for _, c := range cases {
		n := makeNode(c.b, c.tok, c.numParents, c.size)
		if n.edgeByte() != c.b {
			t.Errorf("edgeByte() = %#x, want %#x", n.edgeByte(), c.b)
		}
		if n.tokenID() != c.tok {
			t.Errorf("tokenID() = %d, want %d", n.tokenID(), c.tok)
		}
		if n.numParents() != c.numParents {
			t.Errorf("numParents() = %d, want %d", n.numParents(), c.numParents)
		}
		if n.subtreeSize() != c.size {
			t.Errorf("subtreeSize() = %d, want %d", n.subtreeSize(), c.size)
		}

		buf := n.bytes()
		n2 := nodeFromBytes(buf[:])
		if n2 != n {
			t.Errorf("nodeFromBytes(bytes()) = %#v, want %#v", n2, n)
		}
	}
}

func TestHasToken(t *testing.T) {
	n := makeNode('a', noToken, 1, 1)
	if n.hasToken() {
		t.Error("expected hasToken() false for noToken")
	}
	n2 := makeNode('a', 5, 1, 1)
	if !n2.hasToken() {
		t.Error("expected hasToken() true for a real token id")
	}
}

// TestSerializeTrieSubtreeSizeConsistency checks spec's pre-order-consistency
// property directly against serializeTrie's packed output for a builder's
// tree: every node's subtree_size equals 1 plus the sum of its direct children's
// subtree_size, and children are strictly ascending by byte.
func TestSerializeTrieSubtreeSizeConsistency(t *testing.T) {
	b := NewBuilder()
	for i, w := range []string{"a", "ab", "abc", "abd", "b", "ba"} {
		b.Insert([]byte(w), TokenID(i))
	}

	nodes, err := serializeTrie(b.root)
	if err != nil {
		t.Fatalf("serializeTrie: %v", err)
	}

	var walk func(idx int) int
	walk = func(idx int) int {
		end := idx + int(nodes[idx].subtreeSize())
		sum := 0
		lastByte := -1
		p := idx + 1
		for p < end {
			if int(nodes[p].edgeByte()) <= lastByte {
				t.Errorf("children of node %d not strictly ascending: byte %d after %d", idx, nodes[p].edgeByte(), lastByte)
			}
			lastByte = int(nodes[p].edgeByte())
			childEnd := walk(p)
			sum += childEnd - p
			p = childEnd
		}
		if int(nodes[idx].subtreeSize()) != 1+sum {
			t.Errorf("node %d subtree_size = %d, want %d", idx, nodes[idx].subtreeSize(), 1+sum)
		}
		return end
	}
	walk(0)
}
