// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v-jkegler/toktrie"
	"github.com/v-jkegler/toktrie/tokenset"
)

func TestWithInfoRebindsEOS(t *testing.T) {
	trie := buildTrie(t, []string{"a", "b", "<eot>"})
	info2 := trie.Info().WithEndOfTurn(2)
	trie2 := trie.WithInfo(info2)

	require.Equal(t, toktrie.TokenID(2), trie2.Info().TokEndOfTurn)
	require.Equal(t, trie.VocabSize(), trie2.VocabSize())
	// Original must be unaffected; same underlying node/token data though.
	require.False(t, trie.Info().HasTokEndOfTurn)
	require.Equal(t, trie.TokenBytes(0), trie2.TokenBytes(0))
}

func TestWithInfoRebindsEOSInBias(t *testing.T) {
	// TokEOS is "b" (id 1), a token the recognizer below would otherwise
	// reject, so the EOS bit in the unrebound trie can only come from
	// recognizer.SpecialAllowed, never from ordinary byte acceptance. Once
	// rebound to <eot> (id 2), the bias engine must mark <eot> instead.
	b := toktrie.NewBuilder()
	for i, w := range []string{"a", "b", "<eot>"} {
		b.Insert([]byte(w), toktrie.TokenID(i))
	}
	trie, err := b.Build(toktrie.VocabInfo{VocabSize: 3, TokEOS: 1})
	require.NoError(t, err)
	r := newByteSetRecognizer("a")

	out := tokenset.New(trie.VocabSize() + 1)
	trie.ComputeBias(r, out)
	require.True(t, out.IsAllowed(1))
	require.False(t, out.IsAllowed(2))

	trie2 := trie.WithInfo(trie.Info().WithEndOfTurn(2))
	out2 := tokenset.New(trie2.VocabSize() + 1)
	trie2.ComputeBias(r, out2)
	require.True(t, out2.IsAllowed(2))
	require.False(t, out2.IsAllowed(1))
}

func TestNodeChildrenReachesEveryInsertedFirstByte(t *testing.T) {
	trie := buildTrie(t, []string{"z", "a", "m"})
	count := 0
	it := trie.NodeChildren(trie.Root())
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 3, count)
	for _, w := range []string{"a", "m", "z"} {
		_, ok := trie.ChildAtBytes(trie.Root(), []byte(w))
		require.True(t, ok)
	}
}

func TestChildAtByteMiss(t *testing.T) {
	trie := buildTrie(t, []string{"a", "b"})
	_, ok := trie.ChildAtByte(trie.Root(), 'z')
	require.False(t, ok)
}

func TestDecodeStripsSpecialPrefix(t *testing.T) {
	trie := buildTrie(t, []string{"hi", "\xffeos"})
	out := trie.Decode([]toktrie.TokenID{0, 1})
	require.Equal(t, []byte("hieos"), out)

	raw := trie.DecodeRaw([]toktrie.TokenID{0, 1})
	require.Equal(t, append([]byte("hi"), append([]byte{0xff}, "eos"...)...), raw)
}

func TestMaxTokenLen(t *testing.T) {
	trie := buildTrie(t, []string{"a", "abc", "ab"})
	require.Equal(t, 3, trie.MaxTokenLen())
}
