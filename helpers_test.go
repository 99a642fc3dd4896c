// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v-jkegler/toktrie"
)

// buildTrie builds a Trie from a list of token strings, in order, assigning
// TokenID(i) to words[i]. Duplicate byte content across distinct ids is
// expected by some tests (finalizeCtor's duplicate detection), so it is not
// rejected here.
func buildTrie(t *testing.T, words []string) *toktrie.Trie {
	t.Helper()
	b := toktrie.NewBuilder()
	for i, w := range words {
		b.Insert([]byte(w), toktrie.TokenID(i))
	}
	trie, err := b.Build(toktrie.VocabInfo{VocabSize: len(words), TokEOS: toktrie.TokenID(len(words) - 1)})
	require.NoError(t, err)
	return trie
}
