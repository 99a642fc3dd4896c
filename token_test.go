// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v-jkegler/toktrie"
)

func TestVocabInfoValidate(t *testing.T) {
	require.NoError(t, toktrie.VocabInfo{VocabSize: 0}.Validate())
	require.NoError(t, toktrie.VocabInfo{VocabSize: 3, TokEOS: 2}.Validate())
	require.Error(t, toktrie.VocabInfo{VocabSize: 3, TokEOS: 3}.Validate())
	require.Error(t, toktrie.VocabInfo{VocabSize: -1}.Validate())
}

func TestVocabInfoWithEndOfTurn(t *testing.T) {
	info := toktrie.VocabInfo{VocabSize: 4, TokEOS: 0}
	require.False(t, info.HasTokEndOfTurn)

	info2 := info.WithEndOfTurn(3)
	require.True(t, info2.HasTokEndOfTurn)
	require.Equal(t, toktrie.TokenID(3), info2.TokEndOfTurn)
	require.False(t, info.HasTokEndOfTurn, "original must be unmodified")
}

func TestVocabInfoString(t *testing.T) {
	info := toktrie.VocabInfo{VocabSize: 5, TokEOS: 1}
	require.Contains(t, info.String(), "VocabSize: 5")
	require.Contains(t, info.String(), "TokEOS: 1")
}
