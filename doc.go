// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package toktrie implements a byte-level token-vocabulary trie for
// constrained decoding. Given a recognizer that accepts or rejects byte
// sequences (see the Recognizer interface), a Trie efficiently computes the
// set of vocabulary tokens whose byte strings the recognizer currently
// accepts, drives greedy byte-to-token segmentation, and supports a compact
// binary serialization.
//
// A Trie is built once from a vocabulary and is immutable afterwards:
//
//	b := toktrie.NewBuilder()
//	for id, bytes := range vocab {
//	    b.Insert(bytes, toktrie.TokenID(id))
//	}
//	trie, err := b.Build(toktrie.VocabInfo{VocabSize: len(vocab), TokEOS: eosID})
//
// Once built, the hot path for constrained decoding is AddBias, which walks
// the packed node array in lockstep with a caller-supplied Recognizer:
//
//	out := tokenset.New(trie.VocabSize() + 1)
//	trie.AddBias(recognizer, out, nil)
//
// The trie itself never touches the recognizer's grammar or the model's
// logits; those live entirely on the caller's side of the Recognizer and
// TokenSet interfaces.
package toktrie
