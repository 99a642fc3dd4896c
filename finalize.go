// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import "golang.org/x/exp/constraints"

// maxOf returns the larger of a and b. Generic over any ordered numeric
// type so callers don't need a type-specific variant.
func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// finalizeCtor computes maxTokenLen and the duplicate map, run once after
// construction (by Builder.Build) or after Load. contentHash, if non-nil, is
// the builder's xxhash content-bucket index: two ids with byte-identical
// content always land in the same bucket, so a bucket with only one id can
// never be a duplicate and is skipped, narrowing the spec-mandated greedy
// re-tokenization check to ids that actually collide. Load has no
// contentHash index (nil) and falls back to checking every id, so it
// computes the same duplicateMap a Builder-constructed Trie would.
func (t *Trie) finalizeCtor(contentHash map[uint64][]TokenID) error {
	t.maxTokenLen = 0
	duplicates := make(map[TokenID][]TokenID)
	candidates := t.duplicateCandidates(contentHash)

	for id := 0; id < len(t.tokenOffset); id++ {
		tokID := TokenID(id)
		word := t.TokenBytes(tokID)
		if len(word) == 0 {
			continue
		}
		t.maxTokenLen = maxOf(t.maxTokenLen, len(word))

		if !candidates[tokID] {
			continue
		}

		toks, err := t.GreedyTokenize(word)
		if err != nil {
			// A vocabulary without full byte coverage can't greedily
			// re-tokenize its own tokens; duplicate detection simply finds
			// none for this id; missing coverage itself is reported to
			// callers of GreedyTokenize directly.
			continue
		}
		if len(toks) == 1 && toks[0] != tokID {
			canonical := toks[0]
			duplicates[canonical] = append(duplicates[canonical], tokID)
		}
	}

	if len(duplicates) > 0 {
		t.logDuplicates(duplicates)
	}
	t.duplicateMap = duplicates
	return nil
}

// duplicateCandidates returns the set of ids worth greedily re-tokenizing to
// check for duplicates. With a contentHash index, that's every id sharing a
// bucket with at least one other id; without one (Load), every id.
func (t *Trie) duplicateCandidates(contentHash map[uint64][]TokenID) map[TokenID]bool {
	candidates := make(map[TokenID]bool, len(t.tokenOffset))
	if contentHash == nil {
		for id := 0; id < len(t.tokenOffset); id++ {
			candidates[TokenID(id)] = true
		}
		return candidates
	}
	for _, ids := range contentHash {
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			candidates[id] = true
		}
	}
	return candidates
}

func (t *Trie) logDuplicates(duplicates map[TokenID][]TokenID) {
	if t.buildLog == nil {
		return
	}
	for canonical, aliases := range duplicates {
		t.buildLog.Debugf("toktrie: token %d has %d duplicate alias(es): %v", canonical, len(aliases), aliases)
	}
}
