// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import (
	"fmt"
	"time"
)

// sentinelID is the fake token id used by AddBias to mark nodes that extend
// the trie but do not themselves terminate a token. It is always
// info.VocabSize, one past the real vocabulary, which is why every TokenSet
// implementation must be sized to VocabSize+1. AddBias clears it before
// returning; callers never see it set.
func (t *Trie) sentinelID() TokenID {
	return TokenID(t.info.VocabSize)
}

// endOfSentenceToken returns the token id AddBias marks when the recognizer
// allows EndOfSentence: TokEndOfTurn if the trie's VocabInfo has rebound it
// (see VocabInfo.WithEndOfTurn), otherwise TokEOS.
func (t *Trie) endOfSentenceToken() TokenID {
	if t.info.HasTokEndOfTurn {
		return t.info.TokEndOfTurn
	}
	return t.info.TokEOS
}

// HasValidExtensions reports whether AddBias would mark at least one token
// allowed for the given recognizer state and forced byte prefix start. It
// runs the same linear trie walk as AddBias but stops at the first
// token-terminated node instead of recording every one, so it is cheaper
// when the caller only needs a yes/no answer (chopTokens uses it this way).
// When it stops at a token, the bytes pushed on the way to it are left for
// r.TrieFinished to discard.
func (t *Trie) HasValidExtensions(r Recognizer, start []byte) bool {
	begin := time.Now()
	defer t.metrics.observeBias("has_valid_extensions", begin)

	n, ok := t.ChildAtBytes(t.root(), start)
	if !ok {
		return false
	}

	r.TrieStarted()
	p := n + 1
	endp := t.nextNode(n)
	var nextPop uint8
	found := false

	for p < endp {
		r.PopBytes(int(nextPop))
		node := t.nodes[p]
		if r.TryPushByte(node.edgeByte()) {
			if node.hasToken() {
				found = true
				break
			}
			if node.subtreeSize() == 1 {
				nextPop = node.numParents()
			} else {
				nextPop = 0
			}
			p++
		} else {
			p += nodeRef(node.subtreeSize())
			nextPop = node.numParents() - 1
		}
	}

	if len(start) == 0 && !found {
		r.PopBytes(int(nextPop))
	}
	r.TrieFinished()
	return found
}

// AddBias walks the trie under the forced byte prefix start, marking every
// token id allowed by out that the recognizer accepts byte-by-byte. Every
// prefix of start that is itself a token is also marked, regardless of what
// the recognizer thinks of it (the prefix bytes are forced, not offered).
// If start is empty and recognizer.SpecialAllowed(EndOfSentence) is true,
// the end-of-sequence bit (TokEndOfTurn, if the trie's info has rebound it;
// TokEOS otherwise) is set before descending, per the bias engine's
// contract. out is not cleared first; callers that want a fresh bias should
// call out.SetAll(false) before calling AddBias.
func (t *Trie) AddBias(r Recognizer, out TokenSet, start []byte) {
	begin := time.Now()
	defer t.metrics.observeBias("add_bias", begin)

	if len(start) == 0 && r.SpecialAllowed(EndOfSentence) {
		out.Allow(t.endOfSentenceToken())
	}

	for n := 1; n <= len(start); n++ {
		if tok, ok := t.tokenAtPrefix(start[:n]); ok {
			out.Allow(tok)
		}
	}

	n, ok := t.ChildAtBytes(t.root(), start)
	if !ok {
		return
	}

	r.TrieStarted()
	nextPop := t.addBiasInner(r, out, n)
	if len(start) == 0 {
		r.PopBytes(int(nextPop))
	}
	r.TrieFinished()

	out.Disallow(t.sentinelID())
	t.applyDuplicates(out)
	t.metrics.observeTokensAllowed(out.NumSet())
}

// addBiasInner is the hot loop shared by AddBias: a single linear scan over
// the node's subtree using subtree_size to skip rejected branches in O(1)
// and num_parents (deferred as next_pop, applied at the top of the next
// iteration) to undo the recognizer pushes of a branch once its subtree is
// exhausted, all without an explicit stack or recursion.
func (t *Trie) addBiasInner(r Recognizer, out TokenSet, n nodeRef) uint8 {
	defl := t.sentinelID()
	p := n + 1
	endp := t.nextNode(n)
	var nextPop uint8

	for p < endp {
		r.PopBytes(int(nextPop))
		node := t.nodes[p]
		if r.TryPushByte(node.edgeByte()) {
			if node.hasToken() {
				out.Allow(node.tokenID())
			} else {
				out.Allow(defl)
			}
			if node.subtreeSize() == 1 {
				nextPop = node.numParents()
			} else {
				nextPop = 0
			}
			p++
		} else {
			p += nodeRef(node.subtreeSize())
			nextPop = node.numParents() - 1
		}
	}
	return nextPop
}

// tokenAtPrefix returns the token id stored at the trie position reached by
// following word from the root, if any.
func (t *Trie) tokenAtPrefix(word []byte) (TokenID, bool) {
	n, ok := t.ChildAtBytes(t.root(), word)
	if !ok {
		return 0, false
	}
	return t.tokenIDAt(n)
}

// applyDuplicates mirrors the allowed bit of every token onto its
// byte-identical duplicates, discovered at construction time by finalizeCtor.
func (t *Trie) applyDuplicates(out TokenSet) {
	for tok, dups := range t.duplicateMap {
		if out.IsAllowed(tok) {
			for _, d := range dups {
				out.Allow(d)
			}
		}
	}
}

// ComputeBias clears out, then fills it exactly as AddBias would for an
// empty forced prefix: every token the recognizer currently allows, plus
// end-of-sequence if the recognizer permits it, plus duplicate mirroring.
func (t *Trie) ComputeBias(r Recognizer, out TokenSet) {
	t.ComputeBiasExt(r, out, nil)
}

// ComputeBiasExt is ComputeBias with an explicit forced byte prefix start.
func (t *Trie) ComputeBiasExt(r Recognizer, out TokenSet, start []byte) {
	out.SetAll(false)
	t.AddBias(r, out, start)
}

// TokenAllowed reports whether a single token id is acceptable to r in its
// current state, without touching any TokenSet. It pushes the token's bytes
// one at a time, stopping at the first rejection, then pops back whatever it
// pushed so the recognizer's state is unchanged by the call.
func (t *Trie) TokenAllowed(r Recognizer, tok TokenID) bool {
	bytes := t.TokenBytes(tok)
	r.TrieStarted()
	num := 0
	ok := true
	for _, b := range bytes {
		if r.TryPushByte(b) {
			num++
		} else {
			ok = false
			break
		}
	}
	r.PopBytes(num)
	r.TrieFinished()
	return ok
}

// AppendToken commits tok's bytes to the recognizer's current frame. Unlike
// TokenAllowed, this is not a probe: on success the pushed bytes are
// collapsed into the frame permanently; on the first disallowed byte, any
// bytes already pushed are collapsed (not popped, since there is no trie
// walk to balance) and a *ByteNotAllowedError is returned wrapping
// ErrByteNotAllowed.
func (t *Trie) AppendToken(r Recognizer, tok TokenID) error {
	bytes := t.TokenBytes(tok)
	for i, b := range bytes {
		if !r.TryPushByte(b) {
			r.Collapse()
			return &ByteNotAllowedError{Token: tok, Byte: b, Pos: i}
		}
	}
	r.Collapse()
	return nil
}

// AppendTokens calls AppendToken for each id in toks, in order, stopping at
// the first error.
func (t *Trie) AppendTokens(r Recognizer, toks []TokenID) error {
	for _, tok := range toks {
		if err := t.AppendToken(r, tok); err != nil {
			return fmt.Errorf("toktrie: appending token: %w", err)
		}
	}
	return nil
}

// ChopTokens reports how many trailing tokens (and how many trailing bytes
// they total) must be chopped off tokens so that the remaining prefix does
// not foreclose any tokenization the recognizer would otherwise still
// accept. It walks tokens from the end, accumulating a candidate suffix and
// checking HasValidExtensions against it; once the candidate suffix is
// longer than the trie's longest token, no further extension could possibly
// match and the scan stops.
func (t *Trie) ChopTokens(r Recognizer, tokens []TokenID) (chopTokens int, chopBytes int) {
	var suffix []byte
	for idx := len(tokens) - 1; idx >= 0; idx-- {
		pos := len(tokens) - 1 - idx
		word := t.TokenBytes(tokens[idx])
		suffix = append(append([]byte(nil), word...), suffix...)
		if len(suffix) > t.maxTokenLen {
			break
		}
		if t.HasValidExtensions(r, suffix) {
			chopTokens = pos + 1
			chopBytes = len(suffix)
		}
	}
	return chopTokens, chopBytes
}
