// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

// Recognizer is the external grammar/automaton collaborator that drives
// byte-level acceptance during bias computation. It maintains a byte-stack
// of "frames", each representing a tentative extension; the bias engine
// pushes and pops bytes on the top frame as it walks the trie.
//
// A Recognizer is never shared across concurrent bias computations: each
// call owns its recognizer for the duration of the call.
type Recognizer interface {
	// TryPushByte attempts to extend the top frame by b. If the resulting
	// state is still viable in the grammar, it pushes b and returns true;
	// otherwise the stack is left unchanged and it returns false.
	TryPushByte(b byte) bool

	// PopBytes pops the last n pushed bytes from the top frame. Calls must
	// be matched against prior pushes.
	PopBytes(n int)

	// Collapse replaces the top frame with a single frame equal to its
	// concatenation, committing the tentative extension.
	Collapse()

	// ByteAllowed is a convenience equivalent to TryPushByte followed by
	// PopBytes(1) on success.
	ByteAllowed(b byte) bool

	// SpecialAllowed reports whether the given special token is permitted
	// in the current state. Only queried for EndOfSentence today.
	SpecialAllowed(tok SpecialToken) bool

	// TrieStarted is called once before a bias traversal begins.
	TrieStarted()

	// TrieFinished is called once after a bias traversal ends. If the
	// traversal left extra pushes outstanding (a non-empty start was
	// passed to AddBias/HasValidExtensions, or HasValidExtensions stopped
	// at the first token it found), this is responsible for cleaning them
	// up.
	TrieFinished()

	// GetError reports any error accumulated during the traversal, to be
	// surfaced to the caller.
	GetError() string
}

// TokenSet is a dense, mutable set of token ids, keyed by TokenID and sized
// to VocabSize+1 (the extra bit absorbs the bias engine's sentinel id).
// Implementations need not be safe for concurrent use; each bias call owns
// its output set exclusively for the call's duration. See the tokenset
// subpackage for a reference implementation.
type TokenSet interface {
	// Allow marks id as allowed.
	Allow(id TokenID)
	// Disallow marks id as not allowed.
	Disallow(id TokenID)
	// SetAll marks every id allowed (true) or none (false).
	SetAll(allowed bool)
	// IsAllowed reports whether id is currently marked allowed.
	IsAllowed(id TokenID) bool
	// NumSet returns the number of ids currently marked allowed.
	NumSet() int
	// Negated returns a new set with every id's membership flipped.
	Negated() TokenSet
}
