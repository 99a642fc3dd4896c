// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie_test

import (
	"regexp"

	"github.com/v-jkegler/toktrie"
)

// byteSetRecognizer accepts any byte in a fixed set, unconditionally. buf
// holds every byte pushed so far (committed or tentative); marks records,
// for each open TrieStarted frame, buf's length at the time it was opened.
// TrieFinished discards back to the mark (undoing anything not collapsed);
// Collapse just closes the frame marker, keeping buf as-is, which is what
// lets AppendToken commit bytes across calls that never call TrieStarted.
type byteSetRecognizer struct {
	allowed [256]bool
	buf     []byte
	marks   []int
}

func newByteSetRecognizer(bytes string) *byteSetRecognizer {
	r := &byteSetRecognizer{}
	for i := 0; i < len(bytes); i++ {
		r.allowed[bytes[i]] = true
	}
	return r
}

func (r *byteSetRecognizer) TryPushByte(b byte) bool {
	if !r.allowed[b] {
		return false
	}
	r.buf = append(r.buf, b)
	return true
}

func (r *byteSetRecognizer) PopBytes(n int) {
	r.buf = r.buf[:len(r.buf)-n]
}

func (r *byteSetRecognizer) Collapse() {
	if len(r.marks) > 0 {
		r.marks = r.marks[:len(r.marks)-1]
	}
}

func (r *byteSetRecognizer) ByteAllowed(b byte) bool { return r.allowed[b] }

func (r *byteSetRecognizer) SpecialAllowed(tok toktrie.SpecialToken) bool { return true }

func (r *byteSetRecognizer) TrieStarted() { r.marks = append(r.marks, len(r.buf)) }

func (r *byteSetRecognizer) TrieFinished() {
	mark := r.marks[len(r.marks)-1]
	r.marks = r.marks[:len(r.marks)-1]
	r.buf = r.buf[:mark]
}

func (r *byteSetRecognizer) GetError() string { return "" }

// frameDepth reports how many bytes have been pushed since the innermost
// open TrieStarted frame, for pop-balance assertions in tests.
func (r *byteSetRecognizer) frameDepth() int {
	if len(r.marks) == 0 {
		return len(r.buf)
	}
	return len(r.buf) - r.marks[len(r.marks)-1]
}

// regexRecognizer accepts a byte if the bytes pushed so far, with it
// appended, contain a match of pattern (for the anchored patterns the tests
// use: match pattern in full, so those patterns are written to match every
// prefix they should accept). It is quadratic (re-runs the regex
// from the start of buf on every push) and exists purely as a second
// illustrative Recognizer for tests, not for performance.
type regexRecognizer struct {
	re    *regexp.Regexp
	buf   []byte
	marks []int
}

func newRegexRecognizer(pattern string) *regexRecognizer {
	return &regexRecognizer{re: regexp.MustCompile(pattern)}
}

func (r *regexRecognizer) TryPushByte(b byte) bool {
	cand := append(append([]byte(nil), r.buf...), b)
	if r.re.FindIndex(cand) == nil {
		return false
	}
	r.buf = cand
	return true
}

func (r *regexRecognizer) PopBytes(n int) {
	r.buf = r.buf[:len(r.buf)-n]
}

func (r *regexRecognizer) Collapse() {
	if len(r.marks) > 0 {
		r.marks = r.marks[:len(r.marks)-1]
	}
}

func (r *regexRecognizer) ByteAllowed(b byte) bool {
	ok := r.TryPushByte(b)
	if ok {
		r.PopBytes(1)
	}
	return ok
}

func (r *regexRecognizer) SpecialAllowed(tok toktrie.SpecialToken) bool { return true }

func (r *regexRecognizer) TrieStarted() { r.marks = append(r.marks, len(r.buf)) }

func (r *regexRecognizer) TrieFinished() {
	mark := r.marks[len(r.marks)-1]
	r.marks = r.marks[:len(r.marks)-1]
	r.buf = r.buf[:mark]
}

func (r *regexRecognizer) GetError() string { return "" }
