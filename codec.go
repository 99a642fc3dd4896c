// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import (
	"encoding/binary"
	"fmt"
	"time"
)

// magic identifies a serialized trie.
const magic uint32 = 0x558B6FD3

// headerSize is the fixed size, in bytes, of the binary header: magic,
// hd_size, trie_bytes, token_offset_bytes, token_data_bytes,
// info.vocab_size, info.tok_eos — seven little-endian uint32s.
const headerSize = 7 * 4

type header struct {
	magic             uint32
	hdSize            uint32
	trieBytes         uint32
	tokenOffsetBytes  uint32
	tokenDataBytes    uint32
	infoVocabSize     uint32
	infoTokEOS        uint32
}

// Serialize encodes t into its compact binary form: a fixed header followed
// by the packed node array, the token descriptor table, and the token byte
// data. Per spec.md's Open Questions, the true length of the token data is
// written (unlike some historical producers of this format, which wrote
// trie_bytes again by mistake); Load tolerates either value by treating the
// token-data region as "whatever remains of the input".
func (t *Trie) Serialize() []byte {
	h := header{
		magic:            magic,
		hdSize:           headerSize,
		trieBytes:        uint32(len(t.nodes) * 8),
		tokenOffsetBytes: uint32(len(t.tokenOffset) * 4),
		tokenDataBytes:   uint32(len(t.tokenData)),
		infoVocabSize:    uint32(t.info.VocabSize),
		infoTokEOS:       uint32(t.info.TokEOS),
	}

	out := make([]byte, 0, headerSize+int(h.trieBytes)+int(h.tokenOffsetBytes)+len(t.tokenData))
	out = appendHeader(out, h)
	for _, n := range t.nodes {
		b := n.bytes()
		out = append(out, b[:]...)
	}
	for _, d := range t.tokenOffset {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(d))
		out = append(out, b[:]...)
	}
	out = append(out, t.tokenData...)
	return out
}

func appendHeader(out []byte, h header) []byte {
	var b [headerSize]byte
	binary.LittleEndian.PutUint32(b[0:4], h.magic)
	binary.LittleEndian.PutUint32(b[4:8], h.hdSize)
	binary.LittleEndian.PutUint32(b[8:12], h.trieBytes)
	binary.LittleEndian.PutUint32(b[12:16], h.tokenOffsetBytes)
	binary.LittleEndian.PutUint32(b[16:20], h.tokenDataBytes)
	binary.LittleEndian.PutUint32(b[20:24], h.infoVocabSize)
	binary.LittleEndian.PutUint32(b[24:28], h.infoTokEOS)
	return append(out, b[:]...)
}

// Load decodes a Trie from its binary form, as produced by Serialize. It
// returns an error wrapping ErrBadFormat if the magic doesn't match, the
// header size doesn't match, or any fixed-size region extends past the
// input. The token-data region is always taken as the remainder of the
// input after the fixed regions, regardless of what token_data_bytes says.
func Load(data []byte, opts ...Option) (*Trie, error) {
	start := time.Now()
	o := newOptions(opts)

	if len(data) < headerSize {
		return nil, fmt.Errorf("toktrie: input shorter than header (%d bytes): %w", len(data), ErrBadFormat)
	}
	m := binary.LittleEndian.Uint32(data[0:4])
	if m != magic {
		return nil, fmt.Errorf("toktrie: bad magic %#x, want %#x: %w", m, magic, ErrBadFormat)
	}
	hdSize := binary.LittleEndian.Uint32(data[4:8])
	if hdSize != headerSize {
		return nil, fmt.Errorf("toktrie: header size %d, want %d: %w", hdSize, headerSize, ErrBadFormat)
	}
	trieBytes := binary.LittleEndian.Uint32(data[8:12])
	tokenOffsetBytes := binary.LittleEndian.Uint32(data[12:16])
	// tokenDataBytes at data[16:20] is not read; see the doc comment above
	// and spec.md's Open Questions.
	vocabSize := binary.LittleEndian.Uint32(data[20:24])
	tokEOS := binary.LittleEndian.Uint32(data[24:28])

	if trieBytes%8 != 0 {
		return nil, fmt.Errorf("toktrie: trie_bytes %d not a multiple of 8: %w", trieBytes, ErrBadFormat)
	}
	if tokenOffsetBytes != vocabSize*4 {
		return nil, fmt.Errorf("toktrie: token_offset_bytes %d does not match vocab_size %d: %w", tokenOffsetBytes, vocabSize, ErrBadFormat)
	}

	trieEnd := int64(headerSize) + int64(trieBytes)
	offsetEnd := trieEnd + int64(tokenOffsetBytes)
	if offsetEnd > int64(len(data)) {
		return nil, fmt.Errorf("toktrie: regions extend past input (need %d bytes, have %d): %w", offsetEnd, len(data), ErrBadFormat)
	}

	nodeCount := int(trieBytes / 8)
	nodes := make([]packedNode, nodeCount)
	for i := 0; i < nodeCount; i++ {
		off := headerSize + i*8
		nodes[i] = nodeFromBytes(data[off : off+8])
	}

	offsets := make([]tokenDescriptor, vocabSize)
	for i := range offsets {
		off := int(trieEnd) + i*4
		offsets[i] = tokenDescriptor(binary.LittleEndian.Uint32(data[off : off+4]))
	}

	tokenData := data[offsetEnd:]
	for i, d := range offsets {
		if d.offset()+d.length() > len(tokenData) {
			return nil, fmt.Errorf("toktrie: token %d descriptor addresses past end of token data: %w", i, ErrBadFormat)
		}
	}

	t := &Trie{
		info: VocabInfo{
			VocabSize: int(vocabSize),
			TokEOS:    TokenID(tokEOS),
		},
		nodes:       nodes,
		tokenData:   tokenData,
		tokenOffset: offsets,
		buildLog:    o.logger,
		metrics:     &metricsRecorder{},
	}
	if err := t.finalizeCtor(nil); err != nil {
		return nil, err
	}
	t.metrics.observeLoad(start, len(data))
	if o.logger != nil {
		o.logger.Infof("toktrie: loaded trie: %d nodes, vocab_size=%d, max_token_len=%d, %d bytes", nodeCount, vocabSize, t.maxTokenLen, len(data))
	}
	return t, nil
}
