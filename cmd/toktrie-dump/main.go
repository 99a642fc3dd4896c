// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Command toktrie-dump builds a trie from a vocabulary file and either
// writes its serialized binary form or prints a human-readable summary.
//
// The vocabulary file format matches OpenAI's .tiktoken files: one token per
// line, "<base64 bytes> <rank>", blank lines ignored.
package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/v-jkegler/toktrie"
)

var (
	out    = flag.String("o", "", "write serialized trie to this file (default: print a summary instead)")
	eosTok = flag.Int("eos", -1, "token id to use as tok_eos (default: vocab_size-1)")
	help   = flag.Bool("h", false, "display this help")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help || flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	words, err := readVocab(flag.Arg(0))
	onErrFatalf(err, "reading vocabulary")
	assert(len(words) > 0, "vocabulary file %q contains no tokens", flag.Arg(0))

	b := toktrie.NewBuilder()
	for id, w := range words {
		b.Insert(w, toktrie.TokenID(id))
	}

	eos := *eosTok
	if eos < 0 {
		eos = len(words) - 1
	}
	trie, err := b.Build(toktrie.VocabInfo{VocabSize: len(words), TokEOS: toktrie.TokenID(eos)})
	onErrFatalf(err, "building trie")

	blob := trie.Serialize()
	if *out != "" {
		onErrFatalf(os.WriteFile(*out, blob, 0644), "writing %q", *out)
		fmt.Printf("wrote %q (%d tokens, %d bytes)\n", *out, trie.VocabSize(), len(blob))
		return
	}

	fmt.Printf("vocab_size:    %d\n", trie.VocabSize())
	fmt.Printf("tok_eos:       %d\n", trie.Info().TokEOS)
	fmt.Printf("max_token_len: %d\n", trie.MaxTokenLen())
	fmt.Printf("serialized:    %d bytes\n", len(blob))
}

// readVocab parses a .tiktoken-style file into an ordered list of token
// byte strings, indexed by rank.
func readVocab(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	byRank := make(map[int][]byte)
	hi := -1

	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		if len(line) == 0 {
			continue
		}
		fields := strings.Fields(line)
		assert(len(fields) == 2, "expected 2 fields, got %d on line %d: %q", len(fields), lineNo, line)

		token, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("decoding base64 %q on line %d: %w", fields[0], lineNo, err)
		}
		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("parsing rank %q on line %d: %w", fields[1], lineNo, err)
		}
		byRank[rank] = token
		hi = max(hi, rank)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make([][]byte, hi+1)
	for rank, word := range byRank {
		out[rank] = word
	}
	return out, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: toktrie-dump [-o out.trie] [-eos id] vocab.tiktoken

Build a token trie from a vocabulary file and either serialize it to disk
or print a summary.

Options:
  -o file   write the serialized trie to file instead of printing a summary
  -eos id   token id to use as tok_eos (default: vocab_size-1)
  -h        display this help

`)
}

func onErrFatalf(err error, format string, args ...any) {
	if err != nil {
		fmt.Printf(format, args...)
		fmt.Printf(": %v\n", err)
		os.Exit(1)
	}
}

func assert(cond bool, format string, args ...any) {
	if !cond {
		fmt.Print("assertion failed: ")
		fmt.Printf(format, args...)
		fmt.Println()
		os.Exit(1)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
