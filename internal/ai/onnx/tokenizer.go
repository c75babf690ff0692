package onnx

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

const (
	clsToken = "[CLS]"
	sepToken = "[SEP]"
	unkToken = "[UNK]"

	maxSubwordChars = 100
)

// tokenizer is a lowercasing WordPiece tokenizer over a BERT-style vocab.txt.
type tokenizer struct {
	vocab map[string]int64
}

func newTokenizer(vocabPath string) (*tokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocab failed: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		vocab[strings.TrimSpace(sc.Text())] = id
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab failed: %w", err)
	}
	for _, special := range []string{clsToken, sepToken, unkToken} {
		if _, ok := vocab[special]; !ok {
			return nil, fmt.Errorf("vocab is missing %s", special)
		}
	}
	return &tokenizer{vocab: vocab}, nil
}

// Encode returns input ids and attention mask for the text, truncated to maxLen.
// The sequence is wrapped in [CLS] ... [SEP].
func (t *tokenizer) Encode(text string, maxLen int) ([]int64, []int64) {
	ids := []int64{t.vocab[clsToken]}
	for _, word := range basicTokenize(text) {
		ids = append(ids, t.wordpiece(word)...)
		if len(ids) >= maxLen-1 {
			ids = ids[:maxLen-1]
			break
		}
	}
	ids = append(ids, t.vocab[sepToken])

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask
}

// wordpiece splits a single word greedily into the longest vocab subwords.
func (t *tokenizer) wordpiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxSubwordChars {
		return []int64{t.vocab[unkToken]}
	}

	var ids []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched int64 = -1
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.vocab[unkToken]}
		}
		ids = append(ids, matched)
		start = end
	}
	return ids
}

// basicTokenize lowercases and splits on whitespace, separating punctuation
// into standalone tokens.
func basicTokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
