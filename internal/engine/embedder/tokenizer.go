package embedder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxSeqLen caps the token count per message. Log lines are short; 128
// tokens covers a syslog line with room to spare, and anything longer is
// truncated rather than rejected.
const maxSeqLen = 128

// tokenized is a batch of encoded messages packed for ONNX inference.
// All slices are flat with shape [batchSize * seqLen].
type tokenized struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	batchSize     int64
	seqLen        int64
}

// tokenizer performs BERT-style WordPiece tokenization of log messages.
type tokenizer struct {
	vocab *vocab
}

func newTokenizer(vocabPath string) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v}, nil
}

// encode converts one message into token IDs wrapped in [CLS]/[SEP],
// truncated to maxSeqLen. No padding is applied; tokenizeBatch pads to the
// longest message in the batch.
func (t *tokenizer) encode(text string) []int64 {
	words := t.split(text)

	ids := make([]int64, 0, len(words)+2)
	ids = append(ids, t.vocab.clsID)
	for _, w := range words {
		for _, sub := range t.subwords(w) {
			if len(ids) == maxSeqLen-1 {
				break
			}
			ids = append(ids, t.vocab.lookup(sub))
		}
		if len(ids) == maxSeqLen-1 {
			break
		}
	}
	return append(ids, t.vocab.sepID)
}

// tokenizeBatch encodes every message and packs the batch into flat padded
// slices. seqLen is the longest encoded message, so a batch of short lines
// never pays for maxSeqLen worth of padding.
func (t *tokenizer) tokenizeBatch(texts []string) tokenized {
	n := len(texts)
	if n == 0 {
		return tokenized{}
	}

	encoded := make([][]int64, n)
	seqLen := int64(0)
	for i, text := range texts {
		encoded[i] = t.encode(text)
		if l := int64(len(encoded[i])); l > seqLen {
			seqLen = l
		}
	}

	batchSize := int64(n)
	total := batchSize * seqLen
	out := tokenized{
		inputIDs:      make([]int64, total),
		attentionMask: make([]int64, total),
		tokenTypeIDs:  make([]int64, total), // single segment, all zeros
		batchSize:     batchSize,
		seqLen:        seqLen,
	}
	if t.vocab.padID != 0 {
		for i := range out.inputIDs {
			out.inputIDs[i] = t.vocab.padID
		}
	}
	for i, ids := range encoded {
		offset := int64(i) * seqLen
		copy(out.inputIDs[offset:], ids)
		for j := range ids {
			out.attentionMask[offset+int64(j)] = 1
		}
	}
	return out
}

// split applies BERT basic tokenization: clean, lowercase, strip accents,
// split on whitespace and punctuation, isolate CJK characters. Log text is
// mostly ASCII but the full treatment keeps parity with the vocab's
// training regime.
func (t *tokenizer) split(text string) []string {
	text = cleanText(text)
	text = isolateCJK(text)
	text = strings.ToLower(text)
	text = stripAccents(text)

	var words []string
	for _, field := range strings.Fields(text) {
		words = append(words, splitPunct(field)...)
	}
	return words
}

// subwords decomposes one word greedily into WordPiece units, longest
// vocabulary match first. A word with any unmatchable remainder collapses
// to [UNK].
func (t *tokenizer) subwords(word string) []string {
	runes := []rune(word)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) > 200 {
		return []string{"[UNK]"}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := ""
		for end > start {
			cand := string(runes[start:end])
			if start > 0 {
				cand = "##" + cand
			}
			if t.vocab.contains(cand) {
				matched = cand
				break
			}
			end--
		}
		if matched == "" {
			return []string{"[UNK]"}
		}
		parts = append(parts, matched)
		start = end
	}
	return parts
}

// cleanText drops control characters and canonicalizes whitespace.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAccents removes combining marks after NFD decomposition.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isolateCJK surrounds CJK ideographs with spaces so each becomes its own
// word.
func isolateCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if isCJK(r) {
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitPunct cuts a word at every punctuation rune, keeping the
// punctuation as standalone tokens. Log lines are punctuation-dense
// (brackets, colons, equals) so this does most of the splitting work.
func splitPunct(word string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if isPunctuation(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(r))
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// Character classes below follow the reference BERT implementation.

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isPunctuation(r rune) bool {
	// ASCII ranges 33-47, 58-64, 91-96, 123-126 count as punctuation even
	// where Unicode disagrees (e.g. '^', '$').
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
