package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxWordRunes = 100

// WordPieceTokenizer implements the uncased BERT tokenizer used by MiniLM:
// clean + lowercase + strip accents, split on whitespace and punctuation,
// then greedy longest-match-first sub-word lookup.
type WordPieceTokenizer struct {
	vocab  map[string]int64
	unkID  int64
	clsID  int64
	sepID  int64
	maxLen int
}

func LoadWordPieceTokenizer(vocabPath string, maxLen int) (*WordPieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocab failed: %w", err)
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		tokens = append(tokens, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab failed: %w", err)
	}
	return NewWordPieceTokenizer(tokens, maxLen)
}

// NewWordPieceTokenizer builds a tokenizer from vocabulary lines; a token's
// id is its line index.
func NewWordPieceTokenizer(tokens []string, maxLen int) (*WordPieceTokenizer, error) {
	if maxLen < 2 {
		maxLen = 256
	}
	vocab := make(map[string]int64, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, dup := vocab[tok]; !dup {
			vocab[tok] = int64(i)
		}
	}
	t := &WordPieceTokenizer{vocab: vocab, maxLen: maxLen}
	for name, dst := range map[string]*int64{"[UNK]": &t.unkID, "[CLS]": &t.clsID, "[SEP]": &t.sepID} {
		id, ok := vocab[name]
		if !ok {
			return nil, fmt.Errorf("vocab is missing %s", name)
		}
		*dst = id
	}
	return t, nil
}

// Encode returns [CLS] tokens... [SEP], truncated to the max sequence length.
func (t *WordPieceTokenizer) Encode(text string) []int64 {
	ids := []int64{t.clsID}
	for _, word := range basicTokenize(text) {
		for _, id := range t.wordPiece(word) {
			if len(ids) >= t.maxLen-1 {
				return append(ids, t.sepID)
			}
			ids = append(ids, id)
		}
	}
	return append(ids, t.sepID)
}

func (t *WordPieceTokenizer) wordPiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []int64{t.unkID}
	}

	var out []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		found := int64(-1)
		for start < end {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.unkID}
		}
		out = append(out, found)
		start = end
	}
	return out
}

func basicTokenize(text string) []string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(text)) {
		switch {
		case r == 0 || r == unicode.ReplacementChar:
			continue
		case unicode.Is(unicode.Mn, r):
			continue
		case isWhitespace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
			continue
		case isPunctuation(r) || isCJK(r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
