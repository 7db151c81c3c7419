package gmail

import (
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences/english"
)

const (
	defaultSnippetSentences = 2
	defaultSnippetChars     = 200
)

// Snippet reduces a full body to its first maxSentences sentences, capped at
// maxChars. Sentence boundaries keep the snippet readable; the hard cap keeps
// enormous single-sentence bodies (legal footers, tracking URLs) in check.
func Snippet(body string, maxSentences, maxChars int) string {
	body = strings.Join(strings.Fields(body), " ")
	if body == "" {
		return ""
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	var picked []string
	if err == nil && tokenizer != nil {
		for _, s := range tokenizer.Tokenize(body) {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			picked = append(picked, text)
			if len(picked) >= maxSentences {
				break
			}
		}
	}

	snippet := strings.Join(picked, " ")
	if snippet == "" {
		snippet = body
	}
	if len(snippet) > maxChars {
		// Back up to a rune boundary; a cap landing inside a multibyte rune
		// would leave the snippet invalid UTF-8 and unembeddable.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = strings.TrimSpace(snippet[:cut])
	}
	return snippet
}
