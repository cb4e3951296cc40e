// Package romanize turns model output into plain ASCII-range text: Han
// characters become pinyin syllables and tone marks are stripped.
package romanize

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts every Han character in text to its tone-marked pinyin
// syllable, concatenated with no separators, then strips tone marks using the
// substitution table. Non-Han runes are kept as they are. Normalize is pure
// and safe for concurrent use.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	romanized := Romanize(text)
	for _, s := range table {
		romanized = strings.ReplaceAll(romanized, s.from, s.to)
	}
	return romanized
}

// Romanize returns the tone-marked romanization of text without stripping the
// marks. Input is NFC-normalized first so combining marks match the
// precomposed table keys.
func Romanize(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	args.Fallback = keepRune

	var b strings.Builder
	for _, syllables := range pinyin.Pinyin(norm.NFC.String(text), args) {
		if len(syllables) > 0 {
			b.WriteString(syllables[0])
		}
	}
	return b.String()
}

func keepRune(r rune, _ pinyin.Args) []string {
	return []string{string(r)}
}
