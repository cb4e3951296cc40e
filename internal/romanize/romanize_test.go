package romanize

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain ascii is unchanged",
			input:    "The quick brown fox jumps over the lazy dog.",
			expected: "The quick brown fox jumps over the lazy dog.",
		},
		{
			name:     "punctuation and digits kept",
			input:    "Level 3: [Boss] -- 100% done!",
			expected: "Level 3: [Boss] -- 100% done!",
		},
		{
			name:     "han characters become joined pinyin",
			input:    "你好",
			expected: "nihao",
		},
		{
			name:     "han inside english sentence",
			input:    "Hello 北京 friend",
			expected: "Hello beijing friend",
		},
		{
			name:     "tone marked pinyin is stripped",
			input:    "Zhāng Wěi met Lǐ Nà",
			expected: "Zhang Wei met Li Na",
		},
		{
			name:     "u with diaeresis",
			input:    "lǜ nǚ lüè",
			expected: "lu nu lue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeDecomposedMarks(t *testing.T) {
	composed := "Zhāng Wěi"
	decomposed := norm.NFD.String(composed)
	assert.NotEqual(t, composed, decomposed)

	assert.Equal(t, Normalize(composed), Normalize(decomposed))
}

func TestNormalizeRemovesEveryTableKey(t *testing.T) {
	for _, s := range table {
		t.Run(s.from, func(t *testing.T) {
			out := Normalize("x" + s.from + "x")
			assert.NotContains(t, out, s.from)
			assert.Equal(t, "x"+s.to+"x", out)
		})
	}
}

func TestNormalizeOutputHasNoToneMarks(t *testing.T) {
	out := Normalize("我们明天去长城，好吗？")
	for _, r := range out {
		if unicode.IsLetter(r) {
			assert.LessOrEqual(t, r, unicode.MaxASCII, "unexpected letter %q in %q", r, out)
		}
	}
	assert.True(t, strings.HasPrefix(out, "womenmingtian"))
}

func TestTableOrder(t *testing.T) {
	assert.Len(t, table, 130)

	first := make([]string, 0, 11)
	for _, s := range table[:11] {
		first = append(first, s.from)
	}
	assert.Equal(t, []string{"ü", "üe", "üi", "üo", "üa", "üai", "üao", "üan", "üang", "üei", "ā"}, first)

	assert.Equal(t, substitution{"ǜ", "u"}, table[33])
	assert.Equal(t, substitution{"āi", "ai"}, table[34])
	assert.Equal(t, substitution{"āu", "au"}, table[58])
	assert.Equal(t, substitution{"āng", "ang"}, table[82])
	assert.Equal(t, substitution{"ān", "an"}, table[106])
	assert.Equal(t, substitution{"ǜn", "un"}, table[129])
}

func TestTableValuesHaveNoMarks(t *testing.T) {
	seen := make(map[string]bool, len(table))
	for _, s := range table {
		assert.NotEmpty(t, s.from)
		assert.False(t, seen[s.from], "duplicate key %q", s.from)
		seen[s.from] = true
		for _, r := range s.to {
			assert.LessOrEqual(t, r, unicode.MaxASCII, "value %q for %q", s.to, s.from)
		}
	}
}
