package sanitize

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeStr(s string, removeURLs bool) string {
	return string(Sanitize([]byte(s), removeURLs))
}

func TestSanitizeBasic(t *testing.T) {
	t.Run("PlainTextUnchanged", func(t *testing.T) {
		assert.Equal(t, "hello world", sanitizeStr("hello world", false))
	})

	t.Run("LeadingAndTrailingWhitespaceTrimmed", func(t *testing.T) {
		assert.Equal(t, "hello world", sanitizeStr("  \t hello world \n ", false))
	})

	t.Run("WhitespaceRunsCollapse", func(t *testing.T) {
		assert.Equal(t, "a b c", sanitizeStr("a \t  b\r\n   c", false))
	})

	t.Run("ParagraphBreakPreserved", func(t *testing.T) {
		assert.Equal(t, "para one\n\npara two", sanitizeStr("para one\n\npara two", false))
	})

	t.Run("TripleNewlineBecomesParagraphBreak", func(t *testing.T) {
		assert.Equal(t, "a\n\nb", sanitizeStr("a\n\n\nb", false))
	})

	t.Run("ControlCharactersSeparateWords", func(t *testing.T) {
		assert.Equal(t, "hello world", sanitizeStr("hello\x00\x00world", false))
		assert.Equal(t, "a b", sanitizeStr("a\x01\x02\x03b", false))
	})

	t.Run("DELDropped", func(t *testing.T) {
		assert.Equal(t, "ab cd", sanitizeStr("ab\x7fcd", false))
	})
}

func TestSanitizeMinimumLength(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		empty bool
	}{
		{"Empty", "", true},
		{"OneByte", "a", true},
		{"TwoBytes", "ab", true},
		{"ThreeBytes", "abc", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize([]byte(tc.in), false)
			if tc.empty {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.in, string(got))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("ShortInputUntouched", func(t *testing.T) {
		raw := bytes.Repeat([]byte("x"), 2046)
		assert.Len(t, Truncate(raw), 2046)
	})

	t.Run("AtLimitTruncated", func(t *testing.T) {
		raw := bytes.Repeat([]byte("x"), 2047)
		assert.Len(t, Truncate(raw), 2046)
	})

	t.Run("OverLimitTruncated", func(t *testing.T) {
		raw := bytes.Repeat([]byte("x"), 2048)
		assert.Len(t, Truncate(raw), 2046)
	})
}

func TestSanitizeArtifacts(t *testing.T) {
	t.Run("ReplacementCharacterDropped", func(t *testing.T) {
		assert.Equal(t, "abcd", sanitizeStr("ab\uFFFDcd", false))
	})

	t.Run("ZeroWidthCharactersDropped", func(t *testing.T) {
		assert.Equal(t, "abcd", sanitizeStr("ab\u200Bcd", false))
		assert.Equal(t, "abcd", sanitizeStr("ab\u200Ccd", false))
		assert.Equal(t, "abcd", sanitizeStr("ab\u200Dcd", false))
		assert.Equal(t, "abcd", sanitizeStr("ab\u2060cd", false))
	})

	t.Run("StrayPunctuationBetweenSpacesDropped", func(t *testing.T) {
		assert.Equal(t, "a b", sanitizeStr("a | b", false))
		assert.Equal(t, "a b", sanitizeStr("a ~ b", false))
		assert.Equal(t, "a b", sanitizeStr("a ^ b", false))
		assert.Equal(t, "a b", sanitizeStr("a ` b", false))
	})

	t.Run("AttachedPunctuationKept", func(t *testing.T) {
		assert.Equal(t, "a|b", sanitizeStr("a|b", false))
		assert.Equal(t, "x^2", sanitizeStr("x^2", false))
	})
}

func TestSanitizeDashRuns(t *testing.T) {
	t.Run("DotLeaderCollapses", func(t *testing.T) {
		assert.Equal(t, "Chapter 1 17", sanitizeStr("Chapter 1 ............... 17", false))
	})

	t.Run("DashSeparatorCollapses", func(t *testing.T) {
		assert.Equal(t, "above below", sanitizeStr("above ---------------- below", false))
	})

	t.Run("InterleavedWhitespaceCountsTowardRun", func(t *testing.T) {
		assert.Equal(t, "a b", sanitizeStr("a - - - - - b", false))
	})

	t.Run("EllipsisKept", func(t *testing.T) {
		assert.Equal(t, "wait... done", sanitizeStr("wait... done", false))
	})

	t.Run("DecimalNumberKept", func(t *testing.T) {
		assert.Equal(t, "pi is 3.14159", sanitizeStr("pi is 3.14159", false))
	})
}

func TestSanitizeURLs(t *testing.T) {
	t.Run("RemovedWhenEnabled", func(t *testing.T) {
		assert.Equal(t, "see here for more", sanitizeStr("see http://example.com/a/b here for more", true))
		assert.Equal(t, "see also", sanitizeStr("see https://example.com also", true))
	})

	t.Run("TerminatedByBrackets", func(t *testing.T) {
		assert.Equal(t, "link ( ) end", sanitizeStr("link (https://x.test/y) end", true))
	})

	t.Run("KeptWhenDisabled", func(t *testing.T) {
		assert.Equal(t, "see http://example.com here", sanitizeStr("see http://example.com here", false))
	})
}

func TestSanitizeLeadingPageNumber(t *testing.T) {
	t.Run("ShortDigitRunStripped", func(t *testing.T) {
		assert.Equal(t, "Introduction to the topic", sanitizeStr("42 Introduction to the topic", false))
	})

	t.Run("LongDigitRunKept", func(t *testing.T) {
		got := sanitizeStr("1234567890123 hello", false)
		assert.Equal(t, "1234567890123 hello", got)
	})

	t.Run("NonLeadingDigitsKept", func(t *testing.T) {
		assert.Equal(t, "page 42 is here", sanitizeStr("page 42 is here", false))
	})
}

func TestSanitizeUTF8(t *testing.T) {
	t.Run("ValidMultibyteKept", func(t *testing.T) {
		assert.Equal(t, "café 世界 \U0001F600", sanitizeStr("café 世界 \U0001F600", false))
	})

	t.Run("OverlongEncodingDropped", func(t *testing.T) {
		got := Sanitize([]byte{'a', 'b', 0xE0, 0x80, 0x80, 'c', 'd'}, false)
		assert.True(t, utf8.Valid(got))
		assert.NotContains(t, string(got), "\x00")
	})

	t.Run("SurrogateDropped", func(t *testing.T) {
		got := Sanitize([]byte{'a', 'b', 0xED, 0xA0, 0x80, 'c', 'd'}, false)
		assert.True(t, utf8.Valid(got))
	})

	t.Run("OutOfRangeDropped", func(t *testing.T) {
		got := Sanitize([]byte{'a', 'b', 0xF4, 0x90, 0x80, 0x80, 'c', 'd'}, false)
		assert.True(t, utf8.Valid(got))
	})

	t.Run("LoneContinuationDropped", func(t *testing.T) {
		got := Sanitize([]byte{'a', 'b', 0x80, 0xBF, 'c', 'd'}, false)
		assert.True(t, utf8.Valid(got))
		assert.Equal(t, "abcd", string(got))
	})

	t.Run("RandomBytesAlwaysValidUTF8", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for range 500 {
			n := rng.Intn(512)
			buf := make([]byte, n)
			rng.Read(buf)
			got := Sanitize(buf, rng.Intn(2) == 0)
			require.True(t, utf8.Valid(got), "input %x produced invalid UTF-8 %x", buf, got)
		}
	})
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"hello world",
		"42 Introduction ....... 17",
		"a | b ~ c",
		"para\n\npara  two\t three",
		"see http://example.com/x here",
		" 3 hello",
		"1. Introduction",
		"café 世界",
	}
	for _, in := range inputs {
		once := Sanitize([]byte(in), true)
		twice := Sanitize(once, true)
		assert.Equal(t, string(once), string(twice), "input %q", in)
	}

	t.Run("RandomBytes", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		for range 500 {
			buf := make([]byte, rng.Intn(256))
			rng.Read(buf)
			once := Sanitize(buf, true)
			twice := Sanitize(once, true)
			require.Equal(t, string(once), string(twice), "input %x", buf)
		}
	})
}

func TestSanitizeFullExample(t *testing.T) {
	in := "3 \u200B hello\x00\x00world http://x/y stop"
	assert.Equal(t, "hello world stop", sanitizeStr(in, true))
}

func TestSanitizeLongDocument(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	in := Truncate([]byte(sb.String()))
	got := Sanitize(in, false)
	assert.True(t, len(got) <= 2046)
	assert.True(t, utf8.Valid(got))
}
