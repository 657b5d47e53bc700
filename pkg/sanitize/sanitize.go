// Package sanitize cleans raw text extracted from PDF pages before it is
// indexed. Extraction output is noisy: broken UTF-8, zero-width characters,
// table-of-contents dot leaders, page numbers and stray OCR punctuation all
// degrade full-text search quality.
//
// The cleaner is a single-pass state machine over the input bytes. Callers
// that need a length bound must truncate the raw input before calling
// Sanitize (see TruncateLimit).
package sanitize

import "bytes"

// TruncateLimit is the tokeniser limit for one page of text. Raw page text
// at or above this length is truncated to TruncateLimit-1 bytes before
// sanitising.
const TruncateLimit = 2047

// minMeaningfulLen is the shortest output considered worth keeping. Anything
// shorter is almost certainly extraction residue.
const minMeaningfulLen = 3

const (
	// dashRunMin is the run length at which dash/dot leaders collapse.
	dashRunMin = 10
	// dashRunLookahead bounds the scan for a leader run.
	dashRunLookahead = 100
)

// Truncate caps raw page text at the tokeniser limit.
func Truncate(raw []byte) []byte {
	if len(raw) >= TruncateLimit {
		return raw[:TruncateLimit-1]
	}
	return raw
}

// Sanitize cleans one page of extracted text. The result is valid UTF-8 with
// normalised whitespace, or empty when the page carries no meaningful text.
// When removeURLs is set, http(s) URLs are elided entirely.
//
// The input slice is not modified.
func Sanitize(in []byte, removeURLs bool) []byte {
	if len(in) == 0 {
		return nil
	}

	out := make([]byte, 0, len(in))
	prevSpace := true // trims leading whitespace
	i := 0

	for i < len(in) {
		c := in[i]

		// Encoding artifacts are dropped before validation.
		// U+FFFD (EF BF BD), the replacement character from failed decodes.
		if c == 0xEF && i+2 < len(in) && in[i+1] == 0xBF && in[i+2] == 0xBD {
			i += 3
			continue
		}
		// Zero-width space/joiners (U+200B/C/D) and word joiner (U+2060).
		if c == 0xE2 && i+2 < len(in) {
			c1, c2 := in[i+1], in[i+2]
			if (c1 == 0x80 && (c2 == 0x8B || c2 == 0x8C || c2 == 0x8D)) ||
				(c1 == 0x81 && c2 == 0xA0) {
				i += 3
				continue
			}
		}

		if removeURLs && c == 'h' && isURLStart(in[i:]) {
			j := i
			for j < len(in) && !isURLStop(in[j]) {
				j++
			}
			if !prevSpace {
				out = append(out, ' ')
				prevSpace = true
			}
			i = j
			continue
		}

		// Dot leaders and separator lines ("........", "- - - - -").
		// Whitespace inside the run counts toward its length.
		if c == '-' || c == '.' {
			j := i
			for j < len(in) && j-i < dashRunLookahead && isDashRunByte(in[j]) {
				j++
			}
			if j-i >= dashRunMin {
				if !prevSpace {
					out = append(out, ' ')
					prevSpace = true
				}
				i = j
				continue
			}
		}

		if isSpace(c) {
			if !prevSpace {
				// Exactly two consecutive newlines survive as a
				// paragraph break.
				if c == '\n' && i+1 < len(in) && in[i+1] == '\n' {
					out = append(out, '\n', '\n')
					i += 2
				} else {
					out = append(out, ' ')
					i++
				}
				prevSpace = true
				continue
			}
			i++
			continue
		}

		// Lone punctuation between whitespace is an OCR artifact.
		if c == '|' || c == '~' || c == '^' || c == '`' {
			nextSpace := i+1 >= len(in) || isSpace(in[i+1])
			if prevSpace && nextSpace {
				i++
				continue
			}
		}

		n, ok := validSequence(in[i:])
		if !ok {
			// Invalid byte: drop it and resync one byte later.
			i++
			continue
		}
		if n == 1 {
			if c < 0x20 || c == 0x7F {
				// Dropped control bytes still separate words.
				if !prevSpace {
					out = append(out, ' ')
					prevSpace = true
				}
				i++
				continue
			}
			out = append(out, c)
		} else {
			out = append(out, in[i:i+n]...)
		}
		prevSpace = false
		i += n
	}

	// The page-number strip runs over cleaned text so that artifacts in
	// front of the digits cannot hide them. It also keeps the whole pass
	// idempotent.
	out = stripLeadingPageNumber(out)

	out = trimTail(out)
	if len(out) < minMeaningfulLen {
		return nil
	}
	return out
}

// stripLeadingPageNumber removes a stray page number at the start of the
// text: a short run (under 10 bytes) of digits and whitespace.
func stripLeadingPageNumber(in []byte) []byte {
	if len(in) == 0 || !isDigit(in[0]) {
		return in
	}
	i := 0
	for i < len(in) && (isDigit(in[i]) || isSpace(in[i])) {
		i++
	}
	if i > 0 && i < 10 {
		return in[i:]
	}
	return in
}

// trimTail removes trailing whitespace and dangling dash/dot characters.
func trimTail(out []byte) []byte {
	for len(out) > 0 {
		c := out[len(out)-1]
		if isSpace(c) || c == '-' || c == '.' {
			out = out[:len(out)-1]
			continue
		}
		break
	}
	return out
}

func isURLStart(b []byte) bool {
	return bytes.HasPrefix(b, []byte("http://")) || bytes.HasPrefix(b, []byte("https://"))
}

// isURLStop reports whether b terminates a URL run: whitespace or a closing
// bracket character commonly found right after inline links.
func isURLStop(b byte) bool {
	return isSpace(b) || b == ')' || b == ']' || b == '>'
}

func isDashRunByte(b byte) bool {
	return b == '-' || b == '.' || isSpace(b)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// validSequence checks the UTF-8 sequence starting at b[0] and returns its
// length. The checks mirror the WHATWG table: no overlong encodings (E0
// requires A0-BF, F0 requires 90-BF), no surrogates (ED capped at 9F) and
// nothing above U+10FFFF (F4 capped at 8F).
func validSequence(b []byte) (int, bool) {
	c := b[0]
	switch {
	case c <= 0x7F:
		return 1, true

	case c >= 0xC2 && c <= 0xDF:
		if len(b) >= 2 && isCont(b[1]) {
			return 2, true
		}
		return 0, false

	case c >= 0xE0 && c <= 0xEF:
		if len(b) < 3 {
			return 0, false
		}
		c1, c2 := b[1], b[2]
		switch c {
		case 0xE0:
			if c1 < 0xA0 || c1 > 0xBF {
				return 0, false
			}
		case 0xED:
			if c1 < 0x80 || c1 > 0x9F {
				return 0, false
			}
		default:
			if !isCont(c1) {
				return 0, false
			}
		}
		if !isCont(c2) {
			return 0, false
		}
		return 3, true

	case c >= 0xF0 && c <= 0xF4:
		if len(b) < 4 {
			return 0, false
		}
		c1, c2, c3 := b[1], b[2], b[3]
		switch c {
		case 0xF0:
			if c1 < 0x90 || c1 > 0xBF {
				return 0, false
			}
		case 0xF4:
			if c1 < 0x80 || c1 > 0x8F {
				return 0, false
			}
		default:
			if !isCont(c1) {
				return 0, false
			}
		}
		if !isCont(c2) || !isCont(c3) {
			return 0, false
		}
		return 4, true
	}
	return 0, false
}

func isCont(b byte) bool {
	return b >= 0x80 && b <= 0xBF
}
