// Package tokenizer implements the UTF-8 mixed-radix text codec.
// Each Unicode scalar value is encoded in UTF-8, the header bits are
// masked off, and the remaining payload bits are concatenated into a
// single integer. The resulting token is numerically equal to the
// character's scalar value, so the transform is a re-basing of UTF-8's
// variable-length byte encoding rather than a separate numeric space.
package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// MaxToken is the largest valid token value, equal to the Unicode maximum.
const MaxToken = 0x10FFFF

// Encode converts text into one token per Unicode scalar value, in order
// of appearance. The output length equals the character count of the
// input, not its byte count. The input is never modified or normalized.
func Encode(text string) ([]int64, error) {
	tokens := make([]int64, 0, utf8.RuneCountInString(text))

	idx := 0
	var buf [4]byte
	for _, r := range text {
		n := utf8.EncodeRune(buf[:], r)

		var tok int64
		switch n {
		case 1:
			// 0xxxxxxx → 7 payload bits.
			tok = int64(buf[0] & 0x7F)
		case 2:
			// 110xxxxx 10xxxxxx → 5+6 payload bits.
			tok = int64(buf[0]&0x1F)<<6 | int64(buf[1]&0x3F)
		case 3:
			// 1110xxxx 10xxxxxx 10xxxxxx → 4+6+6 payload bits.
			tok = int64(buf[0]&0x0F)<<12 | int64(buf[1]&0x3F)<<6 | int64(buf[2]&0x3F)
		case 4:
			// 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx → 3+6+6+6 payload bits.
			tok = int64(buf[0]&0x07)<<18 | int64(buf[1]&0x3F)<<12 |
				int64(buf[2]&0x3F)<<6 | int64(buf[3]&0x3F)
		default:
			// Unreachable for any scalar value a range loop can yield;
			// kept as an invariant check on the UTF-8 length computation.
			return nil, &EncodeError{Index: idx, Rune: r, Length: n, Err: ErrEncodingLength}
		}

		tokens = append(tokens, tok)
		idx++
	}

	return tokens, nil
}

// Decode converts a token sequence back into text by rebuilding each
// token's UTF-8 byte sequence and concatenating the decoded characters.
// It fails on the first invalid element: tokens outside 0..MaxToken wrap
// ErrTokenOutOfRange, and tokens whose rebuilt bytes are not valid UTF-8
// (the surrogate range 0xD800-0xDFFF) wrap ErrInvalidSequence.
func Decode(tokens []int64) (string, error) {
	var b strings.Builder
	b.Grow(len(tokens))

	var buf [4]byte
	for i, tok := range tokens {
		if tok < 0 || tok > MaxToken {
			return "", &DecodeError{Index: i, Token: tok, Err: ErrTokenOutOfRange}
		}

		var n int
		switch {
		case tok < 0x80:
			buf[0] = byte(tok)
			n = 1
		case tok < 0x800:
			buf[0] = 0xC0 | byte(tok>>6)
			buf[1] = 0x80 | byte(tok&0x3F)
			n = 2
		case tok < 0x10000:
			buf[0] = 0xE0 | byte(tok>>12)
			buf[1] = 0x80 | byte(tok>>6&0x3F)
			buf[2] = 0x80 | byte(tok&0x3F)
			n = 3
		default:
			buf[0] = 0xF0 | byte(tok>>18)
			buf[1] = 0x80 | byte(tok>>12&0x3F)
			buf[2] = 0x80 | byte(tok>>6&0x3F)
			buf[3] = 0x80 | byte(tok&0x3F)
			n = 4
		}

		// Surrogate tokens classify as 3-byte by magnitude but their
		// rebuilt bytes do not decode as UTF-8; reject rather than emit
		// malformed text.
		r, size := utf8.DecodeRune(buf[:n])
		if size != n || (r == utf8.RuneError && size == 1) {
			seq := make([]byte, n)
			copy(seq, buf[:n])
			return "", &DecodeError{Index: i, Token: tok, Bytes: seq, Err: ErrInvalidSequence}
		}

		b.Write(buf[:n])
	}

	return b.String(), nil
}
