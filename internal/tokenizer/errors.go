package tokenizer

import (
	"errors"
	"fmt"
)

// ErrEncodingLength reports a computed UTF-8 byte length outside 1..4.
// Unreachable for well-formed input; Encode retains the check as a
// defensive invariant.
var ErrEncodingLength = errors.New("utf-8 byte length outside 1..4")

// ErrTokenOutOfRange reports a token that is negative or above MaxToken.
var ErrTokenOutOfRange = errors.New("token outside unicode range")

// ErrInvalidSequence reports a token whose reconstructed byte sequence
// is not valid UTF-8, such as a value in the surrogate range.
var ErrInvalidSequence = errors.New("reconstructed bytes are not valid utf-8")

// EncodeError identifies the character that made Encode fail.
type EncodeError struct {
	Index  int  // character position in the input, not byte offset
	Rune   rune // offending character
	Length int  // computed UTF-8 byte length
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode character %q at index %d (length %d): %v", e.Rune, e.Index, e.Length, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError identifies the token that made Decode fail. Bytes holds
// the reconstructed byte sequence when one was built before rejection.
type DecodeError struct {
	Index int
	Token int64
	Bytes []byte
	Err   error
}

func (e *DecodeError) Error() string {
	if len(e.Bytes) > 0 {
		return fmt.Sprintf("decode token %d at index %d (bytes % X): %v", e.Token, e.Index, e.Bytes, e.Err)
	}
	return fmt.Sprintf("decode token %d at index %d: %v", e.Token, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
