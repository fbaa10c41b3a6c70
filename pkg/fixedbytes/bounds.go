package fixedbytes

import (
	"fmt"
	"strings"
)

// Alphabet is the base64 URL-safe alphabet, without the padding character.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Bounds returns the text length range of an n-byte value.
//
// minLength is the unpadded length, ceil(4n/3). maxLength is the padded
// length, ceil(n/3)*4.
func Bounds(n int) (minLength, maxLength int) {
	minLength = (4*n + 2) / 3
	maxLength = (n + 2) / 3 * 4
	return minLength, maxLength
}

// Pattern describes the accepted text shape of an n-byte value.
type Pattern struct {
	ByteLen    int    `json:"byte_len"`
	MinLength  int    `json:"min_length"`
	MaxLength  int    `json:"max_length"`
	Alphabet   string `json:"alphabet"`
	MinPadding int    `json:"min_padding"`
	MaxPadding int    `json:"max_padding"`
}

// PatternFor returns the Pattern of an n-byte value.
func PatternFor(n int) Pattern {
	minLen, maxLen := Bounds(n)
	return Pattern{
		ByteLen:    n,
		MinLength:  minLen,
		MaxLength:  maxLen,
		Alphabet:   Alphabet,
		MinPadding: 0,
		MaxPadding: maxLen - minLen,
	}
}

// PatternOf returns the Pattern of the array shape A.
func PatternOf[A Fixed]() Pattern {
	return PatternFor(Len[A]())
}

// Regexp renders the pattern as a regular expression suitable for JSON
// schema "pattern" keywords.
func (p Pattern) Regexp() string {
	return fmt.Sprintf("^[A-Za-z0-9_\\-]{%d}={%d,%d}$", p.MinLength, p.MinPadding, p.MaxPadding)
}

// Match reports whether s has the shape described by p.
//
// Match is a cheap pre-check; a matching string can still fail Parse on
// non-canonical trailing bits.
func (p Pattern) Match(s string) bool {
	if len(s) < p.MinLength || len(s) > p.MaxLength {
		return false
	}
	body := strings.TrimRight(s, "=")
	if len(body) != p.MinLength {
		return false
	}
	if pad := len(s) - len(body); pad < p.MinPadding || pad > p.MaxPadding {
		return false
	}
	for i := 0; i < len(body); i++ {
		if strings.IndexByte(p.Alphabet, body[i]) < 0 {
			return false
		}
	}
	return true
}
