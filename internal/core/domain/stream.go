package domain

import (
	"github.com/yndnr/sigstream/pkg/fixedbytes"
	"golang.org/x/text/encoding/unicode"
)

// StreamAddressSize is the byte length of a stream address.
const StreamAddressSize = 8

// StreamAddress identifies one message stream. It is also the store key.
type StreamAddress = fixedbytes.Array[[StreamAddressSize]byte]

var streamAddressPattern = fixedbytes.PatternOf[[StreamAddressSize]byte]()

// NewStreamAddress copies b into a StreamAddress.
func NewStreamAddress(b []byte) (StreamAddress, error) {
	return fixedbytes.FromBytes[[StreamAddressSize]byte](b)
}

// ParseStreamAddress decodes a raw, still percent-encoded URL path segment.
//
// Percent escapes are decoded leniently: a '%' not followed by two hex digits
// is kept as is, and bytes that are not valid UTF-8 become U+FFFD. The result
// is then parsed as base64url text. Text that cannot have the shape of an
// encoded address is rejected before decoding. Every failure is reported as
// ErrStreamNotFound.
func ParseStreamAddress(raw string) (StreamAddress, error) {
	text, err := decodeSegment(raw)
	if err != nil {
		return StreamAddress{}, ErrStreamNotFound.WithCause(err)
	}
	if !streamAddressPattern.Match(text) {
		return StreamAddress{}, ErrStreamNotFound.WithDetails("malformed stream id")
	}
	addr, err := fixedbytes.Parse[[StreamAddressSize]byte](text)
	if err != nil {
		return StreamAddress{}, ErrStreamNotFound.WithCause(err)
	}
	return addr, nil
}

func decodeSegment(raw string) (string, error) {
	buf := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]) {
			buf = append(buf, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
			continue
		}
		buf = append(buf, c)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
