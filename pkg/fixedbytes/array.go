package fixedbytes

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSize is returned when a byte slice or decoded text does not
	// have the exact array length.
	ErrInvalidSize = errors.New("fixedbytes: invalid byte size")

	// ErrInvalidEncoding is returned when text is not valid base64 in the
	// URL-safe alphabet.
	ErrInvalidEncoding = errors.New("fixedbytes: invalid base64")
)

// Fixed is the set of byte array shapes an Array can hold.
type Fixed interface {
	~[8]byte | ~[64]byte | ~[128]byte
}

// Array is an immutable, exact-length byte value.
//
// The zero value holds N zero bytes and is valid. Arrays compare with ==.
type Array[A Fixed] struct {
	v A
}

// New wraps a raw array.
func New[A Fixed](v A) Array[A] {
	return Array[A]{v: v}
}

// Len returns N for the array shape A.
func Len[A Fixed]() int {
	var a A
	return len(a)
}

// FromBytes copies b into a new Array. It fails with ErrInvalidSize unless
// len(b) == N.
func FromBytes[A Fixed](b []byte) (Array[A], error) {
	var out Array[A]
	if len(b) != len(out.v) {
		return out, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSize, len(b), len(out.v))
	}
	for i := 0; i < len(out.v); i++ {
		out.v[i] = b[i]
	}
	return out, nil
}

// MustFromBytes is like FromBytes but panics on error.
// Intended for tests and package-level fixtures.
func MustFromBytes[A Fixed](b []byte) Array[A] {
	a, err := FromBytes[A](b)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse decodes base64 URL-safe text, padded or not, into an Array.
//
// A base64 syntax error yields ErrInvalidEncoding; a successful decode of the
// wrong length yields ErrInvalidSize.
func Parse[A Fixed](s string) (Array[A], error) {
	raw, err := decodeText(s)
	if err != nil {
		return Array[A]{}, err
	}
	return FromBytes[A](raw)
}

func decodeText(s string) ([]byte, error) {
	// The stdlib decoder silently skips CR and LF.
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: unexpected line break", ErrInvalidEncoding)
	}

	enc := base64.RawURLEncoding
	if strings.HasSuffix(s, string(base64.StdPadding)) {
		enc = base64.URLEncoding
	}

	raw, err := enc.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return raw, nil
}

// Value returns a copy of the underlying array.
func (a Array[A]) Value() A {
	return a.v
}

// Len returns N.
func (a Array[A]) Len() int {
	return len(a.v)
}

// Bytes returns a copy of the N bytes.
func (a Array[A]) Bytes() []byte {
	out := make([]byte, len(a.v))
	for i := range out {
		out[i] = a.v[i]
	}
	return out
}

// AppendTo appends the N bytes to dst.
func (a Array[A]) AppendTo(dst []byte) []byte {
	for i := 0; i < len(a.v); i++ {
		dst = append(dst, a.v[i])
	}
	return dst
}

// String returns the padded base64 URL-safe encoding.
func (a Array[A]) String() string {
	return base64.URLEncoding.EncodeToString(a.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (a Array[A]) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// On error the receiver is left unchanged.
func (a *Array[A]) UnmarshalText(text []byte) error {
	parsed, err := Parse[A](string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Equal reports whether a and b hold the same bytes.
func (a Array[A]) Equal(b Array[A]) bool {
	return a == b
}

// Compare orders arrays byte-wise. The result is -1, 0 or +1.
func (a Array[A]) Compare(b Array[A]) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}
