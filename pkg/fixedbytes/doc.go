// Package fixedbytes provides exact-length byte arrays with a base64 URL-safe
// text form.
//
// An Array is a comparable value type that always holds exactly N bytes,
// where N is fixed by its type argument:
//
//	type Address = fixedbytes.Array[[8]byte]
//
//	addr, err := fixedbytes.Parse[[8]byte]("AAAAAAAAAAA=")
//	fmt.Println(addr) // AAAAAAAAAAA=
//
// Text encoding:
//
//   - Alphabet: A-Z a-z 0-9 - _ (RFC 4648 section 5)
//   - Encoding always emits '=' padding
//   - Decoding accepts padded and unpadded input
//   - Decoded length must equal N exactly
//
// Bounds and Pattern describe the accepted text shape for a given N so that
// schema generators and boundary checks can reject malformed input before a
// full decode.
package fixedbytes
