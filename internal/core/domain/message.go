package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yndnr/sigstream/pkg/fixedbytes"
)

// Message sizes in bytes.
const (
	SignatureSize = 64
	DataSize      = 128
	PackedSize    = DataSize + SignatureSize
)

// Signature is the 64-byte signature over a message.
type Signature = fixedbytes.Array[[SignatureSize]byte]

// MessageData is the 128-byte message payload.
type MessageData = fixedbytes.Array[[DataSize]byte]

// Message is one signed record in a stream.
type Message struct {
	Signature Signature   `json:"signature"`
	Data      MessageData `json:"data"`
}

// ParseMessage builds a Message from the text forms of its two fields.
//
// A field that is not base64url text yields ErrInvalidEncoding, a field of
// the wrong decoded length yields ErrInvalidSize. Details names the field.
func ParseMessage(signatureText, dataText string) (Message, error) {
	sig, err := fixedbytes.Parse[[SignatureSize]byte](signatureText)
	if err != nil {
		return Message{}, fieldError("signature", err)
	}
	data, err := fixedbytes.Parse[[DataSize]byte](dataText)
	if err != nil {
		return Message{}, fieldError("data", err)
	}
	return Message{Signature: sig, Data: data}, nil
}

func fieldError(field string, err error) error {
	switch {
	case errors.Is(err, fixedbytes.ErrInvalidSize):
		return ErrInvalidSize.WithDetails(field).WithCause(err)
	case errors.Is(err, fixedbytes.ErrInvalidEncoding):
		return ErrInvalidEncoding.WithDetails(field).WithCause(err)
	default:
		return ErrInvalidBody.WithDetails(field).WithCause(err)
	}
}

type messageJSON struct {
	Signature *string `json:"signature"`
	Data      *string `json:"data"`
}

// UnmarshalJSON decodes {"signature": "...", "data": "..."}. Both fields are
// required.
func (m *Message) UnmarshalJSON(b []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrInvalidBody.WithCause(err)
	}
	if raw.Signature == nil {
		return ErrInvalidBody.WithDetails("missing field: signature")
	}
	if raw.Data == nil {
		return ErrInvalidBody.WithDetails("missing field: data")
	}
	parsed, err := ParseMessage(*raw.Signature, *raw.Data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Pack encodes m as its 192-byte stored form: data, then signature.
func (m Message) Pack() []byte {
	out := make([]byte, 0, PackedSize)
	out = m.Data.AppendTo(out)
	out = m.Signature.AppendTo(out)
	return out
}

// UnpackMessage decodes a blob produced by Pack.
func UnpackMessage(blob []byte) (Message, error) {
	if len(blob) != PackedSize {
		return Message{}, ErrMessageSize.WithDetails(fmt.Sprintf("got %d bytes, want %d", len(blob), PackedSize))
	}
	data := fixedbytes.MustFromBytes[[DataSize]byte](blob[:DataSize])
	sig := fixedbytes.MustFromBytes[[SignatureSize]byte](blob[DataSize:])
	return Message{Signature: sig, Data: data}, nil
}

// BlobFromValue extracts the bytes of a raw store reply element. Only binary
// values ([]byte or string) are accepted; anything else yields ErrMessageType.
func BlobFromValue(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, ErrMessageType.WithDetails(fmt.Sprintf("got %T", v))
	}
}
