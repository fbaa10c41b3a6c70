package domain

import (
	"strconv"

	"github.com/yndnr/sigstream/pkg/fixedbytes"
)

// Schema is the text shape of one fixed-size type, keyed for publication.
type Schema struct {
	Name    string
	Pattern fixedbytes.Pattern
}

// SchemaName returns the component name used for an n-byte field.
func SchemaName(n int) string {
	return strconv.Itoa(n) + "BytesBase64Encoded"
}

// Schemas lists the shapes of StreamAddress, Signature and MessageData,
// smallest first.
func Schemas() []Schema {
	sizes := []int{StreamAddressSize, SignatureSize, DataSize}
	out := make([]Schema, 0, len(sizes))
	for _, n := range sizes {
		out = append(out, Schema{Name: SchemaName(n), Pattern: fixedbytes.PatternFor(n)})
	}
	return out
}
