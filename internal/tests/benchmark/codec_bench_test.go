package benchmark

import (
	"encoding/json"
	"testing"

	"github.com/yndnr/sigstream/internal/core/domain"
)

func BenchmarkStreamAddress_String(b *testing.B) {
	id := newStream()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = id.String()
	}
}

func BenchmarkParseStreamAddress(b *testing.B) {
	inputs := map[string]string{
		"padded":  newStream().String(),
		"escaped": "AAECAwQFBgc%3D",
		"invalid": "%zz%ff",
	}

	for name, in := range inputs {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = domain.ParseStreamAddress(in)
			}
		})
	}
}

func BenchmarkMessage_Pack(b *testing.B) {
	m := newMessage()
	b.ReportAllocs()
	b.SetBytes(domain.PackedSize)
	for i := 0; i < b.N; i++ {
		_ = m.Pack()
	}
}

func BenchmarkUnpackMessage(b *testing.B) {
	blob := newMessage().Pack()
	b.ReportAllocs()
	b.SetBytes(domain.PackedSize)
	for i := 0; i < b.N; i++ {
		if _, err := domain.UnpackMessage(blob); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMessage_JSON(b *testing.B) {
	m := newMessage()
	body, err := json.Marshal(m)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("marshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := json.Marshal(m); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("unmarshal", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var out domain.Message
			if err := json.Unmarshal(body, &out); err != nil {
				b.Fatal(err)
			}
		}
	})
}
