package fixedbytes

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	return b
}

func roundTrip[A Fixed](t *testing.T) {
	n := Len[A]()
	samples := [][]byte{
		make([]byte, n),
		bytes.Repeat([]byte{0xff}, n),
		bytes.Repeat([]byte{0x01}, n),
	}
	for i := 0; i < 32; i++ {
		samples = append(samples, randomBytes(t, n))
	}

	for _, b := range samples {
		a, err := FromBytes[A](b)
		if err != nil {
			t.Fatalf("FromBytes() error = %v", err)
		}
		got, err := Parse[A](a.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", a.String(), err)
		}
		if !bytes.Equal(got.Bytes(), b) {
			t.Fatalf("round trip mismatch: got %x, want %x", got.Bytes(), b)
		}
		if got != a {
			t.Fatalf("round trip produced unequal value")
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Run("8", roundTrip[[8]byte])
	t.Run("64", roundTrip[[64]byte])
	t.Run("128", roundTrip[[128]byte])
}

func sizeRejection[A Fixed](t *testing.T) {
	n := Len[A]()
	for _, size := range []int{0, n - 1, n + 1} {
		_, err := FromBytes[A](make([]byte, size))
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("FromBytes(len=%d) error = %v, want ErrInvalidSize", size, err)
		}
	}
	if _, err := FromBytes[A](make([]byte, n)); err != nil {
		t.Errorf("FromBytes(len=%d) error = %v, want nil", n, err)
	}
}

func TestFromBytes_SizeRejection(t *testing.T) {
	t.Run("8", sizeRejection[[8]byte])
	t.Run("64", sizeRejection[[64]byte])
	t.Run("128", sizeRejection[[128]byte])
}

func TestFromBytes_Copies(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := MustFromBytes[[8]byte](b)
	b[0] = 99

	if a.Bytes()[0] != 1 {
		t.Error("Array must not alias the input slice")
	}

	out := a.Bytes()
	out[1] = 99
	if a.Bytes()[1] != 2 {
		t.Error("Bytes() must return a copy")
	}
}

func TestString_Padded(t *testing.T) {
	var zero Array[[8]byte]
	if got := zero.String(); got != "AAAAAAAAAAA=" {
		t.Errorf("String() = %q, want %q", got, "AAAAAAAAAAA=")
	}

	one := MustFromBytes[[8]byte]([]byte{0, 0, 0, 0, 0, 0, 0, 1})
	if got := one.String(); got != "AAAAAAAAAAE=" {
		t.Errorf("String() = %q, want %q", got, "AAAAAAAAAAE=")
	}
}

func TestString_URLSafeAlphabet(t *testing.T) {
	a := MustFromBytes[[8]byte](bytes.Repeat([]byte{0xfb}, 8))
	s := a.String()
	if s != base64.URLEncoding.EncodeToString(bytes.Repeat([]byte{0xfb}, 8)) {
		t.Errorf("String() = %q, not URL-safe base64", s)
	}
	for _, c := range s {
		if c == '+' || c == '/' {
			t.Fatalf("String() = %q contains standard alphabet character %q", s, c)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr error
	}{
		{
			name:  "padded",
			input: "AAAAAAAAAAE=",
			want:  []byte{0, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:  "unpadded",
			input: "AAAAAAAAAAE",
			want:  []byte{0, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:  "url safe characters",
			input: "-_-_-_-_-_8=",
			want:  mustDecode("-_-_-_-_-_8="),
		},
		{
			name:    "standard alphabet rejected",
			input:   "+/+/+/+/+/8=",
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "extra character",
			input:   "AAAAAAAAAAAAA=",
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "too much padding",
			input:   "AAAAAAAAAAA==",
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "line break",
			input:   "AAAAAA\nAAAAA=",
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "garbage",
			input:   "not base64!",
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "valid base64 short",
			input:   "AAAAAAAA",
			wantErr: ErrInvalidSize,
		},
		{
			name:    "valid base64 long",
			input:   "AAAAAAAAAAAAAA==",
			wantErr: ErrInvalidSize,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrInvalidSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse[[8]byte](tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !bytes.Equal(got.Bytes(), tt.want) {
				t.Errorf("Parse(%q) = %x, want %x", tt.input, got.Bytes(), tt.want)
			}
		})
	}
}

func mustDecode(s string) []byte {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestParse_ExtraCharacterOnLargeArray(t *testing.T) {
	sig := MustFromBytes[[64]byte](bytes.Repeat([]byte{1}, 64))
	corrupted := "A" + sig.String()

	_, err := Parse[[64]byte](corrupted)
	if !errors.Is(err, ErrInvalidEncoding) && !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("Parse(corrupted) error = %v, want ErrInvalidEncoding or ErrInvalidSize", err)
	}
}

func TestCompare(t *testing.T) {
	a := MustFromBytes[[8]byte]([]byte{0, 0, 0, 0, 0, 0, 0, 1})
	b := MustFromBytes[[8]byte]([]byte{0, 0, 0, 0, 0, 0, 0, 2})
	c := MustFromBytes[[8]byte]([]byte{1, 0, 0, 0, 0, 0, 0, 0})

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare must order by last differing byte")
	}
	if b.Compare(c) != -1 {
		t.Error("Compare must be lexicographic")
	}
	if !a.Equal(MustFromBytes[[8]byte](a.Bytes())) {
		t.Error("Equal must hold for identical bytes")
	}
}

func TestZeroValue(t *testing.T) {
	var zero Array[[64]byte]
	if zero.Len() != 64 || len(zero.Bytes()) != 64 {
		t.Errorf("zero value length = %d, want 64", len(zero.Bytes()))
	}
	if !bytes.Equal(zero.Bytes(), make([]byte, 64)) {
		t.Error("zero value must hold zero bytes")
	}
}

func TestAppendTo(t *testing.T) {
	a := MustFromBytes[[8]byte]([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	got := a.AppendTo([]byte{0xaa})
	want := []byte{0xaa, 1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendTo() = %x, want %x", got, want)
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		ID Array[[8]byte] `json:"id"`
	}

	in := payload{ID: MustFromBytes[[8]byte]([]byte{0, 0, 0, 0, 0, 0, 0, 3})}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != `{"id":"AAAAAAAAAAM="}` {
		t.Errorf("json.Marshal() = %s", data)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("json round trip = %v, want %v", out.ID, in.ID)
	}

	err = json.Unmarshal([]byte(`{"id":"AAAA"}`), &out)
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("json.Unmarshal(short) error = %v, want ErrInvalidSize", err)
	}
}

func TestUnmarshalText_LeavesReceiverOnError(t *testing.T) {
	a := MustFromBytes[[8]byte]([]byte{9, 9, 9, 9, 9, 9, 9, 9})
	before := a
	if err := a.UnmarshalText([]byte("%%%")); err == nil {
		t.Fatal("UnmarshalText() expected error")
	}
	if a != before {
		t.Error("UnmarshalText() modified receiver on error")
	}
}

func ExampleParse() {
	addr, err := Parse[[8]byte]("AAAAAAAAAAE")
	if err != nil {
		panic(err)
	}
	fmt.Println(addr, addr.Bytes())
	// Output: AAAAAAAAAAE= [0 0 0 0 0 0 0 1]
}
