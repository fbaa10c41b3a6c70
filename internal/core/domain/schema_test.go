package domain

import "testing"

func TestSchemas(t *testing.T) {
	want := []struct {
		name     string
		min, max int
	}{
		{"8BytesBase64Encoded", 11, 12},
		{"64BytesBase64Encoded", 86, 88},
		{"128BytesBase64Encoded", 171, 172},
	}

	got := Schemas()
	if len(got) != len(want) {
		t.Fatalf("len(Schemas()) = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		s := got[i]
		if s.Name != w.name {
			t.Errorf("Schemas()[%d].Name = %q, want %q", i, s.Name, w.name)
		}
		if s.Pattern.MinLength != w.min || s.Pattern.MaxLength != w.max {
			t.Errorf("%s bounds = %d/%d, want %d/%d", w.name, s.Pattern.MinLength, s.Pattern.MaxLength, w.min, w.max)
		}
	}
}
