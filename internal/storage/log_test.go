package storage

import "testing"

func TestClampRange(t *testing.T) {
	tests := []struct {
		name           string
		length         int64
		start, stop    int64
		wantLo, wantHi int64
		wantOK         bool
	}{
		{"empty list", 0, 0, 100, 0, 0, false},
		{"whole list", 3, 0, -1, 0, 2, true},
		{"stop past end", 3, 0, 100, 0, 2, true},
		{"single element", 3, 1, 1, 1, 1, true},
		{"start past end", 3, 3, 10, 0, 0, false},
		{"start after stop", 3, 2, 1, 0, 0, false},
		{"negative start", 5, -2, -1, 3, 4, true},
		{"negative start before head", 3, -10, 0, 0, 0, true},
		{"negative stop before head", 3, 0, -10, 0, 0, false},
		{"zero stop", 3, 0, 0, 0, 0, true},
		{"max u32 start", 3, 4294967295, 255, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := ClampRange(tt.length, tt.start, tt.stop)
			if ok != tt.wantOK {
				t.Fatalf("ClampRange(%d, %d, %d) ok = %v, want %v", tt.length, tt.start, tt.stop, ok, tt.wantOK)
			}
			if ok && (lo != tt.wantLo || hi != tt.wantHi) {
				t.Errorf("ClampRange(%d, %d, %d) = [%d, %d], want [%d, %d]",
					tt.length, tt.start, tt.stop, lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}
