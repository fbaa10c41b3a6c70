package output

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

type tabularSample []sample

func (s tabularSample) Table() *Table {
	t := NewTable("NAME", "COUNT")
	for _, v := range s {
		t.AddRow(v.Name, strings.Repeat("*", v.Count))
	}
	return t
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	tf, ok := NewFormatter("unknown", true).(*TableFormatter)
	if !ok {
		t.Fatal("expected TableFormatter for unknown format")
	}
	if !tf.NoHeaders {
		t.Error("expected NoHeaders to be carried over")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "{\n  \"name\": \"a\",\n  \"count\": 2\n}\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	data := []sample{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "- name: a\n  count: 1\n- name: b\n  count: 2\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Format(t *testing.T) {
	t.Run("table pointer", func(t *testing.T) {
		tbl := NewTable("NAME", "VALUE")
		tbl.AddRow("key1", "value1")

		var buf bytes.Buffer
		if err := (&TableFormatter{}).Format(&buf, tbl); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "NAME  VALUE\nkey1  value1\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("table value without headers", func(t *testing.T) {
		tbl := Table{Headers: []string{"COL"}, Rows: [][]string{{"data"}}}

		var buf bytes.Buffer
		if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if buf.String() != "data\n" {
			t.Errorf("Format() = %q, want %q", buf.String(), "data\n")
		}
	})

	t.Run("tabular", func(t *testing.T) {
		var buf bytes.Buffer
		data := tabularSample{{Name: "x", Count: 3}}
		if err := (&TableFormatter{}).Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "NAME  COUNT\nx     ***\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&TableFormatter{}).Format(&buf, sample{Name: "a"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"name": "a"`) {
			t.Errorf("Format() = %q, want JSON fallback", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("Format(nil) wrote %q", buf.String())
		}
	})
}

func TestTable_SetHeaders(t *testing.T) {
	tbl := &Table{}
	tbl.SetHeaders("A", "B")
	tbl.AddRow("1", "2")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.String() != "A  B\n1  2\n" {
		t.Errorf("Render() = %q", buf.String())
	}
}
