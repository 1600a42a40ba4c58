package style

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	// Serialization of a parsed, unmutated style must reproduce the
	// input bytes exactly, including duplicates and empty segments.
	inputs := []string{
		"",
		"rounded=0;whiteSpace=wrap;html=1",
		"ellipse;whiteSpace=wrap;html=1",
		"rounded=0;whiteSpace=wrap;html=1;",
		"a=1;;b=2",
		"a=1;b=2;a=3",
		"edgeStyle=orthogonalEdgeStyle;jettySize=auto",
		`label=a\;b;html=1`,
	}

	for _, in := range inputs {
		st, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := st.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Entry
	}{
		{
			name:  "Pairs",
			input: "fillColor=#ffffff;strokeColor=#000000",
			want: []Entry{
				{Key: "fillColor", Value: "#ffffff"},
				{Key: "strokeColor", Value: "#000000"},
			},
		},
		{
			name:  "BareFlag",
			input: "ellipse;html=1",
			want: []Entry{
				{Key: "ellipse", Flag: true},
				{Key: "html", Value: "1"},
			},
		},
		{
			name:  "DuplicateLastWinsFirstPosition",
			input: "a=1;b=2;a=3",
			want: []Entry{
				{Key: "a", Value: "3"},
				{Key: "b", Value: "2"},
			},
		},
		{
			name:  "EmptySegmentsSkipped",
			input: ";a=1;;",
			want:  []Entry{{Key: "a", Value: "1"}},
		},
		{
			name:  "EmptyValue",
			input: "a=",
			want:  []Entry{{Key: "a", Value: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got := st.Entries()
			if len(got) != len(tt.want) {
				t.Fatalf("entries = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := []string{
		`a=1;broken\`,  // dangling escape
		"=red",         // empty key
		`bad\=key=1`,   // escape in key position
		`a=1;\;oops=2`, // escaped delimiter opening a key
	}

	for _, in := range inputs {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedStyle) {
			t.Errorf("Parse(%q) = %v, want ErrMalformedStyle", in, err)
		}
	}
}

func TestOpaqueFallback(t *testing.T) {
	raw := `bad\=key=1`
	st := Opaque(raw)

	if !st.IsOpaque() {
		t.Fatal("IsOpaque() = false")
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
	if got := st.String(); got != raw {
		t.Errorf("String() = %q, want %q", got, raw)
	}
}

func TestMutation(t *testing.T) {
	st, err := Parse("rounded=0;html=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	st.Set("rounded", "1")
	st.Set("fillColor", "#dae8fc")
	st.SetFlag("shadow")

	if got := st.String(); got != "rounded=1;html=1;fillColor=#dae8fc;shadow" {
		t.Errorf("String() = %q", got)
	}

	if !st.Delete("html") {
		t.Error("Delete(html) = false, want true")
	}
	if st.Delete("missing") {
		t.Error("Delete(missing) = true, want false")
	}
	if got := st.String(); got != "rounded=1;fillColor=#dae8fc;shadow" {
		t.Errorf("String() after delete = %q", got)
	}
}

func TestSetEscapesValue(t *testing.T) {
	var st Style
	st.Set("label", "a;b")

	out := st.String()
	if out != `label=a\;b` {
		t.Fatalf("String() = %q", out)
	}

	// The serialized form must survive a re-parse.
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if v, ok := back.Get("label"); !ok || v != `a\;b` {
		t.Errorf("Get(label) = %q, %v", v, ok)
	}
}

func TestQueries(t *testing.T) {
	st, err := Parse("ellipse;fillColor=#fff")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !st.IsFlag("ellipse") {
		t.Error("IsFlag(ellipse) = false")
	}
	if st.IsFlag("fillColor") {
		t.Error("IsFlag(fillColor) = true")
	}
	if v, ok := st.Get("fillColor"); !ok || v != "#fff" {
		t.Errorf("Get(fillColor) = %q, %v", v, ok)
	}
	if st.Has("strokeColor") {
		t.Error("Has(strokeColor) = true")
	}
}

func TestCloneIndependence(t *testing.T) {
	orig, err := Parse("a=1;b=2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c := orig.Clone()
	c.Set("a", "changed")

	if v, _ := orig.Get("a"); v != "1" {
		t.Errorf("original mutated through clone: a = %q", v)
	}
	if orig.String() != "a=1;b=2" {
		t.Errorf("original String() = %q", orig.String())
	}
}
