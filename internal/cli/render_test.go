package cli

import (
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single", "dot", []string{"dot"}},
		{"multiple", "dot,png", []string{"dot", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"dot", "svg", "png"}); err != nil {
		t.Errorf("validateFormats(valid) error: %v", err)
	}
	if err := validateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("validateFormats should reject pdf")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derive from input", "", "diagrams/flow.drawio", "diagrams/flow"},
		{"strip format extension", "out.svg", "flow.drawio", "out"},
		{"keep foreign extension", "out.backup", "flow.drawio", "out.backup"},
		{"plain base", "renders/flow", "flow.drawio", "renders/flow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeName(t *testing.T) {
	if got := safeName("Page 1/draft"); got != "Page_1_draft" {
		t.Errorf("safeName() = %q, want Page_1_draft", got)
	}
}

func TestDerivedPath(t *testing.T) {
	if got := derivedPath("flow.drawio", true); got != "flow_compressed.drawio" {
		t.Errorf("derivedPath(compressed) = %q", got)
	}
	if got := derivedPath("flow.drawio", false); got != "flow_plain.drawio" {
		t.Errorf("derivedPath(plain) = %q", got)
	}
	if got := derivedPath("flow", true); got != "flow_compressed.drawio" {
		t.Errorf("derivedPath(no extension) = %q", got)
	}
}
