package prompt

import (
	"strings"
	"testing"
)

func TestBuildRendersSections(t *testing.T) {
	spec := Spec{
		Purpose:    "Analyze the project description.",
		Background: "Pre-sales proposal generation.",
		OutputFields: []Field{
			{Name: "requirements", Type: "[]string", Required: true, Description: "Extracted requirements."},
			{Name: "target_audience", Type: "string", Required: false},
		},
		Constraints:  []string{"JSON only."},
		Rules:        []string{"Be specific."},
		OutputFormat: "A single JSON object.",
		Examples:     []Example{{InputJSON: `{"description":"x"}`, OutputJSON: `{"requirements":[]}`}},
	}

	out, err := Build(spec)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	for _, sec := range []string{"[PURPOSE]", "[BACKGROUND]", "[OUTPUT]", "[CONSTRAINTS]", "[RULES]", "[OUTPUT_FORMAT]", "[EXAMPLES]"} {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt:\n%s", sec, out)
		}
	}
	if !strings.Contains(out, "- requirements ([]string, required): Extracted requirements.") {
		t.Fatalf("field line missing:\n%s", out)
	}
	if !strings.Contains(out, "- target_audience (string, optional)") {
		t.Fatalf("optional field line missing:\n%s", out)
	}
}

func TestBuildSkipsEmptySections(t *testing.T) {
	out, err := Build(Spec{
		Purpose:      "x",
		OutputFields: []Field{{Name: "a", Type: "string"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "[BACKGROUND]") || strings.Contains(out, "[EXAMPLES]") {
		t.Fatalf("empty sections must be omitted:\n%s", out)
	}
}

func TestBuildRequiresPurposeAndFields(t *testing.T) {
	if _, err := Build(Spec{OutputFields: []Field{{Name: "a"}}}); err == nil {
		t.Fatal("expected purpose error")
	}
	if _, err := Build(Spec{Purpose: "x"}); err == nil {
		t.Fatal("expected output fields error")
	}
}
