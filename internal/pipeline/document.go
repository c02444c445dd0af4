package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"slidesmith/internal/llm"
	"slidesmith/internal/prompt"
	"slidesmith/internal/types"
)

// DocumentAnalyzer summarizes the extracted reference material. Failures
// never escape the Analyze boundary; they come back as a failed result with
// confidence zero.
type DocumentAnalyzer struct {
	LLM llm.Client
}

var docAnalysisPrompt = mustPrompt(prompt.Spec{
	Purpose: "Analyze extracted slide and page content from a consultancy's past deliverables to surface reusable material for a new client proposal.",
	Background: "The input JSON carries the new project description and an ordered list of extracted units " +
		"(position, title, body, source file). Units originate from previous presentations and PDFs.",
	OutputFields: []prompt.Field{
		{Name: "analysis", Type: "string", Required: true, Description: "Structured prose analysis of the material"},
		{Name: "technologies", Type: "[]string", Required: false, Description: "Technologies demonstrated in the documents"},
		{Name: "approaches", Type: "[]string", Required: false, Description: "Solution approaches that proved out"},
		{Name: "case_studies", Type: "[]string", Required: false, Description: "Named case studies or client engagements"},
		{Name: "key_themes", Type: "[]string", Required: false, Description: "Recurring business and technical themes"},
		{Name: "confidence", Type: "number", Required: true, Description: "Self-assessed reliability in [0,1]"},
	},
	Constraints: []string{
		"Only reference technologies and approaches present in the input.",
		"Prefer material relevant to the new project description.",
	},
	Rules:        []string{"Do not invent case studies.", "Keep lists short and specific."},
	OutputFormat: "STRICT JSON matching the OUTPUT fields. No markdown, no comments.",
})

type docAnalysisOut struct {
	Analysis     string   `json:"analysis"`
	Technologies []string `json:"technologies"`
	Approaches   []string `json:"approaches"`
	CaseStudies  []string `json:"case_studies"`
	KeyThemes    []string `json:"key_themes"`
	Confidence   float64  `json:"confidence"`
}

// Analyze runs the document analysis pass. With no units it succeeds with an
// empty analysis and low confidence so downstream prompts can say so.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, projectDesc string, units []types.ExtractedUnit) types.DocumentAnalysis {
	sources := map[string]bool{}
	for _, u := range units {
		sources[u.SourceFile] = true
	}
	if len(units) == 0 {
		return types.DocumentAnalysis{
			Analysis:   "No reference documents provided.",
			Confidence: 0.3,
			Success:    true,
		}
	}

	ctx = llm.WithStage(ctx, types.StageDocAnalysis)
	input := map[string]any{
		"project_description": projectDesc,
		"units":               units,
	}
	raw, err := a.LLM.GenerateJSON(ctx, docAnalysisPrompt, input)
	if err != nil {
		return failedDocAnalysis(len(sources), fmt.Errorf("document analysis: %w", err))
	}
	var out docAnalysisOut
	if err := json.Unmarshal(raw, &out); err != nil {
		return failedDocAnalysis(len(sources), fmt.Errorf("document analysis: malformed response: %w", err))
	}
	if strings.TrimSpace(out.Analysis) == "" {
		return failedDocAnalysis(len(sources), fmt.Errorf("document analysis: empty analysis payload"))
	}
	return types.DocumentAnalysis{
		Analysis:        out.Analysis,
		SourceDocuments: len(sources),
		Technologies:    dedupFold(out.Technologies),
		Approaches:      dedupFold(out.Approaches),
		CaseStudies:     dedupFold(out.CaseStudies),
		KeyThemes:       dedupFold(out.KeyThemes),
		Confidence:      successConfidence(out.Confidence),
		Success:         true,
	}
}

func failedDocAnalysis(sources int, err error) types.DocumentAnalysis {
	return types.DocumentAnalysis{
		SourceDocuments: sources,
		Confidence:      0,
		Success:         false,
		Error:           err.Error(),
	}
}

// dedupFold dedups case-insensitively, keeping first spellings and order.
func dedupFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// successConfidence clamps to [0,1] and keeps a positive floor: a successful
// analysis never carries confidence zero.
func successConfidence(v float64) float64 {
	v = clamp01(v)
	if v == 0 {
		return 0.05
	}
	return v
}

func mustPrompt(spec prompt.Spec) string {
	p, err := prompt.Build(spec)
	if err != nil {
		panic(err)
	}
	return p
}
