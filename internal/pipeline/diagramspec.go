package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"slidesmith/internal/llm"
	"slidesmith/internal/prompt"
	"slidesmith/internal/types"
)

// DiagramPlanner decides whether the analyzed project warrants architecture
// diagrams and, if so, produces validated specs. Returning no specs is a
// legitimate outcome, not an error.
type DiagramPlanner struct {
	LLM llm.Client

	// MaxDiagrams bounds how many specs one run may produce. Zero means 2.
	MaxDiagrams int
}

var diagramPrompt = mustPrompt(prompt.Spec{
	Purpose: "Design one or two architecture diagrams that represent the technical solution for a client project.",
	Background: "The input JSON carries the project description plus the document and project analysis results. " +
		"Component and connection names you output become diagram nodes verbatim.",
	OutputFields: []prompt.Field{
		{Name: "diagrams", Type: "[]object", Required: true, Description: "Diagram specs: diagram_type, title, components, connections, layout_direction, clustering"},
		{Name: "analysis_metadata", Type: "object", Required: false, Description: "architecture_pattern, complexity_level, technical_confidence"},
	},
	Constraints: []string{
		"2 to 20 components per diagram; 5 to 15 is the readable range.",
		"component_type one of: service, database, queue, api, storage, compute, container, loadbalancer, analytics, etl, streaming.",
		"icon_provider one of: aws, azure, gcp, kubernetes, onprem, generic.",
		"layout_direction one of: TB, LR, BT, RL.",
		"Every connection source/target and cluster member must repeat a component name exactly.",
	},
	Rules: []string{
		"Only include components explicitly mentioned or strongly implied by the analyses.",
		"Group related components into clusters such as Web Tier, Application Tier, Data Tier.",
		"Choose the provider the project context points at; use generic when unclear.",
	},
	OutputFormat: "STRICT JSON matching the OUTPUT fields. No markdown, no comments.",
})

type diagramPlanOut struct {
	Diagrams []types.DiagramSpec `json:"diagrams"`
	Metadata struct {
		ArchitecturePattern string  `json:"architecture_pattern"`
		ComplexityLevel     string  `json:"complexity_level"`
		TechnicalConfidence float64 `json:"technical_confidence"`
	} `json:"analysis_metadata"`
}

// Plan is the decide-and-specify contract. A nil slice with nil error means
// "no diagram needed".
func (p *DiagramPlanner) Plan(
	ctx context.Context,
	project types.ProjectDescription,
	docAnalysis types.DocumentAnalysis,
	projAnalysis types.ProjectAnalysis,
) ([]types.DiagramSpec, error) {
	// Fewer than two distinguishable technical components cannot form a
	// coherent graph; skip the model call entirely.
	techs := dedupFold(append(append([]string(nil), projAnalysis.Technologies...), docAnalysis.Technologies...))
	if len(techs) < types.MinDiagramComponents {
		log.Printf("diagram plan: %d known technologies, skipping diagram", len(techs))
		return nil, nil
	}

	ctx = llm.WithStage(ctx, types.StageDiagramPlan)
	input := map[string]any{
		"project": project,
		"project_analysis": map[string]any{
			"requirements":         projAnalysis.Requirements,
			"technologies":         projAnalysis.Technologies,
			"solution_approaches":  projAnalysis.SolutionApproaches,
			"technical_challenges": projAnalysis.TechnicalChallenges,
		},
		"document_analysis": map[string]any{
			"technologies": docAnalysis.Technologies,
			"approaches":   docAnalysis.Approaches,
			"key_themes":   docAnalysis.KeyThemes,
		},
	}
	raw, err := p.LLM.GenerateJSON(ctx, diagramPrompt, input)
	if err != nil {
		return nil, fmt.Errorf("diagram plan: %w", err)
	}
	var out diagramPlanOut
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("diagram plan: malformed response: %w", err)
	}
	if len(out.Diagrams) == 0 {
		return nil, nil
	}

	maxD := p.MaxDiagrams
	if maxD <= 0 {
		maxD = 2
	}
	specs := make([]types.DiagramSpec, 0, maxD)
	var lastErr error
	for _, spec := range out.Diagrams {
		norm := spec.Normalize()
		if err := norm.Validate(); err != nil {
			// Invariant-violating specs never pass downstream.
			log.Printf("diagram plan: dropping spec: %v", err)
			lastErr = err
			continue
		}
		specs = append(specs, norm)
		if len(specs) == maxD {
			break
		}
	}
	if len(specs) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("diagram plan: no spec survived validation: %w", lastErr)
		}
		return nil, nil
	}
	return specs, nil
}
