package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"slidesmith/internal/llm"
	"slidesmith/internal/types"
)

func TestPlannerSkipsWhenTooFewTechnologies(t *testing.T) {
	p := &DiagramPlanner{LLM: &scriptLLM{}} // must not be called
	specs, err := p.Plan(context.Background(), testProject(), types.DocumentAnalysis{}, types.ProjectAnalysis{Technologies: []string{"AWS"}})
	if err != nil {
		t.Fatal(err)
	}
	if specs != nil {
		t.Fatalf("expected no specs, got %v", specs)
	}
}

func TestPlannerProducesValidatedSpecs(t *testing.T) {
	p := &DiagramPlanner{LLM: llm.NewFakeClient()}
	specs, err := p.Plan(context.Background(), testProject(),
		types.DocumentAnalysis{Technologies: []string{"Kafka"}},
		types.ProjectAnalysis{Technologies: []string{"AWS", "Snowflake"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if err := specs[0].Validate(); err != nil {
		t.Fatalf("planner output must validate: %v", err)
	}
	if specs[0].LayoutDirection != types.LayoutLeftRight {
		t.Fatalf("expected LR layout, got %q", specs[0].LayoutDirection)
	}
}

func TestPlannerNormalizesBeforeValidation(t *testing.T) {
	// One spec salvageable by normalization, one hopeless.
	payload := map[string]any{
		"diagrams": []any{
			map[string]any{
				"diagram_type": "microservices",
				"title":        "Services",
				"components": []any{
					map[string]any{"name": " API "},
					map[string]any{"name": "api"},
					map[string]any{"name": "DB"},
				},
				"connections": []any{
					map[string]any{"source": "API", "target": "DB"},
					map[string]any{"source": "API", "target": "Ghost"},
				},
			},
			map[string]any{"title": "Hopeless", "components": []any{map[string]any{"name": "Solo"}}},
		},
	}
	raw, _ := json.Marshal(payload)
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageDiagramPlan: func(any) (json.RawMessage, error) { return raw, nil },
	}}
	p := &DiagramPlanner{LLM: cli}
	specs, err := p.Plan(context.Background(), testProject(),
		types.DocumentAnalysis{}, types.ProjectAnalysis{Technologies: []string{"AWS", "Kafka"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected the salvageable spec only, got %d", len(specs))
	}
	if len(specs[0].Components) != 2 || len(specs[0].Connections) != 1 {
		t.Fatalf("normalization failed: %+v", specs[0])
	}
}

func TestPlannerNoSurvivorsIsError(t *testing.T) {
	payload := map[string]any{
		"diagrams": []any{
			map[string]any{"title": "Bad", "components": []any{map[string]any{"name": "Only"}}},
		},
	}
	raw, _ := json.Marshal(payload)
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageDiagramPlan: func(any) (json.RawMessage, error) { return raw, nil },
	}}
	p := &DiagramPlanner{LLM: cli}
	_, err := p.Plan(context.Background(), testProject(),
		types.DocumentAnalysis{}, types.ProjectAnalysis{Technologies: []string{"AWS", "Kafka"}})
	if err == nil {
		t.Fatal("expected error when every proposed spec is invalid")
	}
}

func TestPlannerNoDiagramsProposed(t *testing.T) {
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageDiagramPlan: func(any) (json.RawMessage, error) { return json.RawMessage(`{"diagrams": []}`), nil },
	}}
	p := &DiagramPlanner{LLM: cli}
	specs, err := p.Plan(context.Background(), testProject(),
		types.DocumentAnalysis{}, types.ProjectAnalysis{Technologies: []string{"AWS", "Kafka"}})
	if err != nil || specs != nil {
		t.Fatalf("no diagrams is a legitimate outcome, got %v %v", specs, err)
	}
}
