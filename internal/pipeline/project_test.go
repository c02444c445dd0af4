package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"slidesmith/internal/llm"
	"slidesmith/internal/types"
)

func testProject() types.ProjectDescription {
	return types.ProjectDescription{
		Description:     "Build a streaming data platform on AWS with Kafka ingestion and Snowflake analytics. Deliver dashboards for the sales team.",
		ClientName:      "Acme Corp",
		Industry:        "Retail",
		KeyTechnologies: []string{"Terraform"},
	}
}

func TestProjectAnalyzerSuccess(t *testing.T) {
	out := (&ProjectAnalyzer{LLM: llm.NewFakeClient()}).Analyze(context.Background(), testProject())
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if out.Confidence <= 0 {
		t.Fatal("expected positive confidence")
	}
	// Declared technologies merge into the analysis result.
	found := false
	for _, tech := range out.Technologies {
		if tech == "Terraform" {
			found = true
		}
	}
	if !found {
		t.Fatalf("declared technology missing from %v", out.Technologies)
	}
}

func TestProjectAnalyzerKeywordFallback(t *testing.T) {
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageProjAnalysis: func(any) (json.RawMessage, error) {
			return json.RawMessage(`{"requirements": []}`), nil
		},
	}}
	out := (&ProjectAnalyzer{LLM: cli}).Analyze(context.Background(), testProject())
	if !out.Success {
		t.Fatalf("fallback should report degraded success: %+v", out)
	}
	if out.Confidence >= 0.5 {
		t.Fatalf("fallback confidence should be reduced, got %v", out.Confidence)
	}
	if len(out.Requirements) == 0 {
		t.Fatal("fallback must derive requirements from the description")
	}
	techs := map[string]bool{}
	for _, tech := range out.Technologies {
		techs[tech] = true
	}
	for _, want := range []string{"AWS", "Kafka", "Snowflake", "Terraform"} {
		if !techs[want] {
			t.Fatalf("expected %s in fallback technologies %v", want, out.Technologies)
		}
	}
}

func TestProjectAnalyzerLLMError(t *testing.T) {
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageProjAnalysis: func(any) (json.RawMessage, error) { return nil, errors.New("quota") },
	}}
	out := (&ProjectAnalyzer{LLM: cli}).Analyze(context.Background(), testProject())
	if out.Success {
		t.Fatal("transport error must fail the analysis")
	}
	if out.Error == "" {
		t.Fatal("expected error message")
	}
}
