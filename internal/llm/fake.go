package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns deterministic JSON payloads per stage for offline runs
// and tests. Payloads satisfy every downstream validation invariant so a
// full pipeline run succeeds without network access.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var obj any
	switch StageFrom(ctx) {
	case "document_analysis":
		obj = map[string]any{
			"analysis":     "Reference material covers prior cloud delivery work.",
			"technologies": []string{"AWS", "Kafka", "PostgreSQL"},
			"approaches":   []string{"event-driven ingestion", "managed services first"},
			"case_studies": []string{"Retail data platform modernization"},
			"key_themes":   []string{"scalability", "cost control"},
			"confidence":   0.8,
		}
	case "project_analysis":
		obj = map[string]any{
			"requirements":         []string{"ingest streaming data", "central analytics store"},
			"technologies":         []string{"AWS", "Kafka"},
			"solution_approaches":  []string{"lakehouse on managed cloud services"},
			"target_audience":      "technical decision makers",
			"key_objectives":       []string{"reduce time to insight"},
			"business_drivers":     []string{"data-driven decisions"},
			"technical_challenges": []string{"exactly-once ingestion"},
			"success_criteria":     []string{"sub-hour data latency"},
			"value_propositions":   []string{"proven delivery experience"},
			"confidence":           0.85,
		}
	case "diagram_plan":
		obj = map[string]any{
			"diagrams": []any{
				map[string]any{
					"diagram_type": "data_pipeline",
					"title":        "Streaming Data Platform",
					"components": []any{
						map[string]any{"name": "Producers", "component_type": "service", "icon_provider": "generic", "icon_name": "service"},
						map[string]any{"name": "Kafka", "component_type": "queue", "icon_provider": "onprem", "icon_name": "kafka"},
						map[string]any{"name": "Stream Processor", "component_type": "compute", "icon_provider": "aws", "icon_name": "kinesis"},
						map[string]any{"name": "Data Lake", "component_type": "storage", "icon_provider": "aws", "icon_name": "s3"},
					},
					"connections": []any{
						map[string]any{"source": "Producers", "target": "Kafka", "connection_type": "data_flow"},
						map[string]any{"source": "Kafka", "target": "Stream Processor", "connection_type": "data_flow"},
						map[string]any{"source": "Stream Processor", "target": "Data Lake", "connection_type": "data_flow"},
					},
					"layout_direction": "LR",
					"clustering": map[string]any{
						"Processing": []string{"Kafka", "Stream Processor"},
					},
				},
			},
			"analysis_metadata": map[string]any{
				"architecture_pattern": "data_pipeline",
				"technical_confidence": 0.8,
			},
		}
	case "content_generation":
		slides := []any{
			slide("Fake Client Proposal", []string{"Prepared for the client"}, "title"),
			slide("Executive Summary", []string{"Cloud-native data platform", "Phased delivery"}, "bullet"),
			slide("Understanding Your Needs", []string{"Streaming ingestion", "Central analytics"}, "bullet"),
			slide("Our Approach", []string{"Managed services first", "Iterative rollout"}, "bullet"),
			slide("Technical Solution", []string{"Kafka backbone", "Lakehouse storage"}, "bullet"),
			slide("Our Experience", []string{"Retail data platform modernization"}, "bullet"),
			slide("Timeline", []string{"12 week delivery"}, "bullet"),
			slide("Next Steps", []string{"Discovery workshop"}, "bullet"),
		}
		obj = map[string]any{"slides": slides, "confidence": 0.9}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func slide(title string, content []string, layout string) map[string]any {
	return map[string]any{"title": title, "content": content, "layout": layout}
}
