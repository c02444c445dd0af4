package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"slidesmith/internal/llm"
	"slidesmith/internal/types"
)

func diagramFor(title string) types.GeneratedDiagram {
	return types.GeneratedDiagram{
		Spec: types.DiagramSpec{
			DiagramType: "data_pipeline",
			Title:       title,
			Components:  []types.DiagramComponent{{Name: "A"}, {Name: "B"}},
		},
		ImagePath: "/tmp/" + title + ".png",
	}
}

func TestGenerateHappyPath(t *testing.T) {
	g := &ContentGenerator{LLM: llm.NewFakeClient()}
	slides, conf, err := g.Generate(context.Background(), testProject(), types.DocumentAnalysis{}, types.ProjectAnalysis{}, nil, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(slides) < types.MinSlides || len(slides) > types.MaxSlides {
		t.Fatalf("slide count %d outside bounds", len(slides))
	}
	if slides[0].Layout != types.SlideLayoutTitle {
		t.Fatalf("first slide should be title layout, got %q", slides[0].Layout)
	}
	if conf <= 0 {
		t.Fatal("expected positive confidence")
	}
}

func TestGenerateInsertsDiagramSlidesAfterTechnicalSolution(t *testing.T) {
	g := &ContentGenerator{LLM: llm.NewFakeClient()}
	diagrams := []types.GeneratedDiagram{diagramFor("Streaming Platform"), diagramFor("Deployment View")}
	slides, _, err := g.Generate(context.Background(), testProject(), types.DocumentAnalysis{}, types.ProjectAnalysis{}, diagrams, 8)
	if err != nil {
		t.Fatal(err)
	}

	techIdx := -1
	for i, s := range slides {
		if s.Title == "Technical Solution" {
			techIdx = i
			break
		}
	}
	if techIdx < 0 {
		t.Fatalf("technical solution slide missing: %+v", slides)
	}
	for n, d := range diagrams {
		s := slides[techIdx+1+n]
		if s.Layout != types.SlideLayoutDiagram {
			t.Fatalf("slide %d should be a diagram slide, got %q", techIdx+1+n, s.Layout)
		}
		if s.Diagram == nil || s.Diagram.Spec.Title != d.Spec.Title {
			t.Fatalf("diagram slide %d carries wrong diagram: %+v", n, s.Diagram)
		}
	}
}

func TestGenerateRespectsMaxWithDiagrams(t *testing.T) {
	// Budget shrinks so content plus diagram slides never exceed the cap.
	var diagrams []types.GeneratedDiagram
	for i := 0; i < 3; i++ {
		diagrams = append(diagrams, diagramFor(fmt.Sprintf("View %d", i)))
	}
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageContent: func(any) (json.RawMessage, error) {
			var slides []any
			for i := 0; i < types.MaxSlides; i++ {
				slides = append(slides, map[string]any{
					"title":   fmt.Sprintf("Technical Solution Part %d", i),
					"content": []string{"point one", "point two"},
					"layout":  "bullet",
				})
			}
			return json.Marshal(map[string]any{"slides": slides, "confidence": 0.9})
		},
	}}
	g := &ContentGenerator{LLM: cli}
	slides, _, err := g.Generate(context.Background(), testProject(), types.DocumentAnalysis{}, types.ProjectAnalysis{}, diagrams, types.MaxSlides)
	if err != nil {
		t.Fatal(err)
	}
	if len(slides) > types.MaxSlides {
		t.Fatalf("deck exceeds maximum: %d slides", len(slides))
	}
	count := 0
	for _, s := range slides {
		if s.Layout == types.SlideLayoutDiagram {
			count++
		}
	}
	if count != len(diagrams) {
		t.Fatalf("expected %d diagram slides, got %d", len(diagrams), count)
	}
}

func TestGenerateFallsBackWhenModelUnderdelivers(t *testing.T) {
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageContent: func(any) (json.RawMessage, error) { return nil, errors.New("quota") },
	}}
	g := &ContentGenerator{LLM: cli}
	projAnalysis := types.ProjectAnalysis{
		Requirements: []string{"stream ingestion", "central analytics"},
		Technologies: []string{"AWS", "Kafka"},
		Success:      true,
	}
	slides, _, err := g.Generate(context.Background(), testProject(), types.DocumentAnalysis{}, projAnalysis, nil, 8)
	if err != nil {
		t.Fatalf("fallback should save the run: %v", err)
	}
	if len(slides) < types.MinSlides {
		t.Fatalf("fallback produced %d slides", len(slides))
	}
	if slides[0].Layout != types.SlideLayoutTitle {
		t.Fatal("fallback deck must open with a title slide")
	}
}

func TestGenerateSanitizesLayouts(t *testing.T) {
	cli := &scriptLLM{stages: map[string]func(any) (json.RawMessage, error){
		types.StageContent: func(any) (json.RawMessage, error) {
			return json.Marshal(map[string]any{"slides": []any{
				map[string]any{"title": "One", "content": []string{"a", "b"}, "layout": "hero"},
				map[string]any{"title": "Two", "content": []string{"a"}, "layout": "diagram"},
				map[string]any{"title": "", "content": []string{"dropped"}},
				map[string]any{"title": "Three", "content": []string{"a"}, "layout": "bullet"},
			}, "confidence": 0.7})
		},
	}}
	g := &ContentGenerator{LLM: cli}
	slides, _, err := g.Generate(context.Background(), testProject(), types.DocumentAnalysis{}, types.ProjectAnalysis{}, nil, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(slides) != 3 {
		t.Fatalf("untitled slide must be dropped, got %d slides", len(slides))
	}
	for _, s := range slides {
		if s.Layout == types.SlideLayoutDiagram {
			t.Fatal("model must not emit diagram layouts")
		}
	}
}
