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

// ContentGenerator produces the ordered slide specifications. Producing
// fewer than the minimum slide count is a stage failure; diagram slides are
// always dedicated slides inserted after the technical-solution slide.
type ContentGenerator struct {
	LLM llm.Client
}

var contentPrompt = mustPrompt(prompt.Spec{
	Purpose: "Write the slides of a client proposal deck from the project and document analyses.",
	Background: "The input JSON carries the project description, both analysis results, the number of slides to " +
		"produce and the titles of any architecture diagrams that will get their own dedicated slides later.",
	OutputFields: []prompt.Field{
		{Name: "slides", Type: "[]object", Required: true, Description: "Each: title, content ([]string bullet lines), layout (title|bullet|split), notes (optional speaker notes)"},
		{Name: "confidence", Type: "number", Required: true, Description: "Self-assessed reliability in [0,1]"},
	},
	Constraints: []string{
		"Follow this narrative order: title, executive summary, understanding your needs, our approach, technical solution, experience, timeline, next steps.",
		"The first slide uses layout \"title\".",
		"Each content slide carries 2 to 5 bullet lines.",
	},
	Rules: []string{
		"Only reference technologies and approaches present in the analyses.",
		"Tailor language to the target audience from the project analysis.",
		"Do not produce slides for the diagrams; they are inserted separately.",
	},
	OutputFormat: "STRICT JSON matching the OUTPUT fields. No markdown, no comments.",
})

type contentOut struct {
	Slides []struct {
		Title   string   `json:"title"`
		Content []string `json:"content"`
		Layout  string   `json:"layout"`
		Notes   string   `json:"notes"`
	} `json:"slides"`
	Confidence float64 `json:"confidence"`
}

// Generate returns the final slide sequence and a confidence score.
func (g *ContentGenerator) Generate(
	ctx context.Context,
	project types.ProjectDescription,
	docAnalysis types.DocumentAnalysis,
	projAnalysis types.ProjectAnalysis,
	diagrams []types.GeneratedDiagram,
	targetSlides int,
) ([]types.SlideSpec, float64, error) {
	if targetSlides < types.MinSlides || targetSlides > types.MaxSlides {
		targetSlides = 8
	}
	contentBudget := targetSlides
	if n := len(diagrams); n > 0 && contentBudget+n > types.MaxSlides {
		contentBudget = types.MaxSlides - n
	}

	ctx = llm.WithStage(ctx, types.StageContent)
	input := map[string]any{
		"project":            project,
		"project_analysis":   projAnalysis,
		"document_analysis":  docAnalysis,
		"target_slide_count": contentBudget,
		"diagram_titles":     diagramTitles(diagrams),
	}

	slides := g.requestSlides(ctx, input)
	if len(slides) < types.MinSlides {
		slides = fallbackSlides(project, projAnalysis, docAnalysis)
	}
	if len(slides) < types.MinSlides {
		return nil, 0, fmt.Errorf("content generation: produced %d slides, minimum is %d", len(slides), types.MinSlides)
	}
	if len(slides) > contentBudget {
		slides = slides[:contentBudget]
	}

	slides = insertDiagramSlides(slides, diagrams)
	if len(slides) > types.MaxSlides {
		slides = slides[:types.MaxSlides]
	}
	return slides, contentConfidence(slides), nil
}

func (g *ContentGenerator) requestSlides(ctx context.Context, input map[string]any) []types.SlideSpec {
	raw, err := g.LLM.GenerateJSON(ctx, contentPrompt, input)
	if err != nil {
		return nil
	}
	var out contentOut
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	slides := make([]types.SlideSpec, 0, len(out.Slides))
	for _, s := range out.Slides {
		title := strings.TrimSpace(s.Title)
		content := trimNonEmpty(s.Content)
		if title == "" || len(content) == 0 {
			continue
		}
		layout := types.SlideLayout(s.Layout)
		switch layout {
		case types.SlideLayoutTitle, types.SlideLayoutBullet, types.SlideLayoutSplit:
		default:
			layout = types.SlideLayoutBullet
		}
		slides = append(slides, types.SlideSpec{
			Title:   title,
			Content: content,
			Layout:  layout,
			Notes:   strings.TrimSpace(s.Notes),
		})
	}
	return slides
}

// insertDiagramSlides gives each rendered diagram its own dedicated slide
// immediately after the technical-solution slide, preserving the narrative
// order around it. Dedicated slides are the only layout that cannot collide
// diagram and text content.
func insertDiagramSlides(slides []types.SlideSpec, diagrams []types.GeneratedDiagram) []types.SlideSpec {
	if len(diagrams) == 0 {
		return slides
	}
	at := technicalSolutionIndex(slides) + 1

	dslides := make([]types.SlideSpec, 0, len(diagrams))
	for i := range diagrams {
		d := diagrams[i]
		dslides = append(dslides, types.SlideSpec{
			Title:   d.Spec.Title,
			Content: []string{describeDiagram(d.Spec)},
			Layout:  types.SlideLayoutDiagram,
			Diagram: &d,
		})
	}

	out := make([]types.SlideSpec, 0, len(slides)+len(dslides))
	out = append(out, slides[:at]...)
	out = append(out, dslides...)
	out = append(out, slides[at:]...)
	return out
}

// technicalSolutionIndex locates the technical-solution slide; when the
// model titled it differently, fall back to the middle of the deck.
func technicalSolutionIndex(slides []types.SlideSpec) int {
	for i, s := range slides {
		t := strings.ToLower(s.Title)
		if strings.Contains(t, "technical") || strings.Contains(t, "solution") || strings.Contains(t, "architecture") {
			return i
		}
	}
	mid := len(slides) / 2
	if mid == 0 {
		return 0
	}
	return mid
}

func describeDiagram(spec types.DiagramSpec) string {
	return fmt.Sprintf("%s view of %d components", spec.DiagramType, len(spec.Components))
}

func diagramTitles(diagrams []types.GeneratedDiagram) []string {
	out := make([]string, 0, len(diagrams))
	for _, d := range diagrams {
		out = append(out, d.Spec.Title)
	}
	return out
}

// fallbackSlides synthesizes a minimal deck from the analyses when the
// model under-delivers, so a degraded run can still ship a deliverable.
func fallbackSlides(project types.ProjectDescription, projAnalysis types.ProjectAnalysis, docAnalysis types.DocumentAnalysis) []types.SlideSpec {
	needs := firstN(projAnalysis.Requirements, 5)
	if len(needs) == 0 {
		needs = []string{project.Description}
	}
	approach := firstN(projAnalysis.SolutionApproaches, 4)
	if len(approach) == 0 {
		approach = []string{"Phased delivery tailored to the project scope"}
	}
	solution := firstN(projAnalysis.Technologies, 5)
	if len(solution) == 0 {
		solution = firstN(docAnalysis.Technologies, 5)
	}
	if len(solution) == 0 {
		solution = []string{"Technology selection to be confirmed in discovery"}
	}

	return []types.SlideSpec{
		{
			Title:   project.ClientName + " Proposal",
			Content: []string{"Prepared for " + project.ClientName},
			Layout:  types.SlideLayoutTitle,
		},
		{Title: "Understanding Your Needs", Content: needs, Layout: types.SlideLayoutBullet},
		{Title: "Our Approach", Content: approach, Layout: types.SlideLayoutBullet},
		{Title: "Technical Solution", Content: solution, Layout: types.SlideLayoutBullet},
		{Title: "Next Steps", Content: []string{"Discovery workshop", "Detailed proposal and estimate"}, Layout: types.SlideLayoutBullet},
	}
}

func contentConfidence(slides []types.SlideSpec) float64 {
	score := 0.3
	if n := len(slides); n >= types.MinSlides && n <= types.MaxSlides {
		score += 0.3
	}
	informative := 0
	for _, s := range slides {
		if len(strings.TrimSpace(s.Title)) > 5 && len(s.Content) >= 2 {
			informative++
		}
	}
	if len(slides) > 0 {
		score += 0.4 * float64(informative) / float64(len(slides))
	}
	return clamp01(score)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func trimNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
