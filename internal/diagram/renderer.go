// Package diagram renders validated diagram specs to image artifacts via
// Graphviz. The orchestrator treats every failure here as non-fatal.
package diagram

import (
	"context"

	"slidesmith/internal/types"
)

// Renderer is the collaborator contract: spec in, rendered artifact out.
// Implementations must respect the context deadline.
type Renderer interface {
	Render(ctx context.Context, spec types.DiagramSpec) (types.GeneratedDiagram, error)
}

// Style carries the brand styling applied to every rendered diagram.
type Style struct {
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	FontFamily     string
	DPI            int
}

// slidePositions maps diagram types to their slide rectangle (inches on a
// 13.33x7.5 widescreen slide).
var slidePositions = map[string]types.SlideRect{
	"microservices":      {Left: 1.0, Top: 1.5, Width: 8.0, Height: 5.0},
	"data_pipeline":      {Left: 0.5, Top: 2.0, Width: 9.0, Height: 4.0},
	"cloud_architecture": {Left: 1.0, Top: 1.2, Width: 8.0, Height: 5.5},
	"database_schema":    {Left: 2.0, Top: 1.5, Width: 6.0, Height: 5.0},
}

// PositionFor returns the slide rectangle for a diagram type.
func PositionFor(diagramType string) types.SlideRect {
	if r, ok := slidePositions[diagramType]; ok {
		return r
	}
	return slidePositions["microservices"]
}
