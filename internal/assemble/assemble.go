// Package assemble turns slide specs into the final deck artifact.
package assemble

import (
	"context"

	"slidesmith/internal/template"
	"slidesmith/internal/types"
)

// Assembler is the collaborator contract the orchestrator calls last:
// a self-consistent slide sequence plus a template in, an artifact path out.
type Assembler interface {
	Assemble(ctx context.Context, project types.ProjectDescription, slides []types.SlideSpec, tpl template.Manifest, outPath string) (string, error)
}
