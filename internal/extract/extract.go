// Package extract turns reference documents into ordered text units at
// slide or page granularity.
package extract

import (
	"context"
	"fmt"

	"slidesmith/internal/types"
)

// Extractor is the collaborator contract the orchestrator consumes: one
// document blob in, ordered extracted units out.
type Extractor interface {
	Extract(ctx context.Context, doc types.ReferenceDocument) ([]types.ExtractedUnit, error)
}

// New returns the default extractor handling the closed set of document
// kinds.
func New() Extractor { return &extractor{} }

type extractor struct{}

func (e *extractor) Extract(ctx context.Context, doc types.ReferenceDocument) ([]types.ExtractedUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch doc.Kind {
	case types.KindSlideDeck:
		return extractPPTX(doc)
	case types.KindPDF:
		return extractPDF(doc)
	default:
		return nil, fmt.Errorf("extract: unsupported document kind %q", doc.Kind)
	}
}

// All extracts every document, skipping ones that fail so a single corrupt
// upload does not sink the whole run. The per-document order is preserved.
func All(ctx context.Context, ex Extractor, docs []types.ReferenceDocument) ([]types.ExtractedUnit, []error) {
	var units []types.ExtractedUnit
	var errs []error
	for _, d := range docs {
		us, err := ex.Extract(ctx, d)
		if err != nil {
			errs = append(errs, fmt.Errorf("extract %s: %w", d.Filename, err))
			continue
		}
		units = append(units, us...)
	}
	return units, errs
}
