package types

import (
	"fmt"
	"strings"
)

const (
	// MaxReferenceDocuments bounds how many documents one run may consume.
	MaxReferenceDocuments = 5

	// MinDescriptionLen guards against descriptions too short to analyze.
	MinDescriptionLen = 20
	minClientNameLen  = 2

	// Component count bounds for a renderable diagram.
	MinDiagramComponents = 2
	MaxDiagramComponents = 20

	// Slide count bounds for a deliverable deck.
	MinSlides = 3
	MaxSlides = 15
)

// Validate checks the non-empty-field invariants of a project description.
func (p ProjectDescription) Validate() error {
	if len(strings.TrimSpace(p.Description)) < MinDescriptionLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at least %d characters", MinDescriptionLen)}
	}
	if len(strings.TrimSpace(p.ClientName)) < minClientNameLen {
		return &ValidationError{Field: "client_name", Reason: fmt.Sprintf("must be at least %d characters", minClientNameLen)}
	}
	return nil
}

// ValidateDocuments re-checks the upload boundary's limits defensively.
func ValidateDocuments(docs []ReferenceDocument) error {
	if len(docs) > MaxReferenceDocuments {
		return &ValidationError{
			Field:  "documents",
			Reason: fmt.Sprintf("%d documents exceed the maximum of %d", len(docs), MaxReferenceDocuments),
		}
	}
	for _, d := range docs {
		switch d.Kind {
		case KindSlideDeck, KindPDF:
		default:
			return &ValidationError{
				Field:  "documents",
				Reason: fmt.Sprintf("unsupported document kind %q for %s", d.Kind, d.Filename),
			}
		}
		if len(d.Content) == 0 {
			return &ValidationError{Field: "documents", Reason: fmt.Sprintf("%s is empty", d.Filename)}
		}
	}
	return nil
}
