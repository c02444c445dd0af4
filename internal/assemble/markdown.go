package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slidesmith/internal/template"
	"slidesmith/internal/types"
)

// MarkdownAssembler writes the deck as Marp-flavored Markdown: YAML front
// matter with branding, one section per slide, diagram slides as full-bleed
// images.
type MarkdownAssembler struct{}

// Assemble writes the deck to outPath. Every diagram referenced by a slide
// must still exist on disk; a dangling reference is an assembly failure.
func (a *MarkdownAssembler) Assemble(
	ctx context.Context,
	project types.ProjectDescription,
	slides []types.SlideSpec,
	tpl template.Manifest,
	outPath string,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("assemble: no slides")
	}
	for _, s := range slides {
		if s.Diagram == nil {
			continue
		}
		if _, err := os.Stat(s.Diagram.ImagePath); err != nil {
			return "", fmt.Errorf("assemble: slide %q references missing diagram %s: %w",
				s.Title, s.Diagram.ImagePath, err)
		}
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("marp: true\n")
	fmt.Fprintf(&b, "title: %q\n", project.ClientName+" Proposal")
	fmt.Fprintf(&b, "theme: %s\n", tpl.Name)
	fmt.Fprintf(&b, "style: |\n  section { font-family: %q; color: %s; }\n  h1 { color: %s; }\n",
		tpl.Fonts.Body, tpl.Colors.Primary, tpl.Colors.Primary)
	fmt.Fprintf(&b, "footer: %q\n", tpl.Footer)
	b.WriteString("---\n")

	for i, s := range slides {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString("\n")
		switch s.Layout {
		case types.SlideLayoutTitle:
			fmt.Fprintf(&b, "# %s\n", s.Title)
			for _, line := range s.Content {
				fmt.Fprintf(&b, "\n%s\n", line)
			}
		case types.SlideLayoutDiagram:
			fmt.Fprintf(&b, "## %s\n\n", s.Title)
			fmt.Fprintf(&b, "![%s](%s)\n", s.Title, s.Diagram.ImagePath)
		default:
			fmt.Fprintf(&b, "## %s\n\n", s.Title)
			for _, line := range s.Content {
				fmt.Fprintf(&b, "- %s\n", line)
			}
		}
		if s.Notes != "" {
			fmt.Fprintf(&b, "\n<!-- %s -->\n", s.Notes)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("assemble: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("assemble: %w", err)
	}
	return outPath, nil
}
