package diagram

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"slidesmith/internal/safeio"
	"slidesmith/internal/types"
)

// DotRenderer renders specs by generating DOT and shelling out to the
// Graphviz dot binary. A missing binary or a timeout surfaces as a plain
// error the orchestrator degrades on.
type DotRenderer struct {
	OutDir  string
	Style   Style
	Timeout time.Duration

	// Binary overrides the dot executable path, mainly for tests.
	Binary string
}

func (r *DotRenderer) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "dot"
}

func (r *DotRenderer) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 30 * time.Second
}

// Render writes spec as DOT, invokes dot -Tpng and returns the artifact
// metadata. The spec is assumed validated; Render does not re-normalize.
func (r *DotRenderer) Render(ctx context.Context, spec types.DiagramSpec) (types.GeneratedDiagram, error) {
	var zero types.GeneratedDiagram
	start := time.Now()

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return zero, fmt.Errorf("diagram render: %w", err)
	}
	base := fmt.Sprintf("%s_%d", slug(spec.Title), start.UnixMilli())
	pngPath := filepath.Join(r.OutDir, base+".png")

	// DOT sources are scratch files; they live in a run-scoped workdir
	// that is removed whether or not dot succeeds.
	wd, err := safeio.NewWorkdir(r.OutDir, "render")
	if err != nil {
		return zero, fmt.Errorf("diagram render: %w", err)
	}
	defer wd.Close()
	dotPath, err := wd.WriteFile(base+".dot", []byte(r.DOT(spec)))
	if err != nil {
		return zero, fmt.Errorf("diagram render: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	cmd := exec.CommandContext(ctx, r.binary(), "-Tpng", "-o", pngPath, dotPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(pngPath)
		return zero, fmt.Errorf("diagram render: dot: %v: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(pngPath)
	if err != nil {
		return zero, fmt.Errorf("diagram render: missing output: %w", err)
	}
	return types.GeneratedDiagram{
		Spec:       spec,
		ImagePath:  pngPath,
		FileSizeKB: info.Size() / 1024,
		Duration:   time.Since(start),
		// Target is provisional; content generation re-slots diagrams
		// after the technical-solution slide.
		SlideTarget: 2,
		Position:    PositionFor(spec.DiagramType),
	}, nil
}

// DOT serializes the spec as a Graphviz digraph with brand styling,
// clusters and connection types.
func (r *DotRenderer) DOT(spec types.DiagramSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", spec.Title)
	fmt.Fprintf(&b, "  rankdir=%s;\n", spec.LayoutDirection)
	fmt.Fprintf(&b, "  label=%q;\n  labelloc=t;\n", spec.Title)
	fmt.Fprintf(&b, "  fontname=%q;\n", r.Style.FontFamily)
	if r.Style.DPI > 0 {
		fmt.Fprintf(&b, "  dpi=%d;\n", r.Style.DPI)
	}
	fmt.Fprintf(&b, "  node [shape=box, style=\"rounded,filled\", fontname=%q, fillcolor=%q, fontcolor=white];\n",
		r.Style.FontFamily, valueOr(r.Style.PrimaryColor, "#1B2A4A"))
	fmt.Fprintf(&b, "  edge [color=%q];\n", valueOr(r.Style.SecondaryColor, "#00A3E0"))

	clustered := make(map[string]bool)
	names := make(map[string]string, len(spec.Components))
	for i, c := range spec.Components {
		names[c.Name] = fmt.Sprintf("n%d", i)
	}

	// Cluster names come from a map; emit them in sorted order so
	// identical specs always serialize to identical bytes.
	clusterNames := make([]string, 0, len(spec.Clustering))
	for cluster := range spec.Clustering {
		clusterNames = append(clusterNames, cluster)
	}
	sort.Strings(clusterNames)
	for ci, cluster := range clusterNames {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n    label=%q;\n    style=dashed;\n", ci, cluster)
		for _, m := range spec.Clustering[cluster] {
			if id, ok := names[m]; ok {
				fmt.Fprintf(&b, "    %s;\n", id)
				clustered[m] = true
			}
		}
		b.WriteString("  }\n")
	}

	for _, c := range spec.Components {
		fmt.Fprintf(&b, "  %s [label=%q, tooltip=%q];\n",
			names[c.Name], c.Name, c.IconProvider+"/"+c.IconName)
	}

	for _, cn := range spec.Connections {
		attrs := []string{}
		if cn.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", cn.Label))
		}
		switch cn.ConnectionType {
		case "bidirectional":
			attrs = append(attrs, "dir=both")
		case "async", "data_flow":
			attrs = append(attrs, "style=dashed")
		}
		line := fmt.Sprintf("  %s -> %s", names[cn.Source], names[cn.Target])
		if len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		b.WriteString(line + ";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "diagram"
	}
	return b.String()
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
