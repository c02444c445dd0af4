package types

import (
	"fmt"
	"strings"
)

// Normalize rewrites an LLM-derived spec so it satisfies the data-model
// invariants: component names trimmed and deduplicated (case-insensitive,
// first occurrence wins), component count capped, connections and cluster
// members referencing unknown names dropped, layout direction defaulted.
// Normalization is a required defensive step; generated names are
// unpredictable.
func (s DiagramSpec) Normalize() DiagramSpec {
	out := s
	if strings.TrimSpace(out.Title) == "" {
		out.Title = "Architecture Diagram"
	}
	if out.DiagramType == "" {
		out.DiagramType = "cloud_architecture"
	}
	switch out.LayoutDirection {
	case LayoutTopBottom, LayoutLeftRight, LayoutBottomTop, LayoutRightLeft:
	default:
		out.LayoutDirection = LayoutTopBottom
	}

	seen := make(map[string]bool, len(out.Components))
	comps := make([]DiagramComponent, 0, len(out.Components))
	for _, c := range out.Components {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || seen[strings.ToLower(c.Name)] {
			continue
		}
		if c.ComponentType == "" {
			c.ComponentType = "service"
		}
		if c.IconProvider == "" {
			c.IconProvider = "generic"
		}
		if c.IconName == "" {
			c.IconName = c.ComponentType
		}
		seen[strings.ToLower(c.Name)] = true
		comps = append(comps, c)
		if len(comps) == MaxDiagramComponents {
			break
		}
	}
	out.Components = comps

	known := make(map[string]bool, len(comps))
	for _, c := range comps {
		known[c.Name] = true
	}

	conns := make([]DiagramConnection, 0, len(out.Connections))
	for _, cn := range out.Connections {
		cn.Source = strings.TrimSpace(cn.Source)
		cn.Target = strings.TrimSpace(cn.Target)
		if !known[cn.Source] || !known[cn.Target] || cn.Source == cn.Target {
			continue
		}
		if cn.ConnectionType == "" {
			cn.ConnectionType = "arrow"
		}
		conns = append(conns, cn)
	}
	out.Connections = conns

	if len(out.Clustering) > 0 {
		clusters := make(map[string][]string, len(out.Clustering))
		for name, members := range out.Clustering {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			kept := make([]string, 0, len(members))
			for _, m := range members {
				m = strings.TrimSpace(m)
				if known[m] {
					kept = append(kept, m)
				}
			}
			if len(kept) > 0 {
				clusters[name] = kept
			}
		}
		out.Clustering = clusters
	}
	return out
}

// Validate checks the invariants a spec must satisfy before rendering.
func (s DiagramSpec) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("diagram spec: empty title")
	}
	if n := len(s.Components); n < MinDiagramComponents || n > MaxDiagramComponents {
		return fmt.Errorf("diagram spec %q: %d components outside [%d,%d]",
			s.Title, n, MinDiagramComponents, MaxDiagramComponents)
	}
	names := make(map[string]bool, len(s.Components))
	for _, c := range s.Components {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("diagram spec %q: component with empty name", s.Title)
		}
		if names[c.Name] {
			return fmt.Errorf("diagram spec %q: duplicate component %q", s.Title, c.Name)
		}
		names[c.Name] = true
	}
	for _, cn := range s.Connections {
		if !names[cn.Source] {
			return fmt.Errorf("diagram spec %q: connection references unknown source %q", s.Title, cn.Source)
		}
		if !names[cn.Target] {
			return fmt.Errorf("diagram spec %q: connection references unknown target %q", s.Title, cn.Target)
		}
	}
	for cluster, members := range s.Clustering {
		for _, m := range members {
			if !names[m] {
				return fmt.Errorf("diagram spec %q: cluster %q references unknown component %q", s.Title, cluster, m)
			}
		}
	}
	return nil
}
