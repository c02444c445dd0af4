package types

import (
	"fmt"
	"testing"
)

func specWith(components ...string) DiagramSpec {
	s := DiagramSpec{
		DiagramType: "data_pipeline",
		Title:       "Data Flow",
	}
	for _, name := range components {
		s.Components = append(s.Components, DiagramComponent{Name: name, ComponentType: "service", IconProvider: "generic", IconName: "service"})
	}
	return s
}

func TestNormalizeDeduplicatesCaseInsensitive(t *testing.T) {
	s := specWith("Kafka", " kafka ", "KAFKA", "Spark")
	out := s.Normalize()
	if len(out.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(out.Components))
	}
	// First occurrence wins.
	if out.Components[0].Name != "Kafka" || out.Components[1].Name != "Spark" {
		t.Fatalf("unexpected components: %+v", out.Components)
	}
}

func TestNormalizeDropsDanglingAndSelfConnections(t *testing.T) {
	s := specWith("API", "DB")
	s.Connections = []DiagramConnection{
		{Source: "API", Target: "DB"},
		{Source: "API", Target: "Ghost"},
		{Source: "DB", Target: "DB"},
	}
	out := s.Normalize()
	if len(out.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(out.Connections))
	}
	if out.Connections[0].ConnectionType != "arrow" {
		t.Fatalf("expected default arrow type, got %q", out.Connections[0].ConnectionType)
	}
}

func TestNormalizeFiltersClusterMembers(t *testing.T) {
	s := specWith("API", "DB")
	s.Clustering = map[string][]string{
		"Backend": {"API", "Missing"},
		"Empty":   {"Nothing"},
	}
	out := s.Normalize()
	if got := out.Clustering["Backend"]; len(got) != 1 || got[0] != "API" {
		t.Fatalf("unexpected Backend cluster: %v", got)
	}
	if _, ok := out.Clustering["Empty"]; ok {
		t.Fatal("cluster with no surviving members should be dropped")
	}
}

func TestNormalizeCapsComponents(t *testing.T) {
	var names []string
	for i := 0; i < MaxDiagramComponents+5; i++ {
		names = append(names, fmt.Sprintf("svc-%d", i))
	}
	out := specWith(names...).Normalize()
	if len(out.Components) != MaxDiagramComponents {
		t.Fatalf("expected cap at %d, got %d", MaxDiagramComponents, len(out.Components))
	}
}

func TestNormalizeDefaults(t *testing.T) {
	s := DiagramSpec{Components: []DiagramComponent{{Name: "A"}, {Name: "B"}}}
	out := s.Normalize()
	if out.Title == "" || out.DiagramType == "" {
		t.Fatalf("expected defaulted title and type, got %+v", out)
	}
	if out.LayoutDirection != LayoutTopBottom {
		t.Fatalf("expected TB default, got %q", out.LayoutDirection)
	}
	if out.Components[0].ComponentType != "service" || out.Components[0].IconProvider != "generic" {
		t.Fatalf("expected component defaults, got %+v", out.Components[0])
	}
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	if err := specWith("A", "B").Normalize().Validate(); err != nil {
		t.Fatalf("normalized spec should validate: %v", err)
	}
	if err := specWith("A").Validate(); err == nil {
		t.Fatal("expected error for single component")
	}
	s := specWith("A", "B")
	s.Connections = []DiagramConnection{{Source: "A", Target: "Nope"}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for dangling connection")
	}
	s = specWith("A", "A")
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for duplicate names")
	}
}
