package types

import (
	"time"
)

// DocumentKind is the closed set of reference document formats.
type DocumentKind string

const (
	KindSlideDeck DocumentKind = "pptx"
	KindPDF       DocumentKind = "pdf"
)

// ProjectDescription is the structured input for one pipeline run.
// Immutable once handed to the orchestrator.
type ProjectDescription struct {
	Description     string   `json:"description"`
	ClientName      string   `json:"client_name"`
	Industry        string   `json:"industry,omitempty"`
	BudgetRange     string   `json:"budget_range,omitempty"`
	Timeline        string   `json:"timeline,omitempty"`
	KeyTechnologies []string `json:"key_technologies,omitempty"`
}

// ReferenceDocument is one uploaded source document.
type ReferenceDocument struct {
	Content  []byte       `json:"-"`
	Kind     DocumentKind `json:"kind"`
	Filename string       `json:"filename"`
}

// ExtractedUnit is one slide- or page-equivalent of extracted text.
type ExtractedUnit struct {
	Position   int    `json:"position"` // 1-based within the source document
	Title      string `json:"title"`
	Body       string `json:"body"`
	LayoutType string `json:"layout_type"`
	SourceFile string `json:"source_file"`
	SourceKind string `json:"source_kind"`
}

// DocumentAnalysis is the document analyzer's output.
type DocumentAnalysis struct {
	Analysis        string   `json:"analysis"`
	SourceDocuments int      `json:"source_documents"`
	Technologies    []string `json:"technologies,omitempty"`
	Approaches      []string `json:"approaches,omitempty"`
	CaseStudies     []string `json:"case_studies,omitempty"`
	KeyThemes       []string `json:"key_themes,omitempty"`
	Confidence      float64  `json:"confidence"`
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
}

// ProjectAnalysis is the project analyzer's output.
type ProjectAnalysis struct {
	Requirements        []string `json:"requirements,omitempty"`
	Technologies        []string `json:"technologies,omitempty"`
	SolutionApproaches  []string `json:"solution_approaches,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty"`
	KeyObjectives       []string `json:"key_objectives,omitempty"`
	BusinessDrivers     []string `json:"business_drivers,omitempty"`
	TechnicalChallenges []string `json:"technical_challenges,omitempty"`
	SuccessCriteria     []string `json:"success_criteria,omitempty"`
	ValuePropositions   []string `json:"value_propositions,omitempty"`
	Confidence          float64  `json:"confidence"`
	Success             bool     `json:"success"`
	Error               string   `json:"error,omitempty"`
}

// LayoutDirection controls diagram flow.
type LayoutDirection string

const (
	LayoutTopBottom LayoutDirection = "TB"
	LayoutLeftRight LayoutDirection = "LR"
	LayoutBottomTop LayoutDirection = "BT"
	LayoutRightLeft LayoutDirection = "RL"
)

// DiagramComponent is one node of an architecture diagram.
type DiagramComponent struct {
	Name          string `json:"name"`
	ComponentType string `json:"component_type"` // service|database|queue|api|storage|...
	IconProvider  string `json:"icon_provider"`  // aws|azure|gcp|kubernetes|onprem|generic
	IconName      string `json:"icon_name"`
	PositionHint  string `json:"position_hint,omitempty"`
}

// DiagramConnection links two components by display name.
type DiagramConnection struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	ConnectionType string `json:"connection_type"` // arrow|bidirectional|data_flow|async
	Label          string `json:"label,omitempty"`
}

// DiagramSpec is a validated description of one diagram to render.
type DiagramSpec struct {
	DiagramType     string              `json:"diagram_type"`
	Title           string              `json:"title"`
	Components      []DiagramComponent  `json:"components"`
	Connections     []DiagramConnection `json:"connections,omitempty"`
	LayoutDirection LayoutDirection     `json:"layout_direction"`
	Clustering      map[string][]string `json:"clustering,omitempty"`
	Styling         map[string]string   `json:"styling,omitempty"`
}

// SlideRect is a slide-relative position rectangle in inches.
type SlideRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GeneratedDiagram is one rendered diagram artifact.
type GeneratedDiagram struct {
	Spec        DiagramSpec   `json:"spec"`
	ImagePath   string        `json:"image_path"`
	FileSizeKB  int64         `json:"file_size_kb"`
	Duration    time.Duration `json:"generation_time_ns"`
	SlideTarget int           `json:"slide_target"` // 1-based
	Position    SlideRect     `json:"position"`
}

// SlideLayout is the closed set of slide layouts.
type SlideLayout string

const (
	SlideLayoutTitle   SlideLayout = "title"
	SlideLayoutBullet  SlideLayout = "bullet"
	SlideLayoutDiagram SlideLayout = "diagram"
	SlideLayoutSplit   SlideLayout = "split"
)

// SlideSpec is one slide of the generated deck.
type SlideSpec struct {
	Title   string            `json:"title"`
	Content []string          `json:"content"`
	Layout  SlideLayout       `json:"layout"`
	Diagram *GeneratedDiagram `json:"diagram,omitempty"`
	Notes   string            `json:"notes,omitempty"`
}

// Stage names in execution order.
const (
	StageExtract       = "extract"
	StageDocAnalysis   = "document_analysis"
	StageProjAnalysis  = "project_analysis"
	StageDiagramPlan   = "diagram_plan"
	StageDiagramRender = "diagram_render"
	StageContent       = "content_generation"
	StageAssemble      = "assembly"
)

// StageRecord is one stage's outcome. Records are appended in execution
// order so a timeline can be reconstructed even on partial failure.
type StageRecord struct {
	Stage    string        `json:"stage"`
	OK       bool          `json:"ok"`
	Fatal    bool          `json:"fatal,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	StartAt  time.Time     `json:"start_at"`
}

// PipelineRunResult aggregates one orchestrator run. Owned exclusively by
// that run; never mutated after the run completes.
type PipelineRunResult struct {
	Slides       []SlideSpec        `json:"slides,omitempty"`
	Diagrams     []GeneratedDiagram `json:"diagrams,omitempty"`
	Stages       []StageRecord      `json:"stages"`
	Success      bool               `json:"success"`
	ArtifactPath string             `json:"artifact_path,omitempty"`
	Summary      map[string]any     `json:"summary,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// StageFor returns the record for a stage name, if present.
func (r *PipelineRunResult) StageFor(name string) (StageRecord, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageRecord{}, false
}
