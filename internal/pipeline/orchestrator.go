package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slidesmith/internal/assemble"
	"slidesmith/internal/config"
	"slidesmith/internal/diagram"
	"slidesmith/internal/extract"
	"slidesmith/internal/llm"
	"slidesmith/internal/safeio"
	"slidesmith/internal/template"
	"slidesmith/internal/types"
)

// Uploader pushes finished artifacts to external storage. Optional and
// always best-effort.
type Uploader interface {
	Upload(ctx context.Context, localPath, objectName string) (string, error)
}

// Orchestrator drives one pipeline run: extract, analyze, plan diagrams,
// render, generate content, assemble. It owns the PipelineRunResult for the
// duration of the run and appends stage records in execution order.
type Orchestrator struct {
	cfg *config.Config

	docAnalyzer  *DocumentAnalyzer
	projAnalyzer *ProjectAnalyzer
	planner      *DiagramPlanner
	content      *ContentGenerator

	extractor extract.Extractor
	renderer  diagram.Renderer
	assembler assemble.Assembler
	tpl       template.Manifest
	uploader  Uploader
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithExtractor replaces the document extraction collaborator.
func WithExtractor(ex extract.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = ex }
}

// WithRenderer replaces the diagram rendering collaborator.
func WithRenderer(r diagram.Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithAssembler replaces the presentation assembly collaborator.
func WithAssembler(a assemble.Assembler) Option {
	return func(o *Orchestrator) { o.assembler = a }
}

// WithTemplate sets the deck template manifest.
func WithTemplate(tpl template.Manifest) Option {
	return func(o *Orchestrator) { o.tpl = tpl }
}

// WithUploader attaches an optional artifact uploader.
func WithUploader(u Uploader) Option {
	return func(o *Orchestrator) { o.uploader = u }
}

// New wires an Orchestrator from an immutable config and an LLM client.
func New(cfg *config.Config, client llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:          cfg,
		docAnalyzer:  &DocumentAnalyzer{LLM: client},
		projAnalyzer: &ProjectAnalyzer{LLM: client},
		planner:      &DiagramPlanner{LLM: client},
		content:      &ContentGenerator{LLM: client},
		extractor:    extract.New(),
		tpl:          template.Default(),
	}
	o.renderer = &diagram.DotRenderer{
		OutDir: cfg.DiagramDir,
		Style: diagram.Style{
			PrimaryColor:   cfg.Brand.PrimaryColor,
			SecondaryColor: cfg.Brand.SecondaryColor,
			AccentColor:    cfg.Brand.AccentColor,
			FontFamily:     cfg.Brand.FontFamily,
			DPI:            cfg.DiagramDPI,
		},
	}
	o.assembler = &assemble.MarkdownAssembler{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunOptions are per-run knobs.
type RunOptions struct {
	// TargetSlides defaults to the configured target when zero.
	TargetSlides int
	// DisableDiagrams skips diagram planning and rendering for this run.
	DisableDiagrams bool
	// OutputDir overrides the configured output directory.
	OutputDir string
}

// Run executes the pipeline. It returns an error only for input validation;
// every other failure is contained in the returned PipelineRunResult.
func (o *Orchestrator) Run(
	ctx context.Context,
	project types.ProjectDescription,
	docs []types.ReferenceDocument,
	opts RunOptions,
) (*types.PipelineRunResult, error) {
	// Fail fast before any stage record exists.
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateDocuments(docs); err != nil {
		return nil, err
	}

	res := &types.PipelineRunResult{StartedAt: time.Now()}
	run := &runState{orch: o, res: res, project: project, docs: docs, opts: opts}
	defer run.finish()

	run.execute(ctx)
	return res, nil
}

// runState carries one run's working set so stage methods stay small.
type runState struct {
	orch    *Orchestrator
	res     *types.PipelineRunResult
	project types.ProjectDescription
	docs    []types.ReferenceDocument
	opts    RunOptions

	units       []types.ExtractedUnit
	docAnalysis types.DocumentAnalysis
	prjAnalysis types.ProjectAnalysis
	specs       []types.DiagramSpec
	contentConf float64
}

func (r *runState) execute(ctx context.Context) {
	steps := []struct {
		stage string
		fatal bool
		fn    func(context.Context) error
	}{
		{types.StageExtract, false, r.extractDocs},
		{types.StageDocAnalysis, false, nil}, // analysis is run pairwise below
		{types.StageDiagramPlan, false, r.planDiagrams},
		{types.StageDiagramRender, false, r.renderDiagrams},
		{types.StageContent, true, r.generateContent},
		{types.StageAssemble, true, r.assembleDeck},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			// Cooperative cancellation is checked between stages.
			r.record(step.stage, 0, time.Now(), true, err)
			return
		}
		if step.stage == types.StageDocAnalysis {
			if !r.analyze(ctx) {
				return
			}
			continue
		}
		if !r.runStage(ctx, step.stage, step.fatal, step.fn) && step.fatal {
			return
		}
	}

	r.res.Success = true
	r.uploadArtifacts(ctx)
	r.res.Summary = r.summary()
}

// runStage wraps one stage in its containment boundary: panics and errors
// are converted into a stage record and never propagate.
func (r *runState) runStage(ctx context.Context, stage string, fatal bool, fn func(context.Context) error) (ok bool) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return fn(ctx)
	}()
	r.record(stage, time.Since(start), start, fatal && err != nil, err)
	if err != nil {
		log.Print(&types.StageError{Stage: stage, Fatal: fatal, Err: err})
	}
	return err == nil
}

func (r *runState) record(stage string, d time.Duration, start time.Time, fatal bool, err error) {
	rec := types.StageRecord{
		Stage:    stage,
		OK:       err == nil,
		Fatal:    fatal,
		Duration: d,
		StartAt:  start,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	r.res.Stages = append(r.res.Stages, rec)
}

func (r *runState) finish() {
	r.res.FinishedAt = time.Now()
	if !r.res.Success {
		// A failed run must not leak its diagram artifacts.
		for _, d := range r.res.Diagrams {
			if err := os.Remove(d.ImagePath); err != nil && !os.IsNotExist(err) {
				log.Printf("cleanup %s: %v", d.ImagePath, err)
			}
		}
		r.res.Diagrams = nil
	}
}

// --- stages ---

func (r *runState) extractDocs(ctx context.Context) error {
	units, errs := extract.All(ctx, r.orch.extractor, r.docs)
	r.units = units
	for _, err := range errs {
		log.Printf("extract: %v", err)
	}
	if len(errs) > 0 && len(units) == 0 && len(r.docs) > 0 {
		return fmt.Errorf("all %d documents failed extraction: %v", len(r.docs), errs[0])
	}
	return nil
}

// analyze runs both analyzers concurrently; they are independent by
// contract. Total analysis failure aborts the run since downstream stages
// have no usable input.
func (r *runState) analyze(ctx context.Context) bool {
	docStart := time.Now()
	docCh := make(chan types.DocumentAnalysis, 1)
	go func() {
		docCh <- r.orch.docAnalyzer.Analyze(ctx, r.project.Description, r.units)
	}()
	prjStart := time.Now()
	prjCh := make(chan types.ProjectAnalysis, 1)
	go func() {
		prjCh <- r.orch.projAnalyzer.Analyze(ctx, r.project)
	}()

	r.docAnalysis = <-docCh
	r.prjAnalysis = <-prjCh

	totalFailure := !r.docAnalysis.Success && !r.prjAnalysis.Success
	r.record(types.StageDocAnalysis, time.Since(docStart), docStart,
		totalFailure, errOf(r.docAnalysis.Success, r.docAnalysis.Error))
	r.record(types.StageProjAnalysis, time.Since(prjStart), prjStart,
		totalFailure, errOf(r.prjAnalysis.Success, r.prjAnalysis.Error))

	if totalFailure {
		log.Printf("both analyzers failed, aborting run")
		return false
	}
	return true
}

func (r *runState) planDiagrams(ctx context.Context) error {
	if r.opts.DisableDiagrams || !r.orch.cfg.EnableDiagrams {
		return nil
	}
	specs, err := r.orch.planner.Plan(ctx, r.project, r.docAnalysis, r.prjAnalysis)
	if err != nil {
		return err
	}
	r.specs = specs
	return nil
}

func (r *runState) renderDiagrams(ctx context.Context) error {
	if len(r.specs) == 0 {
		return nil
	}
	// Individual render failures degrade the run, never abort it.
	var firstErr error
	for _, spec := range r.specs {
		d, err := r.orch.renderer.Render(ctx, spec)
		if err != nil {
			log.Printf("diagram render %q: %v", spec.Title, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.res.Diagrams = append(r.res.Diagrams, d)
	}
	if firstErr != nil && len(r.res.Diagrams) == 0 {
		return fmt.Errorf("no diagram rendered: %w", firstErr)
	}
	return firstErr
}

func (r *runState) generateContent(ctx context.Context) error {
	target := r.opts.TargetSlides
	if target == 0 {
		target = r.orch.cfg.TargetSlides
	}
	slides, conf, err := r.orch.content.Generate(ctx, r.project, r.docAnalysis, r.prjAnalysis, r.res.Diagrams, target)
	if err != nil {
		return err
	}
	r.res.Slides = slides
	r.contentConf = conf
	return nil
}

func (r *runState) assembleDeck(ctx context.Context) error {
	outDir := r.opts.OutputDir
	if outDir == "" {
		outDir = r.orch.cfg.OutputDir
	}
	fsys, err := safeio.NewSafeFS(outDir)
	if err != nil {
		return err
	}
	outPath, err := fsys.Abs(outputFilename(r.project, r.res.StartedAt))
	if err != nil {
		return err
	}
	path, err := r.orch.assembler.Assemble(ctx, r.project, r.res.Slides, r.orch.tpl, outPath)
	if err != nil {
		return err
	}
	r.res.ArtifactPath = path
	return nil
}

func (r *runState) uploadArtifacts(ctx context.Context) {
	if r.orch.uploader == nil || r.res.ArtifactPath == "" {
		return
	}
	key := filepath.Base(r.res.ArtifactPath)
	if _, err := r.orch.uploader.Upload(ctx, r.res.ArtifactPath, key); err != nil {
		log.Printf("artifact upload: %v", err)
		return
	}
	for _, d := range r.res.Diagrams {
		if _, err := r.orch.uploader.Upload(ctx, d.ImagePath, "diagrams/"+filepath.Base(d.ImagePath)); err != nil {
			log.Printf("diagram upload: %v", err)
		}
	}
}

func (r *runState) summary() map[string]any {
	diagramTypes := make([]string, 0, len(r.res.Diagrams))
	for _, d := range r.res.Diagrams {
		diagramTypes = append(diagramTypes, d.Spec.DiagramType)
	}
	slideTitles := make([]string, 0, len(r.res.Slides))
	for _, s := range r.res.Slides {
		slideTitles = append(slideTitles, s.Title)
	}
	return map[string]any{
		"client":                  r.project.ClientName,
		"documents_analyzed":      r.docAnalysis.SourceDocuments,
		"technologies_identified": len(dedupFold(append(append([]string(nil), r.docAnalysis.Technologies...), r.prjAnalysis.Technologies...))),
		"target_audience":         r.prjAnalysis.TargetAudience,
		"slides_generated":        len(r.res.Slides),
		"diagrams_generated":      len(r.res.Diagrams),
		"diagram_types":           diagramTypes,
		"slide_titles":            slideTitles,
		"content_confidence":      r.contentConf,
		"analysis_confidence": map[string]float64{
			"document": r.docAnalysis.Confidence,
			"project":  r.prjAnalysis.Confidence,
		},
	}
}

func errOf(success bool, msg string) error {
	if success {
		return nil
	}
	if msg == "" {
		msg = "analysis failed"
	}
	return fmt.Errorf("%s", msg)
}

// outputFilename derives the deterministic artifact name from the client
// and the run start time.
func outputFilename(project types.ProjectDescription, at time.Time) string {
	client := strings.TrimSpace(project.ClientName)
	var b strings.Builder
	for _, r := range client {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "client"
	}
	return fmt.Sprintf("%s_Proposal_%s.md", name, at.Format("20060102_150405"))
}
