package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"slidesmith/internal/artifactstore"
	"slidesmith/internal/config"
	"slidesmith/internal/llm"
	"slidesmith/internal/pipeline"
	"slidesmith/internal/safeio"
	"slidesmith/internal/template"
	t "slidesmith/internal/types"
)

// request is the JSON shape accepted on -request. Document paths are
// resolved relative to the request file's directory.
type request struct {
	Project   t.ProjectDescription `json:"project"`
	Documents []requestDoc         `json:"documents"`
}

type requestDoc struct {
	Path string         `json:"path"`
	Kind t.DocumentKind `json:"kind,omitempty"`
}

// kindFor infers the document kind from the file extension when the
// request leaves it unset.
func kindFor(d requestDoc) t.DocumentKind {
	if d.Kind != "" {
		return d.Kind
	}
	switch strings.ToLower(filepath.Ext(d.Path)) {
	case ".pptx":
		return t.KindSlideDeck
	case ".pdf":
		return t.KindPDF
	}
	return ""
}

// loadDocuments reads the referenced files through a SafeFS rooted at the
// request file's directory, enforcing the configured count and size limits.
func loadDocuments(cfg *config.Config, reqPath string, docs []requestDoc) ([]t.ReferenceDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > cfg.MaxFiles {
		return nil, fmt.Errorf("%d documents exceed the maximum of %d", len(docs), cfg.MaxFiles)
	}
	fsys, err := safeio.NewSafeFS(filepath.Dir(reqPath))
	if err != nil {
		return nil, err
	}
	maxBytes := int64(cfg.MaxFileSizeMB) << 20
	out := make([]t.ReferenceDocument, 0, len(docs))
	for _, d := range docs {
		data, err := fsys.ReadFile(d.Path)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.Path, err)
		}
		if int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("document %s: %d bytes exceed the %dMB limit", d.Path, len(data), cfg.MaxFileSizeMB)
		}
		out = append(out, t.ReferenceDocument{
			Content:  data,
			Kind:     kindFor(d),
			Filename: filepath.Base(d.Path),
		})
	}
	return out, nil
}

func main() {
	reqPath := flag.String("request", "", "path to the run request JSON file")
	model := flag.String("model", "", "Gemini model id (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	tplPath := flag.String("template", "", "path to a template manifest YAML")
	slides := flag.Int("slides", 0, "target slide count (overrides config)")
	noDiagrams := flag.Bool("no-diagrams", false, "skip diagram generation")
	flag.Parse()
	if *reqPath == "" {
		log.Fatal("--request is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}
	if *model != "" {
		cfg.Model = *model
	}

	var req request
	b, err := os.ReadFile(*reqPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := json.Unmarshal(b, &req); err != nil {
		log.Fatalf("parse %s: %v", *reqPath, err)
	}
	docs, err := loadDocuments(cfg, *reqPath, req.Documents)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		log.Fatal(err)
	}
	wrapped := llm.Wrap(cli,
		llm.WithHooks(),
		llm.WithLogging(log.Default()),
		llm.WithCache(cfg.LLMCacheSize, cfg.LLMCacheTTL),
		llm.Retry(cfg.LLMRetries+1, 2*time.Second),
		llm.Timeout(cfg.LLMTimeout),
		llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst),
	)
	defer wrapped.Close()

	path := *tplPath
	if path == "" {
		path = filepath.Join(cfg.TemplateDir, cfg.Template)
	}
	tpl, err := template.Load(path)
	if err != nil {
		log.Fatalf("template %s: %v", path, err)
	}

	opts := []pipeline.Option{pipeline.WithTemplate(tpl)}
	if cfg.Artifact.Enabled {
		store, err := artifactstore.NewS3Store(cfg.Artifact)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, pipeline.WithUploader(store))
	}
	orch := pipeline.New(cfg, wrapped, opts...)

	// Old diagram images have no reader once their deck is gone.
	if n, err := safeio.RemoveOlderThan(cfg.DiagramDir, 24*time.Hour); err != nil {
		log.Printf("diagram reap: %v", err)
	} else if n > 0 {
		log.Printf("reaped %d stale diagram files", n)
	}

	res, err := orch.Run(ctx, req.Project, docs, pipeline.RunOptions{
		TargetSlides:    *slides,
		DisableDiagrams: *noDiagrams,
		OutputDir:       *outDir,
	})
	if err != nil {
		log.Fatalf("invalid request: %v", err)
	}

	dir := firstNonEmpty(*outDir, cfg.OutputDir)
	writeJSON(dir, "run_result.json", res)

	for _, st := range res.Stages {
		status := "ok"
		if !st.OK {
			status = "failed: " + st.Error
		}
		log.Printf("  %-18s %-8s %s", st.Stage, st.Duration.Round(time.Millisecond), status)
	}
	if !res.Success {
		log.Fatal("run failed")
	}
	log.Printf("deck written to %s (%d slides, %d diagrams)", res.ArtifactPath, len(res.Slides), len(res.Diagrams))
}

func writeJSON(dir, name string, v any) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatal(err)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		log.Fatal(err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
