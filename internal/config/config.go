package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"slidesmith/internal/types"
)

// Config is the immutable process configuration, built once at startup and
// passed explicitly into the orchestrator. Stages never read the environment.
type Config struct {
	GeminiAPIKey string
	Model        string

	OutputDir   string
	DiagramDir  string
	TemplateDir string
	Template    string

	MaxFiles      int
	MaxFileSizeMB int

	MinSlides    int
	MaxSlides    int
	TargetSlides int

	EnableDiagrams       bool
	MaxDiagramComponents int
	DiagramDPI           int

	LLMTimeout   time.Duration
	LLMRetries   int // attempts beyond the first
	LLMRPS       float64
	LLMBurst     int
	LLMCacheSize int
	LLMCacheTTL  time.Duration

	Brand Brand

	Artifact ArtifactConfig
}

// Brand carries the styling defaults applied to diagrams and decks.
type Brand struct {
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	FontFamily     string
}

// ArtifactConfig configures the optional S3-compatible artifact upload.
type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:        firstNonEmpty(os.Getenv("SLIDESMITH_MODEL"), "gemini-2.5-flash"),

		OutputDir:   firstNonEmpty(os.Getenv("SLIDESMITH_OUT"), "data/generated"),
		DiagramDir:  firstNonEmpty(os.Getenv("SLIDESMITH_DIAGRAM_OUT"), "data/diagrams"),
		TemplateDir: firstNonEmpty(os.Getenv("SLIDESMITH_TEMPLATE_DIR"), "templates"),
		Template:    firstNonEmpty(os.Getenv("SLIDESMITH_TEMPLATE"), "default.yaml"),

		MaxFiles:      envInt("SLIDESMITH_MAX_FILES", types.MaxReferenceDocuments),
		MaxFileSizeMB: envInt("SLIDESMITH_MAX_FILE_MB", 10),

		MinSlides:    types.MinSlides,
		MaxSlides:    types.MaxSlides,
		TargetSlides: envInt("SLIDESMITH_TARGET_SLIDES", 8),

		EnableDiagrams:       envBool("SLIDESMITH_DIAGRAMS", true),
		MaxDiagramComponents: types.MaxDiagramComponents,
		DiagramDPI:           envInt("SLIDESMITH_DIAGRAM_DPI", 150),

		LLMTimeout:   envDuration("LLM_TIMEOUT", 90*time.Second),
		LLMRetries:   envInt("LLM_RETRIES", 1),
		LLMRPS:       envFloat("LLM_RPS", 0),
		LLMBurst:     envInt("LLM_BURST", 0),
		LLMCacheSize: envInt("LLM_CACHE_SIZE", 64),
		LLMCacheTTL:  envDuration("LLM_CACHE_TTL", 10*time.Minute),

		Brand: Brand{
			PrimaryColor:   firstNonEmpty(os.Getenv("BRAND_PRIMARY"), "#1B2A4A"),
			SecondaryColor: firstNonEmpty(os.Getenv("BRAND_SECONDARY"), "#00A3E0"),
			AccentColor:    firstNonEmpty(os.Getenv("BRAND_ACCENT"), "#E94E3C"),
			FontFamily:     firstNonEmpty(os.Getenv("BRAND_FONT"), "Helvetica"),
		},

		Artifact: loadArtifactConfig(),
	}

	if cfg.TargetSlides < cfg.MinSlides || cfg.TargetSlides > cfg.MaxSlides {
		return nil, fmt.Errorf("config: target slides %d outside [%d,%d]",
			cfg.TargetSlides, cfg.MinSlides, cfg.MaxSlides)
	}
	return cfg, nil
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(os.Getenv("ARTIFACT_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(os.Getenv("ARTIFACT_S3_BUCKET"), "slidesmith-artifacts"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", true),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
