package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"slidesmith/internal/llm"
	"slidesmith/internal/prompt"
	"slidesmith/internal/types"
)

// ProjectAnalyzer interprets the structured project description. Like the
// document analyzer it never raises past Analyze; an unusable LLM payload
// falls back to keyword scoring before being declared a failure.
type ProjectAnalyzer struct {
	LLM llm.Client
}

var projAnalysisPrompt = mustPrompt(prompt.Spec{
	Purpose: "Interpret a client project description for a consultancy preparing a proposal deck.",
	Background: "The input JSON carries the description, client name, industry, budget range, timeline and " +
		"declared technologies. Derive what the deck must argue.",
	OutputFields: []prompt.Field{
		{Name: "requirements", Type: "[]string", Required: true, Description: "Concrete project requirements"},
		{Name: "technologies", Type: "[]string", Required: false, Description: "Technologies the solution needs"},
		{Name: "solution_approaches", Type: "[]string", Required: false, Description: "Recommended solution approaches"},
		{Name: "target_audience", Type: "string", Required: false, Description: "Who the presentation addresses"},
		{Name: "key_objectives", Type: "[]string", Required: false, Description: "Key project objectives"},
		{Name: "business_drivers", Type: "[]string", Required: false, Description: "Business motivations"},
		{Name: "technical_challenges", Type: "[]string", Required: false, Description: "Hard technical problems"},
		{Name: "success_criteria", Type: "[]string", Required: false, Description: "Measurable success criteria"},
		{Name: "value_propositions", Type: "[]string", Required: false, Description: "Value propositions to highlight"},
		{Name: "confidence", Type: "number", Required: true, Description: "Self-assessed reliability in [0,1]"},
	},
	Constraints: []string{
		"Ground every statement in the description; do not speculate about unstated requirements.",
	},
	Rules:        []string{"Keep each list under eight entries."},
	OutputFormat: "STRICT JSON matching the OUTPUT fields. No markdown, no comments.",
})

type projAnalysisOut struct {
	Requirements        []string `json:"requirements"`
	Technologies        []string `json:"technologies"`
	SolutionApproaches  []string `json:"solution_approaches"`
	TargetAudience      string   `json:"target_audience"`
	KeyObjectives       []string `json:"key_objectives"`
	BusinessDrivers     []string `json:"business_drivers"`
	TechnicalChallenges []string `json:"technical_challenges"`
	SuccessCriteria     []string `json:"success_criteria"`
	ValuePropositions   []string `json:"value_propositions"`
	Confidence          float64  `json:"confidence"`
}

// Analyze runs the project analysis pass.
func (a *ProjectAnalyzer) Analyze(ctx context.Context, project types.ProjectDescription) types.ProjectAnalysis {
	ctx = llm.WithStage(ctx, types.StageProjAnalysis)
	raw, err := a.LLM.GenerateJSON(ctx, projAnalysisPrompt, project)
	if err != nil {
		return types.ProjectAnalysis{
			Success: false,
			Error:   fmt.Sprintf("project analysis: %v", err),
		}
	}
	var out projAnalysisOut
	if uerr := json.Unmarshal(raw, &out); uerr != nil || len(out.Requirements) == 0 {
		// Salvage with keyword matching before giving up entirely.
		return keywordFallback(project)
	}
	return types.ProjectAnalysis{
		Requirements:        dedupFold(out.Requirements),
		Technologies:        dedupFold(append(out.Technologies, project.KeyTechnologies...)),
		SolutionApproaches:  dedupFold(out.SolutionApproaches),
		TargetAudience:      strings.TrimSpace(out.TargetAudience),
		KeyObjectives:       dedupFold(out.KeyObjectives),
		BusinessDrivers:     dedupFold(out.BusinessDrivers),
		TechnicalChallenges: dedupFold(out.TechnicalChallenges),
		SuccessCriteria:     dedupFold(out.SuccessCriteria),
		ValuePropositions:   dedupFold(out.ValuePropositions),
		Confidence:          successConfidence(out.Confidence),
		Success:             true,
	}
}

// knownTechnologies maps lowercase markers found in free text to canonical
// technology names for the keyword fallback.
var knownTechnologies = map[string]string{
	"aws":        "AWS",
	"azure":      "Azure",
	"gcp":        "GCP",
	"kubernetes": "Kubernetes",
	"kafka":      "Kafka",
	"spark":      "Spark",
	"snowflake":  "Snowflake",
	"postgres":   "PostgreSQL",
	"redis":      "Redis",
	"airflow":    "Airflow",
	"dbt":        "dbt",
	"databricks": "Databricks",
	"python":     "Python",
	"terraform":  "Terraform",
}

// keywordFallback derives a degraded analysis from the description alone.
// It reports success with reduced confidence so the run can continue.
func keywordFallback(project types.ProjectDescription) types.ProjectAnalysis {
	lower := strings.ToLower(project.Description)
	techs := append([]string(nil), project.KeyTechnologies...)
	for marker, name := range knownTechnologies {
		if strings.Contains(lower, marker) {
			techs = append(techs, name)
		}
	}
	var reqs []string
	for _, sentence := range strings.Split(project.Description, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) >= 15 {
			reqs = append(reqs, sentence)
		}
		if len(reqs) == 5 {
			break
		}
	}
	if len(reqs) == 0 {
		reqs = []string{project.Description}
	}
	return types.ProjectAnalysis{
		Requirements:   reqs,
		Technologies:   dedupFold(techs),
		TargetAudience: "technical and business stakeholders",
		Confidence:     0.4,
		Success:        true,
	}
}
