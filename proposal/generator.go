package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/dealdesk/llm"
)

// ContentSections lists the section names the generator produces, in order.
var ContentSections = []string{
	SectionExecutiveSummary,
	SectionSolutionOverview,
	SectionPricing,
	SectionROICalculator,
	SectionImplementationTimeline,
	SectionCaseStudies,
	SectionNextSteps,
}

// Section names used across generation and assembly.
const (
	SectionCover                  = "cover"
	SectionExecutiveSummary       = "executive_summary"
	SectionChallenges             = "challenges"
	SectionSolutionOverview       = "solution_overview"
	SectionPricing                = "pricing"
	SectionROICalculator          = "roi_calculator"
	SectionImplementationTimeline = "implementation_timeline"
	SectionCaseStudies            = "case_studies"
	SectionDifferentiation        = "differentiation"
	SectionNextSteps              = "next_steps"
)

// Section is one named block of proposal prose.
type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Metadata describes how a proposal's content was produced.
type Metadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	ModelUsed    string    `json:"model_used"`
	FallbackUsed bool      `json:"fallback_used"`
}

// generationTemperature matches the consultative-but-varied register the
// prompts were tuned against.
var generationTemperature = 0.7

// DefaultGenerationTimeout bounds the external call when no timeout is
// configured.
const DefaultGenerationTimeout = 30 * time.Second

// Generator orchestrates content generation. It calls the external
// generative service under a bounded timeout and degrades to deterministic
// rule-based templates when the service is absent, fails, or returns
// malformed output. Degradation is never an error to the caller.
type Generator struct {
	client  *llm.Client // nil means fallback-only mode
	timeout time.Duration
	logger  *slog.Logger
}

// NewGenerator creates a Generator. A nil client puts the generator in
// fallback-only mode. timeout <= 0 uses DefaultGenerationTimeout.
func NewGenerator(client *llm.Client, timeout time.Duration, logger *slog.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, timeout: timeout, logger: logger}
}

// FallbackOnly reports whether the generator will always take the fallback
// path, either because no client is configured or its credential is absent.
func (g *Generator) FallbackOnly() bool {
	return g.client == nil || !g.client.HasCredential()
}

// Generate produces the seven content sections and generation metadata for
// a normalized request. The only error it returns is ctx.Err() when the
// caller has gone away; every generation failure is absorbed into the
// deterministic fallback and recorded truthfully in the metadata.
func (g *Generator) Generate(ctx context.Context, req *Request) ([]Section, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}

	meta := Metadata{GeneratedAt: time.Now().UTC()}

	if g.client == nil || !g.client.HasCredential() {
		g.logger.Debug("No generative credential configured, using fallback",
			"company", req.CompanyName)
		meta.ModelUsed = ModelFallback
		meta.FallbackUsed = true
		return FallbackSections(req), meta, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(callCtx, llm.Request{
		Messages:    buildPrompt(req),
		Temperature: &generationTemperature,
	})
	if err != nil {
		// An abandoned request is not a degraded one: the caller
		// disconnected, so produce nothing and record nothing.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Metadata{}, ctxErr
		}
		g.logger.Warn("Generation degraded, using fallback",
			"company", req.CompanyName,
			"transient", llm.IsTransient(err),
			"error", err)
		meta.ModelUsed = ModelFallback
		meta.FallbackUsed = true
		return FallbackSections(req), meta, nil
	}

	sections, err := parseSections(resp.Content)
	if err != nil {
		g.logger.Warn("Generated output malformed, using fallback",
			"company", req.CompanyName,
			"model", resp.Model,
			"error", err)
		meta.ModelUsed = ModelFallback
		meta.FallbackUsed = true
		return FallbackSections(req), meta, nil
	}

	meta.ModelUsed = resp.Model
	if meta.ModelUsed == "" {
		meta.ModelUsed = g.client.Model()
	}
	return sections, meta, nil
}

// systemPrompt frames the generation task.
var systemPrompt = `You are an expert B2B sales proposal writer with 15 years of experience.
Create compelling, customized sales proposals that win deals.

Focus on:
1. Understanding their specific pain points
2. Clear ROI and value proposition
3. Social proof and credibility
4. Competitive differentiation
5. Clear next steps

Return a JSON object whose keys are exactly: ` + strings.Join(ContentSections, ", ") + `.
Each value must be prose text for that section.`

// buildPrompt constructs the deterministic prompt for a request.
func buildPrompt(req *Request) []llm.Message {
	var b strings.Builder
	b.WriteString("Create a sales proposal for:\n\n")
	fmt.Fprintf(&b, "Company: %s\n", req.CompanyName)
	fmt.Fprintf(&b, "Industry: %s\n", orDefault(req.Industry, "Unknown"))
	fmt.Fprintf(&b, "Pain Points: %s\n", joinOrDefault(req.PainPoints, "General efficiency improvements"))
	fmt.Fprintf(&b, "Budget: %s\n", orDefault(req.BudgetRange, "Not specified"))
	fmt.Fprintf(&b, "Decision Makers: %s\n", joinOrDefault(req.DecisionMakers, "Not specified"))
	fmt.Fprintf(&b, "Competing with: %s\n", joinOrDefault(req.Competitors, "Generic alternatives"))
	fmt.Fprintf(&b, "Urgency: %s\n", req.Urgency)
	b.WriteString("\nTone: Professional, consultative, ROI-focused")

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// parseSections decodes the model output into the seven content sections.
// Missing or empty sections are malformed output; the caller falls back.
func parseSections(content string) ([]Section, error) {
	raw := llm.ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	sections := make([]Section, 0, len(ContentSections))
	for _, name := range ContentSections {
		text := strings.TrimSpace(parsed[name])
		if text == "" {
			return nil, fmt.Errorf("model output missing section %q", name)
		}
		sections = append(sections, Section{Name: name, Content: text})
	}
	return sections, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}
