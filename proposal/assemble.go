package proposal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentSections is the fixed section order of an assembled proposal.
// Downstream renderers consume this ordering as a contract; it never varies
// by input.
var DocumentSections = []string{
	SectionCover,
	SectionExecutiveSummary,
	SectionChallenges,
	SectionSolutionOverview,
	SectionPricing,
	SectionROICalculator,
	SectionImplementationTimeline,
	SectionCaseStudies,
	SectionDifferentiation,
	SectionNextSteps,
}

// Proposal is the assembled document returned to clients.
type Proposal struct {
	ProposalID      string    `json:"proposal_id"`
	CompanyName     string    `json:"company_name"`
	Sections        []Section `json:"sections"`
	PricingTiers    []Tier    `json:"pricing_tiers"`
	RecommendedTier string    `json:"recommended_tier"`
	Metadata        Metadata  `json:"metadata"`
	PDFURL          string    `json:"pdf_url"`
}

// AssemblyError reports an internal contract violation: a pipeline
// component returned an incomplete result. It indicates a programming
// defect, not bad input, and is surfaced to clients as a generic 500.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "assembly invariant violated: " + e.Reason
}

// Assemble merges pricing output and generated content into a Proposal
// with the fixed DocumentSections order. It fails only when a component
// produced fewer sections or tiers than required.
func Assemble(req *Request, tiers []Tier, recommended string, content []Section, meta Metadata) (*Proposal, error) {
	if len(tiers) != len(TierNames) {
		return nil, &AssemblyError{Reason: fmt.Sprintf("expected %d pricing tiers, got %d", len(TierNames), len(tiers))}
	}
	recommendedCount := 0
	for _, t := range tiers {
		if t.Recommended {
			recommendedCount++
		}
	}
	if recommendedCount != 1 || recommended == "" {
		return nil, &AssemblyError{Reason: fmt.Sprintf("expected exactly one recommended tier, got %d", recommendedCount)}
	}

	generated := make(map[string]string, len(content))
	for _, s := range content {
		generated[s.Name] = s.Content
	}
	for _, name := range ContentSections {
		if strings.TrimSpace(generated[name]) == "" {
			return nil, &AssemblyError{Reason: fmt.Sprintf("content section %q missing", name)}
		}
	}

	id := newProposalID(meta.GeneratedAt)

	sections := make([]Section, 0, len(DocumentSections))
	for _, name := range DocumentSections {
		var text string
		switch name {
		case SectionCover:
			text = coverText(req, id)
		case SectionChallenges:
			text = challengesText(req)
		case SectionDifferentiation:
			text = differentiationText(req)
		case SectionPricing:
			text = generated[name] + "\n\n" + renderTierTable(tiers)
		default:
			text = generated[name]
		}
		sections = append(sections, Section{Name: name, Content: text})
	}

	return &Proposal{
		ProposalID:      id,
		CompanyName:     req.CompanyName,
		Sections:        sections,
		PricingTiers:    tiers,
		RecommendedTier: recommended,
		Metadata:        meta,
		PDFURL:          "/proposals/" + id + ".pdf",
	}, nil
}

// newProposalID builds an identifier like PROP-20260115-093045-1a2b3c4d.
// The uuid suffix disambiguates proposals generated in the same second.
func newProposalID(at time.Time) string {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return fmt.Sprintf("PROP-%s-%s", at.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

func coverText(req *Request, id string) string {
	industry := orDefault(req.Industry, "your industry")
	return fmt.Sprintf("Proposal %s prepared for %s (%s).", id, req.CompanyName, industry)
}

func challengesText(req *Request) string {
	if len(req.PainPoints) == 0 {
		return fmt.Sprintf("%s is focused on general efficiency improvements.", req.CompanyName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Key challenges identified for %s:\n", req.CompanyName)
	for _, p := range req.PainPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return strings.TrimRight(b.String(), "\n")
}

func differentiationText(req *Request) string {
	if len(req.Competitors) == 0 {
		return "Compared with generic alternatives, the platform is configured around your workflows and priced to your scope."
	}
	return fmt.Sprintf(
		"Compared with %s, the platform is configured around your workflows, "+
			"integrates without rip-and-replace, and is priced to your scope.",
		strings.Join(req.Competitors, ", "))
}

func renderTierTable(tiers []Tier) string {
	var b strings.Builder
	for _, t := range tiers {
		marker := ""
		if t.Recommended {
			marker = " (recommended)"
		}
		fmt.Fprintf(&b, "%s%s: $%.2f\n", t.Name, marker, t.Price)
		for _, f := range t.Features {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
