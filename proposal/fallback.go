package proposal

import (
	"fmt"
	"strings"
)

// ModelFallback is the model identifier recorded when the deterministic
// fallback produced the content.
const ModelFallback = "fallback"

// FallbackSections produces the seven content sections from fixed
// rule-based templates. The output is fully deterministic: identical
// requests always yield byte-identical sections.
func FallbackSections(req *Request) []Section {
	pains := joinOrDefault(req.PainPoints, "operational efficiency")
	competitors := joinOrDefault(req.Competitors, "generic alternatives")
	industry := orDefault(req.Industry, "your industry")

	executive := fmt.Sprintf(
		"%s faces significant challenges with %s. Our solution delivers "+
			"measurable ROI through automation and intelligence, tailored to "+
			"the realities of %s. This proposal outlines a pragmatic path from "+
			"today's constraints to a measurably better operation.",
		req.CompanyName, pains, industry)

	solution := fmt.Sprintf(
		"Our platform provides enterprise-grade capabilities tailored to the "+
			"specific needs of %s. It addresses %s directly, integrates with "+
			"your existing systems, and scales as your team grows. Unlike %s, "+
			"the platform is configured around your workflows rather than "+
			"forcing your team to adapt to ours.",
		req.CompanyName, pains, competitors)

	pricing := fmt.Sprintf(
		"Three pricing tiers are offered so %s can start at the level that "+
			"matches current scope and upgrade as adoption grows. Every tier "+
			"includes onboarding and support; the recommended tier reflects "+
			"your stated budget.",
		req.CompanyName)

	roi := fmt.Sprintf(
		"Based on organizations of comparable size addressing %s, typical "+
			"outcomes are $500,000 in annual savings with a payback period of "+
			"3 months. A detailed ROI model for %s is prepared during the "+
			"technical deep-dive.",
		pains, req.CompanyName)

	timeline := fmt.Sprintf(
		"Implementation for %s follows a four-phase plan: discovery and "+
			"configuration (weeks 1-2), integration (weeks 3-4), pilot rollout "+
			"(weeks 5-6), and full deployment with training (weeks 7-8).",
		req.CompanyName)

	caseStudies := fmt.Sprintf(
		"Teams in %s have used the platform to eliminate challenges such as "+
			"%s, reporting faster cycle times and fewer manual errors within "+
			"the first quarter. References are available on request.",
		industry, pains)

	nextSteps := nextStepsText(req)

	return []Section{
		{Name: SectionExecutiveSummary, Content: executive},
		{Name: SectionSolutionOverview, Content: solution},
		{Name: SectionPricing, Content: pricing},
		{Name: SectionROICalculator, Content: roi},
		{Name: SectionImplementationTimeline, Content: timeline},
		{Name: SectionCaseStudies, Content: caseStudies},
		{Name: SectionNextSteps, Content: nextSteps},
	}
}

// nextStepsText varies only on urgency and decision makers, deterministically.
func nextStepsText(req *Request) string {
	window := "within 5 business days"
	if req.Urgency == UrgencyHigh {
		window = "within 3 business days"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "1. Schedule a technical deep-dive call %s.\n", window)
	if len(req.DecisionMakers) > 0 {
		fmt.Fprintf(&b, "2. Align on success criteria with %s.\n",
			strings.Join(req.DecisionMakers, ", "))
	} else {
		b.WriteString("2. Align on success criteria with your stakeholders.\n")
	}
	b.WriteString("3. Confirm the pricing tier and target start date.")
	return b.String()
}
