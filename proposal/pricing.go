package proposal

// Tier names, in ascending order of scope.
const (
	TierStarter      = "Starter"
	TierProfessional = "Professional"
	TierEnterprise   = "Enterprise"
)

// TierNames lists the three tiers in ascending order.
var TierNames = []string{TierStarter, TierProfessional, TierEnterprise}

// Tier is one computed pricing bundle.
type Tier struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended"`
}

// PricingConfig holds the tunable pricing constants. The defaults are
// reference values; deployments override them via configuration.
type PricingConfig struct {
	// BasePrice anchors all tier prices.
	BasePrice float64 `yaml:"base_price"`

	// LowerThreshold and UpperThreshold partition budgets into tier
	// recommendations. Lower bound inclusive, upper bound exclusive.
	LowerThreshold float64 `yaml:"lower_threshold"`
	UpperThreshold float64 `yaml:"upper_threshold"`

	// Per-tier price multipliers.
	StarterMultiplier      float64 `yaml:"starter_multiplier"`
	ProfessionalMultiplier float64 `yaml:"professional_multiplier"`
	EnterpriseMultiplier   float64 `yaml:"enterprise_multiplier"`

	// Per-urgency price multipliers. High urgency raises suggested price,
	// modeling reduced negotiating leverage under time pressure.
	UrgencyLowMultiplier    float64 `yaml:"urgency_low_multiplier"`
	UrgencyMediumMultiplier float64 `yaml:"urgency_medium_multiplier"`
	UrgencyHighMultiplier   float64 `yaml:"urgency_high_multiplier"`
}

// DefaultPricingConfig returns the reference pricing constants.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BasePrice:               10000,
		LowerThreshold:          20000,
		UpperThreshold:          100000,
		StarterMultiplier:       0.5,
		ProfessionalMultiplier:  1.0,
		EnterpriseMultiplier:    2.0,
		UrgencyLowMultiplier:    0.9,
		UrgencyMediumMultiplier: 1.0,
		UrgencyHighMultiplier:   1.15,
	}
}

// tierFeatures are the fixed per-tier feature bundles.
var tierFeatures = map[string][]string{
	TierStarter: {
		"Core platform access",
		"Email support",
		"Up to 10 users",
		"Standard integrations",
	},
	TierProfessional: {
		"Everything in Starter",
		"Priority support",
		"Up to 50 users",
		"Advanced analytics",
		"Custom integrations",
		"Dedicated account manager",
	},
	TierEnterprise: {
		"Everything in Professional",
		"Unlimited users",
		"24/7 phone support",
		"Custom development",
		"SLA guarantees",
		"Executive business reviews",
	},
}

// urgencyMultiplier maps a normalized urgency level to its price multiplier.
func (c PricingConfig) urgencyMultiplier(urgency string) float64 {
	switch urgency {
	case UrgencyLow:
		return c.UrgencyLowMultiplier
	case UrgencyHigh:
		return c.UrgencyHighMultiplier
	default:
		return c.UrgencyMediumMultiplier
	}
}

// ComputeTiers computes the three pricing tiers and the recommended tier
// name for a normalized request. It is pure and cannot fail: an unparsable
// budget defaults the recommendation to Professional, the safe middle.
func ComputeTiers(req *Request, cfg PricingConfig) ([]Tier, string) {
	urgency := cfg.urgencyMultiplier(req.Urgency)

	recommended := TierProfessional
	if amount, ok := ParseBudget(req.BudgetRange); ok {
		switch {
		case amount < cfg.LowerThreshold:
			recommended = TierStarter
		case amount < cfg.UpperThreshold:
			recommended = TierProfessional
		default:
			recommended = TierEnterprise
		}
	}

	tiers := []Tier{
		{Name: TierStarter, Price: cfg.BasePrice * cfg.StarterMultiplier * urgency},
		{Name: TierProfessional, Price: cfg.BasePrice * cfg.ProfessionalMultiplier * urgency},
		{Name: TierEnterprise, Price: cfg.BasePrice * cfg.EnterpriseMultiplier * urgency},
	}
	for i := range tiers {
		tiers[i].Features = tierFeatures[tiers[i].Name]
		tiers[i].Recommended = tiers[i].Name == recommended
	}

	return tiers, recommended
}
