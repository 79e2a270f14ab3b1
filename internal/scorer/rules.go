// Package scorer implements the rule-based purchase-intent scoring engine.
// Scoring is a pure function of the lead's text and source: no I/O, no
// hidden state, same input always reproduces the same score and audit trail.
package scorer

import (
	"fmt"
	"strings"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// NoMatchReason is the reason string for leads matching no keyword tier.
const NoMatchReason = "no keyword match"

// Rules holds the keyword tiers and bonus tables. These are business tuning,
// not algorithmic invariants: values can change, tier precedence cannot.
type Rules struct {
	// Tiers in priority order. The first tier containing a match sets the
	// base score; later tiers are not consulted.
	Direct []string
	Strong []string
	Signal []string

	DirectScore int
	StrongScore int
	SignalScore int

	// Geo carries locality keywords checked against both text and source.
	Geo      []string
	GeoBonus int

	// SourceBonus pairs exact source identifiers with bonus points; the first
	// matching entry wins. PlatformBonus pairs a lowercase source substring
	// (a channel marker like "facebook") with a floor bonus; when both apply
	// the larger wins. Both are ordered so the audit trail is reproducible.
	SourceBonus   []BonusRule
	PlatformBonus []BonusRule

	// Band thresholds used for reporting.
	HotThreshold  int
	WarmThreshold int
}

// BonusRule pairs a source marker with its bonus points.
type BonusRule struct {
	Key   string
	Bonus int
}

// Result is the scoring outcome for one lead.
type Result struct {
	Score  int
	Reason string
}

// DefaultRules returns the production rule set for the duct-cleaning business.
func DefaultRules() Rules {
	return Rules{
		Direct: []string{
			"furnace clean", "duct clean", "air duct clean", "dryer vent clean",
			"hvac clean", "vent clean", "furnace service", "furnace repair",
			"ductwork clean", "duct cleaning", "furnace cleaning", "dryer vent",
			"air duct", "duct work", "ductwork", "need hvac", "hvac recommend",
			"recommend hvac", "furnace recommend", "air duct recommend",
		},
		Strong: []string{
			"hvac", "air quality", "musty smell", "dusty", "dirty vents",
			"furnace filter", "air filter", "heating system", "cooling system",
			"heat pump", "ac unit", "dirty ducts", "clean vents", "ventilation",
			"indoor air", "allergen", "air purif", "filter chang",
		},
		Signal: []string{
			"just moved", "just bought", "new home", "first home", "new house",
			"moving in", "renovation", "remodel", "musty", "mold", "mildew",
			"odor", "smell", "allergies", "asthma", "breathing problem",
			"pet dander", "sneezing", "coughing", "stuffy", "congestion",
		},
		DirectScore: 85,
		StrongScore: 65,
		SignalScore: 42,

		Geo: []string{
			"charlotte", "fort mill", "rock hill", "gastonia", "huntersville",
			"matthews", "mooresville", "lake norman", "cornelius", "davidson",
			"ballantyne", "steele creek", "pineville", "mint hill", "indian trail",
			"monroe", "stallings", "waxhaw", "concord", "kannapolis", "belmont",
		},
		GeoBonus: 12,

		SourceBonus: []BonusRule{
			{"Reddit r/Charlotte", 15},
			{"Reddit r/hvacadvice", 10},
			{"Reddit r/HVAC", 10},
			{"Reddit r/Huntersville", 12},
			{"Reddit r/LakeNorman", 12},
			{"Reddit r/Matthews", 12},
			{"Reddit r/Gastonia", 12},
			{"Reddit r/Cornelius", 12},
			{"Reddit r/homeowners", 8},
			{"Reddit r/HomeImprovement", 8},
			{"Reddit r/FirstTimeHomeBuyer", 8},
			{"Reddit r/homebuying", 8},
			{"Reddit r/Allergies", 5},
			{"Reddit r/Asthma", 5},
			{"Reddit r/NorthCarolina", 5},
			{"Reddit r/SouthCarolina", 3},
			{"Reddit r/moving", 5},
			{"Reddit r/renting", 4},
			{"Reddit r/Landlord", 4},
		},
		PlatformBonus: []BonusRule{
			{"facebook", 15},
			{"nextdoor", 12},
		},

		HotThreshold:  70,
		WarmThreshold: 40,
	}
}

// Score evaluates a lead against the rule set. Deterministic and total:
// any input, including empty text, yields a score in [0, 100].
func (r Rules) Score(lead *model.Lead) Result {
	text := strings.ToLower(lead.SearchText())
	source := lead.Source

	var reasons []string

	base, tierReason := r.matchTier(text)
	if base == 0 {
		return Result{Score: 0, Reason: NoMatchReason}
	}
	reasons = append(reasons, tierReason)
	score := base

	if geoReason, ok := r.matchGeo(text, source); ok {
		reasons = append(reasons, geoReason)
		score += r.GeoBonus
	}

	srcBonus, srcReasons := r.sourceBonus(source)
	reasons = append(reasons, srcReasons...)
	score += srcBonus
	if score > 100 {
		score = 100
	}

	return Result{Score: score, Reason: strings.Join(reasons, ". ")}
}

// matchTier returns the base score from the first tier with a matching
// phrase, searching tiers in priority order.
func (r Rules) matchTier(text string) (int, string) {
	for _, kw := range r.Direct {
		if strings.Contains(text, kw) {
			return r.DirectScore, fmt.Sprintf("Direct service: %q", kw)
		}
	}
	for _, kw := range r.Strong {
		if strings.Contains(text, kw) {
			return r.StrongScore, fmt.Sprintf("Strong signal: %q", kw)
		}
	}
	for _, kw := range r.Signal {
		if strings.Contains(text, kw) {
			return r.SignalScore, fmt.Sprintf("Moderate signal: %q", kw)
		}
	}
	return 0, ""
}

// matchGeo checks the locality list against the text and source. The bonus
// applies at most once.
func (r Rules) matchGeo(text, source string) (string, bool) {
	sourceLower := strings.ToLower(source)
	for _, geo := range r.Geo {
		if strings.Contains(text, geo) || strings.Contains(sourceLower, geo) {
			return fmt.Sprintf("Local geo: %q", geo), true
		}
	}
	return "", false
}

// sourceBonus combines the exact-source table with platform floors, taking
// the maximum rather than stacking.
func (r Rules) sourceBonus(source string) (int, []string) {
	bonus := 0
	var reasons []string

	for _, br := range r.SourceBonus {
		if strings.Contains(source, br.Key) {
			bonus = br.Bonus
			reasons = append(reasons, fmt.Sprintf("Source: +%d", br.Bonus))
			break
		}
	}

	sourceLower := strings.ToLower(source)
	for _, br := range r.PlatformBonus {
		if strings.Contains(sourceLower, br.Key) && br.Bonus > bonus {
			bonus = br.Bonus
			reasons = append(reasons, fmt.Sprintf("%s%s: +%d",
				strings.ToUpper(br.Key[:1]), br.Key[1:], br.Bonus))
		}
	}

	return bonus, reasons
}

// Band names the score band for reporting.
func (r Rules) Band(score int) string {
	switch {
	case score >= r.HotThreshold:
		return "hot"
	case score >= r.WarmThreshold:
		return "warm"
	case score > 0:
		return "cool"
	default:
		return "unscored"
	}
}
