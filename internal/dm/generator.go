package dm

import (
	"fmt"
	"hash/fnv"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// Generator renders outreach scripts using the configured pricing and
// contact constants.
type Generator struct {
	pricing config.PricingConfig
}

// NewGenerator returns a Generator bound to the given pricing config.
func NewGenerator(pricing config.PricingConfig) *Generator {
	return &Generator{pricing: pricing}
}

// Script is a rendered outreach message for one lead.
type Script struct {
	LeadID   string         `json:"lead_id"`
	LeadType model.LeadType `json:"lead_type"`
	Opening  string         `json:"opening"`
	Followup string         `json:"followup"`
}

// Generate renders the full script set for a lead.
func (g *Generator) Generate(lead *model.Lead) Script {
	lt := Classify(lead)
	return Script{
		LeadID:   lead.ID,
		LeadType: lt,
		Opening:  g.Opening(lead),
		Followup: g.Followup(lead),
	}
}

// Opening renders the first-contact message for a lead. Lead types with
// multiple phrasings pick one by hashing the lead ID, so a given lead
// always gets the same variant.
func (g *Generator) Opening(lead *model.Lead) string {
	n := firstName(lead)
	p := g.pricing

	switch Classify(lead) {
	case model.TypeDryerVent:
		return pickVariant(lead.ID,
			fmt.Sprintf("Hey %s! Saw your post about the dryer vent — we specialize in exactly that. We're doing dryer vent cleanings for $%d right now, includes full cleaning and inspection. Takes about 30 min and honestly it's a fire hazard when clogged (top cause of house fires). Are you in the %s area? We have slots open this week.", n, p.Dryer, p.Area),
			fmt.Sprintf("Hey %s! Just saw your dryer vent post. We're a local %s company and do these all the time — $%d flat, full clean + inspection. We have openings this week. You still looking to get it done?", n, p.Area, p.Dryer),
		)
	case model.TypeFurnace:
		return pickVariant(lead.ID,
			fmt.Sprintf("Hey %s! Caught your post about the furnace. We run a furnace cleaning special in %s — $%d and that includes ALL vents in the house. Two-furnace home? It's $%d, still all vents covered. Best time to get it done before summer. You local?", n, p.Area, p.Single, p.Dual),
			fmt.Sprintf("Hey %s! We're local to %s and do furnace cleanings all day. $%d covers the full furnace + every vent in the house. $%d if you have two systems. We're booking this week — want to grab a slot?", n, p.Area, p.Single, p.Dual),
		)
	case model.TypeDuctCleaning:
		return fmt.Sprintf("Hey %s! Saw you're asking about duct/vent cleaning. We do this daily in %s — $%d covers the full furnace + every vent in the home. Most homes that haven't had it done have years of dust, dander, and debris in there. Still looking? We have openings this week.", n, p.Area, p.Single)
	case model.TypeHVACGeneral:
		return fmt.Sprintf("Hey %s! Local air duct & furnace cleaning company here in %s. Running a special — $%d furnace cleaning with all vents included, or $%d if it's just the dryer vent. Great time of year to get it done. You in the %s area?", n, p.Area, p.Single, p.Dryer, p.Area)
	case model.TypeNewHomeowner:
		return pickVariant(lead.ID,
			fmt.Sprintf("Hey %s! Congrats on the new place! Quick tip from someone who does this daily — get the ducts cleaned before you really settle in. Previous owners never clean them and you'd be breathing whatever's been in there for years. We do a full furnace + all vents cleaning for $%d in %s. Worth a quick appointment!", n, p.Single, p.Area),
			fmt.Sprintf("Hey %s! New home tip: get the ducts and vents cleaned ASAP. You have no idea what's in there from the previous owners. We do it all day in %s — $%d full furnace + every vent, or $%d just the dryer vent. We have slots this week!", n, p.Area, p.Single, p.Dryer),
		)
	case model.TypeAirQuality:
		return fmt.Sprintf("Hey %s! Saw your post — dirty air ducts are almost always the culprit. Dust, mold spores, pet dander all build up in the HVAC system and just recirculate through the house. We do a full furnace + all vents cleaning for $%d in %s. Most people notice a real difference within days. Want to get on the schedule?", n, p.Single, p.Area)
	case model.TypeRecommendation:
		return fmt.Sprintf("Hey %s! We're %s, a local %s company. Furnace + all vents is $%d (single system) or $%d (two systems). Dryer vent is $%d. Local, reliable, in %s daily. Happy to set something up if you're interested!", n, p.Company, p.Area, p.Single, p.Dual, p.Dryer, p.Area)
	default:
		return pickVariant(lead.ID,
			fmt.Sprintf("Hey %s! We're a local air duct and furnace cleaning company in %s. Running specials right now — $%d for a full furnace clean with all vents, $%d for two-furnace homes, and $%d dryer vent cleaning. You in the area?", n, p.Area, p.Single, p.Dual, p.Dryer),
			fmt.Sprintf("Hey %s! %s here — local %s company doing air duct, furnace, and dryer vent cleanings. $%d all in for single furnace + all vents. Anything we can help with?", n, p.Company, p.Area, p.Single),
		)
	}
}

// Followup renders the circle-back message for a lead.
func (g *Generator) Followup(lead *model.Lead) string {
	p := g.pricing
	switch Classify(lead) {
	case model.TypeDryerVent:
		return fmt.Sprintf("Just following up! We're in your area soon — dryer vent cleaning takes 30-45 min, $%d flat. Want to lock in a time?", p.Dryer)
	case model.TypeFurnace:
		return fmt.Sprintf("Hey just circling back! Furnace special is $%d all vents, $%d for 2 furnaces. We have appointments this week — which day works for you?", p.Single, p.Dual)
	default:
		return fmt.Sprintf("Hey %s! Just following up — we still have openings this week for the $%d furnace + all vents special. Takes about an hour. Want to grab a slot?", firstName(lead), p.Single)
	}
}

// BookingConfirmation renders the appointment confirmation message.
func (g *Generator) BookingConfirmation(lead *model.Lead, day, timeOfDay string) string {
	return fmt.Sprintf("Perfect %s! You're all set for %s at %s. Our tech will call you 30 min before arrival. If anything comes up, call %s. See you then!",
		firstName(lead), day, timeOfDay, g.pricing.Phone)
}

// pickVariant selects one phrasing by hashing the lead ID, keeping the
// choice stable across runs for the same lead.
func pickVariant(leadID string, variants ...string) string {
	h := fnv.New32a()
	h.Write([]byte(leadID))
	return variants[int(h.Sum32())%len(variants)]
}
