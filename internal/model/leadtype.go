package model

// LeadType is the classified category of a lead's expressed need. It selects
// which outreach template family the DM generator uses.
type LeadType string

const (
	TypeDryerVent      LeadType = "DRYER_VENT"
	TypeFurnace        LeadType = "FURNACE"
	TypeDuctCleaning   LeadType = "DUCT_CLEANING"
	TypeHVACGeneral    LeadType = "HVAC_GENERAL"
	TypeNewHomeowner   LeadType = "NEW_HOMEOWNER"
	TypeAirQuality     LeadType = "AIR_QUALITY"
	TypeRecommendation LeadType = "RECOMMENDATION"
	TypeGeneral        LeadType = "GENERAL"
)
