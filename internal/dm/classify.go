// Package dm classifies leads and renders personalized outreach messages.
// Rendering is deterministic: the same lead always produces the same text,
// so regenerating a script for review never changes what was sent.
package dm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// classRule pairs a compiled pattern with the type it assigns. Rules are
// ordered: the first matching pattern wins, so the most specific services
// come first.
type classRule struct {
	pattern  *regexp.Regexp
	leadType model.LeadType
}

var classRules = []classRule{
	{regexp.MustCompile(`dryer.{0,10}vent`), model.TypeDryerVent},
	{regexp.MustCompile(`furnace|heat.{0,8}system`), model.TypeFurnace},
	{regexp.MustCompile(`air.{0,5}duct|duct.{0,10}clean|ductwork`), model.TypeDuctCleaning},
	{regexp.MustCompile(`hvac|heat pump|air.{0,8}condition`), model.TypeHVACGeneral},
	{regexp.MustCompile(`just moved|just bought|new home|new house|first home|moving in|just closed`), model.TypeNewHomeowner},
	{regexp.MustCompile(`allergies|asthma|air quality|musty|mold|mildew|smell|odor|breathing|sneezing|dusty`), model.TypeAirQuality},
	{regexp.MustCompile(`recommend|who do you use|good company|reliable`), model.TypeRecommendation},
}

// Classify assigns a lead type from the lead's message and title. Total:
// text matching nothing falls through to TypeGeneral.
func Classify(lead *model.Lead) model.LeadType {
	text := strings.ToLower(lead.SearchText())
	for _, rule := range classRules {
		if rule.pattern.MatchString(text) {
			return rule.leadType
		}
	}
	return model.TypeGeneral
}

var nameTitler = cases.Title(language.English)

// firstName extracts a usable first name from the lead's display name,
// falling back to "there" when the name is missing, too short to be a real
// name, or suspiciously long (usernames, mangled scrapes).
func firstName(lead *model.Lead) string {
	first := splitNameTokens(lead.Name)
	if len(first) > 2 && len(first) < 20 {
		return nameTitler.String(strings.ToLower(first))
	}
	return "there"
}

func splitNameTokens(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '.' || r == '-' || r == '\t'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
