package dm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/model"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		Single:  199,
		Dual:    349,
		Dryer:   125,
		Phone:   "(980) 635-8288",
		Website: "queencityductcleaning.com",
		Company: "American Air Experts",
		Area:    "Charlotte",
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		message string
		title   string
		want    model.LeadType
	}{
		{"dryer vent", "my dryer vent is clogged", "", model.TypeDryerVent},
		{"dryer vent with gap", "the dryer exhaust vent needs cleaning", "", model.TypeDryerVent},
		{"furnace", "furnace making a weird noise", "", model.TypeFurnace},
		{"heating system", "our heating system needs a look", "", model.TypeFurnace},
		{"duct cleaning", "looking for air duct cleaning", "", model.TypeDuctCleaning},
		{"ductwork", "ductwork is ancient in this house", "", model.TypeDuctCleaning},
		{"hvac", "hvac quote needed", "", model.TypeHVACGeneral},
		{"air conditioning", "air conditioning barely blows", "", model.TypeHVACGeneral},
		{"new homeowner", "just bought our first place!", "", model.TypeNewHomeowner},
		{"air quality", "my allergies are terrible indoors", "", model.TypeAirQuality},
		{"recommendation", "who do you use for cleaning services?", "", model.TypeRecommendation},
		{"no match", "selling a couch", "", model.TypeGeneral},
		{"empty", "", "", model.TypeGeneral},
		{"title only", "", "Dryer vent help", model.TypeDryerVent},
		{"priority dryer over furnace", "dryer vent near the furnace", "", model.TypeDryerVent},
		{"priority furnace over hvac", "furnace and hvac are both old", "", model.TypeFurnace},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := &model.Lead{Message: tc.message, Title: tc.title}
			assert.Equal(t, tc.want, Classify(lead))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []string{"", " ", "???", strings.Repeat("z", 500), "\n\t"}
	for _, in := range inputs {
		lt := Classify(&model.Lead{Message: in})
		assert.Equal(t, model.TypeGeneral, lt)
	}
}

func TestFirstName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sarah Mitchell", "Sarah"},
		{"mike_t_1988", "Mike"},
		{"J.R. Smith", "there"},    // leading token too short
		{"", "there"},
		{"Jo", "there"},            // below minimum length
		{"pseudorandomusername123456", "there"}, // token too long
		{"DANA brown", "Dana"},
	}
	for _, tc := range cases {
		got := firstName(&model.Lead{Name: tc.in})
		assert.Equal(t, tc.want, got, "name %q", tc.in)
	}
}

func TestOpeningDeterministic(t *testing.T) {
	g := NewGenerator(testPricing())
	lead := &model.Lead{
		ID:      "3f2c6f0a-9b1d-4e1f-8f7a-111111111111",
		Name:    "Sarah Mitchell",
		Message: "anyone do dryer vent cleaning?",
	}
	first := g.Opening(lead)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, g.Opening(lead))
	}
}

func TestOpeningVariantsDifferByLead(t *testing.T) {
	g := NewGenerator(testPricing())
	seen := map[string]bool{}
	for i := 0; i < 40; i++ {
		lead := &model.Lead{
			ID:      fmt.Sprintf("lead-%d", i),
			Message: "furnace cleaning needed",
		}
		seen[g.Opening(lead)] = true
	}
	// Both furnace phrasings should show up across enough leads.
	assert.Len(t, seen, 2)
}

func TestOpeningContent(t *testing.T) {
	g := NewGenerator(testPricing())

	t.Run("dryer vent quotes dryer price", func(t *testing.T) {
		msg := g.Opening(&model.Lead{ID: "a", Name: "Sarah", Message: "dryer vent is clogged"})
		assert.Contains(t, msg, "Sarah")
		assert.Contains(t, msg, "$125")
	})

	t.Run("furnace quotes both system prices", func(t *testing.T) {
		msg := g.Opening(&model.Lead{ID: "a", Name: "Sarah", Message: "furnace needs cleaning"})
		assert.Contains(t, msg, "$199")
		assert.Contains(t, msg, "$349")
	})

	t.Run("recommendation names the company", func(t *testing.T) {
		msg := g.Opening(&model.Lead{ID: "a", Message: "anyone recommend a good service"})
		assert.Contains(t, msg, "American Air Experts")
	})

	t.Run("missing name falls back", func(t *testing.T) {
		msg := g.Opening(&model.Lead{ID: "a", Message: "hvac help"})
		assert.Contains(t, msg, "Hey there!")
	})
}

func TestFollowup(t *testing.T) {
	g := NewGenerator(testPricing())

	msg := g.Followup(&model.Lead{ID: "a", Message: "dryer vent question"})
	assert.Contains(t, msg, "$125")

	msg = g.Followup(&model.Lead{ID: "a", Message: "furnace acting up"})
	assert.Contains(t, msg, "$199")
	assert.Contains(t, msg, "$349")

	msg = g.Followup(&model.Lead{ID: "a", Name: "Dave Jones", Message: "random"})
	assert.Contains(t, msg, "Dave")
	assert.Contains(t, msg, "$199")
}

func TestBookingConfirmation(t *testing.T) {
	g := NewGenerator(testPricing())
	msg := g.BookingConfirmation(&model.Lead{Name: "Sarah Mitchell"}, "Tuesday", "2pm")
	assert.Contains(t, msg, "Sarah")
	assert.Contains(t, msg, "Tuesday")
	assert.Contains(t, msg, "2pm")
	assert.Contains(t, msg, "(980) 635-8288")
}

func TestGenerate(t *testing.T) {
	g := NewGenerator(testPricing())
	lead := &model.Lead{ID: "lead-1", Name: "Sarah", Message: "air duct cleaning recs?"}
	script := g.Generate(lead)
	assert.Equal(t, "lead-1", script.LeadID)
	assert.Equal(t, model.TypeDuctCleaning, script.LeadType)
	assert.NotEmpty(t, script.Opening)
	assert.NotEmpty(t, script.Followup)
}
