package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Species enumerates the livestock kinds the engine can value.
type Species string

const (
	SpeciesCattle Species = "Cattle"
	SpeciesSheep  Species = "Sheep"
	SpeciesGoat   Species = "Goat"
	SpeciesPig    Species = "Pig"
)

// DefaultPigBirthWeightRatio is used when preferences carry no pig-specific
// newborn weight ratio. Piglets are born around 0.6% of sow liveweight.
const DefaultPigBirthWeightRatio = 0.006

// Valid reports whether s is one of the supported species.
func (s Species) Valid() bool {
	switch s {
	case SpeciesCattle, SpeciesSheep, SpeciesGoat, SpeciesPig:
		return true
	}
	return false
}

// GestationCycleDays returns the species gestation length in days.
func (s Species) GestationCycleDays() int {
	switch s {
	case SpeciesCattle:
		return 283
	case SpeciesSheep, SpeciesGoat:
		return 150
	case SpeciesPig:
		return 114
	}
	return 283
}

// BirthWeightRatio returns the newborn-to-mother liveweight ratio.
// Pigs have no fixed table value; the configured ratio is used for them and
// falls back to DefaultPigBirthWeightRatio when unset.
func (s Species) BirthWeightRatio(configuredPigRatio float64) float64 {
	switch s {
	case SpeciesCattle:
		return 0.07
	case SpeciesSheep, SpeciesGoat:
		return 0.08
	case SpeciesPig:
		if configuredPigRatio > 0 {
			return configuredPigRatio
		}
		return DefaultPigBirthWeightRatio
	}
	return 0
}

// JuvenileCategory returns the market category newborn stock is filed under.
func (s Species) JuvenileCategory() string {
	switch s {
	case SpeciesCattle:
		return "Calves"
	case SpeciesSheep:
		return "Lambs"
	case SpeciesGoat:
		return "Kids"
	case SpeciesPig:
		return "Piglets"
	}
	return "Calves"
}

// JuvenileDailyGainKg returns the default growth rate assigned to newborn stock.
func (s Species) JuvenileDailyGainKg() float64 {
	switch s {
	case SpeciesCattle:
		return 0.70
	case SpeciesSheep:
		return 0.25
	case SpeciesGoat:
		return 0.20
	case SpeciesPig:
		return 0.45
	}
	return 0
}

// LivestockGroup is a mob of animals managed and valued as a single unit.
// Engine-created progeny groups carry a SourceGroupID back to their mother
// and are backdated to the computed calving date.
type LivestockGroup struct {
	ID       string  `json:"id"`
	Species  Species `json:"species"`
	Breed    string  `json:"breed,omitempty"`
	Sex      string  `json:"sex,omitempty"`
	Category string  `json:"category"`

	HeadCount       int     `json:"headCount"`
	InitialWeightKg float64 `json:"initialWeightKg"`
	DailyGainKg     float64 `json:"dailyGainKg"`

	AgeMonths *int       `json:"ageMonths,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`

	// ReferenceDate anchors growth projection and, for continuously joined
	// breeders, the start of the current gestation.
	ReferenceDate time.Time `json:"referenceDate"`

	IsBreeder   bool    `json:"isBreeder"`
	IsPregnant  bool    `json:"isPregnant"`
	CalvingRate float64 `json:"calvingRate"`

	// CalvingProcessedDate is the idempotency guard for the gestation-completion
	// transition: non-nil means the transition has been applied and the group
	// must never be delivered again.
	CalvingProcessedDate *time.Time `json:"calvingProcessedDate,omitempty"`

	// JoiningStart/JoiningEnd describe a controlled joining window (AI or a
	// fixed bull-in period). When both are set, gestation is measured from the
	// window midpoint to reflect average conception timing.
	JoiningStart *time.Time `json:"joiningStart,omitempty"`
	JoiningEnd   *time.Time `json:"joiningEnd,omitempty"`

	SaleyardVenue string `json:"saleyardVenue,omitempty"`

	IsSold         bool            `json:"isSold"`
	SoldAt         *time.Time      `json:"soldAt,omitempty"`
	SalePricePerKg decimal.Decimal `json:"salePricePerKg"`

	SourceGroupID *string `json:"sourceGroupId,omitempty"`
	Notes         string  `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GestationStart returns the date the current gestation is measured from:
// the midpoint of the joining window for controlled joining, otherwise the
// group's reference date (continuous breeding).
func (g *LivestockGroup) GestationStart() time.Time {
	if g.JoiningStart != nil && g.JoiningEnd != nil && !g.JoiningEnd.Before(*g.JoiningStart) {
		return g.JoiningStart.Add(g.JoiningEnd.Sub(*g.JoiningStart) / 2)
	}
	return g.ReferenceDate
}

// The calving date is fixed once conception timing is known.
func (g *LivestockGroup) CalvingDate() time.Time {
	return g.GestationStart().AddDate(0, 0, g.Species.GestationCycleDays())
}

// IsDelivered reports whether the gestation-completion transition has already
// been applied to this group.
func (g *LivestockGroup) IsDelivered() bool {
	return g.CalvingProcessedDate != nil
}

// Sanitize clamps out-of-range numeric fields so invalid input can never
// propagate into the calculators as a negative valuation.
func (g *LivestockGroup) Sanitize() {
	if g.HeadCount < 0 {
		g.HeadCount = 0
	}
	if g.InitialWeightKg < 0 {
		g.InitialWeightKg = 0
	}
	if g.DailyGainKg < 0 {
		g.DailyGainKg = 0
	}
	if g.CalvingRate < 0 {
		g.CalvingRate = 0
	}
}

// Validate ensures the group satisfies the minimum shape required before it
// enters the store.
func (g *LivestockGroup) Validate() error {
	if !g.Species.Valid() {
		return errors.New("unknown species")
	}
	if g.Category == "" {
		return errors.New("category must not be empty")
	}
	if g.HeadCount < 0 {
		return errors.New("head count must not be negative")
	}
	if g.InitialWeightKg <= 0 {
		return errors.New("initial weight must be positive")
	}
	if g.DailyGainKg < 0 {
		return errors.New("daily gain must not be negative")
	}
	if g.CalvingRate < 0 {
		return errors.New("calving rate must not be negative")
	}
	if g.ReferenceDate.IsZero() {
		return errors.New("reference date must be set")
	}
	if g.JoiningStart != nil && g.JoiningEnd != nil && g.JoiningEnd.Before(*g.JoiningStart) {
		return errors.New("joining window end precedes its start")
	}
	return nil
}
