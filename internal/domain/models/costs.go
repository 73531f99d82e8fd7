package models

// CostProfile carries the per-head holding costs and loss assumptions applied
// during valuation. A single profile is active at a time and is injected into
// the calculators as a read-only value.
type CostProfile struct {
	ID string `json:"id"`

	// Monthly per-head holding costs in dollars.
	AgistmentMonthly float64 `json:"agistmentMonthly"`
	FeedMonthly      float64 `json:"feedMonthly"`
	VetMonthly       float64 `json:"vetMonthly"`

	// FreightPerKm is the one-off dollars-per-kilometre cost of moving the
	// group to its saleyard.
	FreightPerKm float64 `json:"freightPerKm"`

	// AnnualMortalityRate is the fraction of physical value expected to be
	// lost per year, prorated daily.
	AnnualMortalityRate float64 `json:"annualMortalityRate"`

	// DefaultCalvingRate backfills breeder groups created without an explicit
	// rate.
	DefaultCalvingRate float64 `json:"defaultCalvingRate"`

	// PigBirthWeightRatio overrides the newborn weight ratio for pigs, which
	// have no species table entry.
	PigBirthWeightRatio float64 `json:"pigBirthWeightRatio"`
}

// Sanitize clamps rates into their meaningful ranges.
func (p *CostProfile) Sanitize() {
	if p.AgistmentMonthly < 0 {
		p.AgistmentMonthly = 0
	}
	if p.FeedMonthly < 0 {
		p.FeedMonthly = 0
	}
	if p.VetMonthly < 0 {
		p.VetMonthly = 0
	}
	if p.FreightPerKm < 0 {
		p.FreightPerKm = 0
	}
	if p.AnnualMortalityRate < 0 {
		p.AnnualMortalityRate = 0
	}
	if p.AnnualMortalityRate > 1 {
		p.AnnualMortalityRate = 1
	}
	if p.DefaultCalvingRate < 0 {
		p.DefaultCalvingRate = 0
	}
	if p.PigBirthWeightRatio < 0 {
		p.PigBirthWeightRatio = 0
	}
}

// Preferences bundles everything a valuation run needs besides the group
// itself: the active cost profile plus the owner's market preferences.
type Preferences struct {
	Costs CostProfile

	// Stat selects which quote statistic prices resolve to.
	Stat PriceStat

	// Region scopes venue-less price lookups.
	Region string

	// FreightDistanceKm is the assumed distance to the saleyard.
	FreightDistanceKm float64
}
