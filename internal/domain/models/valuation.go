package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationResult is the full value decomposition of one group at one date.
// NetValue always equals PhysicalValue - MortalityDeduction + BreedingAccrual
// - CostToCarry.
type ValuationResult struct {
	GroupID   string    `json:"groupId"`
	Category  string    `json:"category"`
	Species   Species   `json:"species"`
	AsOf      time.Time `json:"asOf"`
	HeadCount int       `json:"headCount"`

	ProjectedWeightKg float64         `json:"projectedWeightKg"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	PriceProvenance   PriceProvenance `json:"-"`
	PriceLabel        string          `json:"priceLabel"`

	PhysicalValue      decimal.Decimal `json:"physicalValue"`
	MortalityDeduction decimal.Decimal `json:"mortalityDeduction"`
	BreedingAccrual    decimal.Decimal `json:"breedingAccrual"`
	CostToCarry        decimal.Decimal `json:"costToCarry"`
	NetValue           decimal.Decimal `json:"netValue"`

	Sold bool `json:"sold"`
}

// CategoryTotal is one slice of the portfolio breakdown.
type CategoryTotal struct {
	Category  string          `json:"category"`
	HeadCount int             `json:"headCount"`
	Value     decimal.Decimal `json:"value"`
	Percent   float64         `json:"percent"`
}

// GroupError records a group whose valuation failed without sinking the
// whole portfolio run.
type GroupError struct {
	GroupID string `json:"groupId"`
	Reason  string `json:"reason"`
}

// PortfolioSnapshot is the aggregate state of the herd at one date.
type PortfolioSnapshot struct {
	Date       time.Time       `json:"date"`
	TotalValue decimal.Decimal `json:"totalValue"`
	HeadCount  int             `json:"headCount"`
	GroupCount int             `json:"groupCount"`

	Categories      []CategoryTotal `json:"categories"`
	BreedingAccrual decimal.Decimal `json:"breedingAccrual"`
	CostToCarry     decimal.Decimal `json:"costToCarry"`

	// InitialValue is the herd's worth at acquisition, before growth, market
	// movement, accrual and costs.
	InitialValue decimal.Decimal `json:"initialValue"`

	// PreviousDayValue and DayChange compare against the snapshot one day
	// earlier; DayChange is zero when no prior point exists.
	PreviousDayValue decimal.Decimal `json:"previousDayValue"`
	DayChange        decimal.Decimal `json:"dayChange"`

	GroupErrors []GroupError `json:"groupErrors,omitempty"`
}

// ValuationSnapshot is one point on the portfolio history curve.
type ValuationSnapshot struct {
	Date            time.Time       `json:"date"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	Categories      []CategoryTotal `json:"categories"`
	BreedingAccrual decimal.Decimal `json:"breedingAccrual"`
	CostToCarry     decimal.Decimal `json:"costToCarry"`
}
