package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceStat selects which statistic of the matched quote set becomes the
// unit price.
type PriceStat string

const (
	PriceStatCurrent PriceStat = "current"
	PriceStatMinimum PriceStat = "minimum"
	PriceStatMaximum PriceStat = "maximum"
	PriceStatAverage PriceStat = "average"
)

// Valid reports whether p is a known statistic.
func (p PriceStat) Valid() bool {
	switch p {
	case PriceStatCurrent, PriceStatMinimum, PriceStatMaximum, PriceStatAverage:
		return true
	}
	return false
}

// MarketPriceQuote is one observed saleyard price in dollars per kilogram
// liveweight.
type MarketPriceQuote struct {
	ID            string
	Category      string
	Breed         string
	Venue         string
	Region        string
	PricePerKg    decimal.Decimal
	EffectiveDate time.Time
	Source        string
}

// QuoteQuery describes the quote universe a price resolution draws from.
type QuoteQuery struct {
	Category string
	Breed    string
	Venue    string
	Region   string
	Stat     PriceStat

	// AsOf, when set, excludes quotes observed after that date so historical
	// valuations never see future prices.
	AsOf *time.Time
}

// PriceProvenance records where a resolved unit price came from so every
// valuation can explain itself.
type PriceProvenance struct {
	Stat       PriceStat
	Venue      string
	Source     string
	QuoteDate  time.Time
	QuoteCount int
	NoData     bool
}

// Label renders the provenance as a short human-readable phrase.
func (p PriceProvenance) Label() string {
	if p.NoData {
		return "no market data"
	}
	venue := p.Venue
	if venue == "" {
		venue = "all venues"
	}
	if p.Stat == PriceStatAverage {
		return fmt.Sprintf("%s, average of %d quotes", venue, p.QuoteCount)
	}
	return fmt.Sprintf("%s, %s quote of %s", venue, p.Stat, p.QuoteDate.Format("2006-01-02"))
}
