package valuation

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// PriceSource supplies candidate market quotes for a query. Implementations
// filter on category at minimum; the resolver applies the finer preference
// order itself.
type PriceSource interface {
	Lookup(ctx context.Context, q models.QuoteQuery) ([]models.MarketPriceQuote, error)
}

// MultiSource fans a lookup across several sources and pools their quotes.
// A failing source is skipped so one dead feed cannot blind the resolver;
// the joined error is only surfaced when every source failed.
type MultiSource []PriceSource

func (m MultiSource) Lookup(ctx context.Context, q models.QuoteQuery) ([]models.MarketPriceQuote, error) {
	var (
		quotes []models.MarketPriceQuote
		errs   []error
	)
	for _, s := range m {
		found, err := s.Lookup(ctx, q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		quotes = append(quotes, found...)
	}
	if len(quotes) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return quotes, nil
}

// ResolvedPrice is the outcome of one price resolution.
type ResolvedPrice struct {
	UnitPrice  decimal.Decimal
	Provenance models.PriceProvenance
}

// Resolver turns a quote query into a single unit price.
type Resolver struct {
	source PriceSource
	logger *zap.Logger
}

func NewResolver(source PriceSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger.Named("valuation.prices")}
}

// Resolve looks up the quote universe and reduces it to one price. A source
// failure or an empty universe degrades to a zero price flagged as having no
// data; it never fails the valuation.
func (r *Resolver) Resolve(ctx context.Context, q models.QuoteQuery) ResolvedPrice {
	quotes, err := r.source.Lookup(ctx, q)
	if err != nil {
		r.logger.Warn("price lookup failed, valuing with no market data",
			zap.String("category", q.Category),
			zap.Error(err))
		return noData(q.Stat)
	}
	return ResolveFrom(quotes, q)
}

// ResolveFrom reduces an already-fetched quote set. Matching narrows in
// preference order: category always, then breed when the group names one and
// matching quotes exist, then venue the same way. A preference that would
// empty the set is dropped rather than applied.
func ResolveFrom(quotes []models.MarketPriceQuote, q models.QuoteQuery) ResolvedPrice {
	matched := filterQuotes(quotes, func(quote models.MarketPriceQuote) bool {
		return strings.EqualFold(quote.Category, q.Category) && withinAsOf(quote, q)
	})
	if len(matched) == 0 {
		return noData(q.Stat)
	}
	matched = narrow(matched, q.Breed, func(quote models.MarketPriceQuote) string { return quote.Breed })
	matched = narrow(matched, q.Venue, func(quote models.MarketPriceQuote) string { return quote.Venue })
	if q.Region != "" {
		matched = narrow(matched, q.Region, func(quote models.MarketPriceQuote) string { return quote.Region })
	}

	stat := q.Stat
	if !stat.Valid() {
		stat = models.PriceStatCurrent
	}

	pick := matched[0]
	switch stat {
	case models.PriceStatCurrent:
		for _, quote := range matched[1:] {
			if quote.EffectiveDate.After(pick.EffectiveDate) {
				pick = quote
			}
		}
	case models.PriceStatMinimum:
		for _, quote := range matched[1:] {
			if quote.PricePerKg.LessThan(pick.PricePerKg) {
				pick = quote
			}
		}
	case models.PriceStatMaximum:
		for _, quote := range matched[1:] {
			if quote.PricePerKg.GreaterThan(pick.PricePerKg) {
				pick = quote
			}
		}
	case models.PriceStatAverage:
		sum := decimal.Zero
		for _, quote := range matched {
			sum = sum.Add(quote.PricePerKg)
		}
		return ResolvedPrice{
			UnitPrice: sum.Div(decimal.NewFromInt(int64(len(matched)))),
			Provenance: models.PriceProvenance{
				Stat:       stat,
				Venue:      sharedVenue(matched),
				QuoteCount: len(matched),
			},
		}
	}

	return ResolvedPrice{
		UnitPrice: pick.PricePerKg,
		Provenance: models.PriceProvenance{
			Stat:       stat,
			Venue:      pick.Venue,
			Source:     pick.Source,
			QuoteDate:  pick.EffectiveDate,
			QuoteCount: len(matched),
		},
	}
}

func noData(stat models.PriceStat) ResolvedPrice {
	return ResolvedPrice{
		UnitPrice:  decimal.Zero,
		Provenance: models.PriceProvenance{Stat: stat, NoData: true},
	}
}

func withinAsOf(quote models.MarketPriceQuote, q models.QuoteQuery) bool {
	return q.AsOf == nil || !quote.EffectiveDate.After(*q.AsOf)
}

func filterQuotes(quotes []models.MarketPriceQuote, keep func(models.MarketPriceQuote) bool) []models.MarketPriceQuote {
	out := make([]models.MarketPriceQuote, 0, len(quotes))
	for _, q := range quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// narrow keeps only quotes whose field matches want, unless that would leave
// nothing to price against.
func narrow(quotes []models.MarketPriceQuote, want string, field func(models.MarketPriceQuote) string) []models.MarketPriceQuote {
	if want == "" {
		return quotes
	}
	kept := filterQuotes(quotes, func(q models.MarketPriceQuote) bool {
		return strings.EqualFold(field(q), want)
	})
	if len(kept) == 0 {
		return quotes
	}
	return kept
}

func sharedVenue(quotes []models.MarketPriceQuote) string {
	venue := quotes[0].Venue
	for _, q := range quotes[1:] {
		if !strings.EqualFold(q.Venue, venue) {
			return ""
		}
	}
	return venue
}
