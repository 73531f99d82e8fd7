package valuation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// Evaluator composes the calculators into a full valuation of one group.
type Evaluator struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewEvaluator(source PriceSource, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		resolver: NewResolver(source, logger),
		logger:   logger.Named("valuation.evaluator"),
	}
}

// Evaluate values one group at asOf under the given preferences. Sold groups
// return a zero-valued result flagged sold. Price gaps degrade to zero-price
// components rather than errors; the only failure mode is a cancelled
// context.
func (e *Evaluator) Evaluate(ctx context.Context, g models.LivestockGroup, prefs models.Preferences, asOf time.Time) (models.ValuationResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ValuationResult{}, err
	}

	res := models.ValuationResult{
		GroupID:   g.ID,
		Category:  g.Category,
		Species:   g.Species,
		AsOf:      asOf,
		HeadCount: g.HeadCount,
	}
	zeroOut(&res)

	if g.IsSold {
		res.Sold = true
		return res, nil
	}

	g.Sanitize()
	weight := ProjectedWeightKg(g.InitialWeightKg, g.DailyGainKg, g.ReferenceDate, asOf)
	res.ProjectedWeightKg = weight

	price := e.resolver.Resolve(ctx, models.QuoteQuery{
		Category: g.Category,
		Breed:    g.Breed,
		Venue:    g.SaleyardVenue,
		Region:   prefs.Region,
		Stat:     prefs.Stat,
		AsOf:     &asOf,
	})
	res.UnitPrice = price.UnitPrice
	res.PriceProvenance = price.Provenance
	res.PriceLabel = price.Provenance.Label()

	res.PhysicalValue = decimal.NewFromInt(int64(g.HeadCount)).
		Mul(decimal.NewFromFloat(weight)).
		Mul(price.UnitPrice)

	elapsed := WholeDaysBetween(g.ReferenceDate, asOf)
	costs := CarryCosts(prefs.Costs, g.HeadCount, elapsed, res.PhysicalValue, prefs.FreightDistanceKm)
	res.MortalityDeduction = costs.MortalityDeduction
	res.CostToCarry = costs.CostToCarry

	if g.IsBreeder && g.IsPregnant && !g.IsDelivered() {
		juvenile := e.resolver.Resolve(ctx, models.QuoteQuery{
			Category: g.Species.JuvenileCategory(),
			Breed:    g.Breed,
			Venue:    g.SaleyardVenue,
			Region:   prefs.Region,
			Stat:     prefs.Stat,
			AsOf:     &asOf,
		})
		res.BreedingAccrual = BreedingAccrual(g, weight, juvenile.UnitPrice, asOf, prefs.Costs.PigBirthWeightRatio)
	}

	res.NetValue = res.PhysicalValue.
		Sub(res.MortalityDeduction).
		Add(res.BreedingAccrual).
		Sub(res.CostToCarry)

	if price.Provenance.NoData {
		e.logger.Debug("group valued without market data",
			zap.String("group_id", g.ID),
			zap.String("category", g.Category))
	}
	return res, nil
}

// InitialValue prices the group at its initial weight with its current unit
// price resolution, giving the acquisition-day worth used as the portfolio
// baseline.
func (e *Evaluator) InitialValue(ctx context.Context, g models.LivestockGroup, prefs models.Preferences, asOf time.Time) decimal.Decimal {
	if g.IsSold {
		return decimal.Zero
	}
	g.Sanitize()
	price := e.resolver.Resolve(ctx, models.QuoteQuery{
		Category: g.Category,
		Breed:    g.Breed,
		Venue:    g.SaleyardVenue,
		Region:   prefs.Region,
		Stat:     prefs.Stat,
		AsOf:     &asOf,
	})
	return decimal.NewFromInt(int64(g.HeadCount)).
		Mul(decimal.NewFromFloat(g.InitialWeightKg)).
		Mul(price.UnitPrice)
}

func zeroOut(res *models.ValuationResult) {
	res.UnitPrice = decimal.Zero
	res.PhysicalValue = decimal.Zero
	res.MortalityDeduction = decimal.Zero
	res.BreedingAccrual = decimal.Zero
	res.CostToCarry = decimal.Zero
	res.NetValue = decimal.Zero
}
