// Package preferences resolves the read-only valuation preferences injected
// into every calculation: the active cost profile plus the owner's market
// settings.
package preferences

import (
	"context"

	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// CostProfileStore persists cost profiles.
type CostProfileStore interface {
	ActiveCostProfile(ctx context.Context) (models.CostProfile, error)
	SaveCostProfile(ctx context.Context, p models.CostProfile) (models.CostProfile, error)
}

// Provider assembles Preferences from the stored cost profile and the
// configured market settings, falling back to configured defaults when no
// profile has been stored.
type Provider struct {
	store    CostProfileStore
	defaults models.CostProfile

	stat      models.PriceStat
	region    string
	freightKm float64

	logger *zap.Logger
}

func NewProvider(store CostProfileStore, defaults models.CostProfile, stat models.PriceStat, region string, freightKm float64, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !stat.Valid() {
		stat = models.PriceStatCurrent
	}
	defaults.Sanitize()
	return &Provider{
		store:     store,
		defaults:  defaults,
		stat:      stat,
		region:    region,
		freightKm: freightKm,
		logger:    logger.Named("preferences"),
	}
}

// Preferences returns the active preferences. A missing or unreadable stored
// profile degrades to the configured defaults so valuation never stalls on
// preference plumbing.
func (p *Provider) Preferences(ctx context.Context) (models.Preferences, error) {
	costs := p.defaults
	if p.store != nil {
		stored, err := p.store.ActiveCostProfile(ctx)
		if err != nil {
			p.logger.Debug("no stored cost profile, using configured defaults", zap.Error(err))
		} else {
			stored.Sanitize()
			costs = stored
		}
	}
	return models.Preferences{
		Costs:             costs,
		Stat:              p.stat,
		Region:            p.region,
		FreightDistanceKm: p.freightKm,
	}, nil
}

// ActiveProfile returns the stored cost profile, or the defaults when none
// exists.
func (p *Provider) ActiveProfile(ctx context.Context) (models.CostProfile, error) {
	prefs, err := p.Preferences(ctx)
	if err != nil {
		return models.CostProfile{}, err
	}
	return prefs.Costs, nil
}

// UpdateProfile sanitises and stores a profile, making it active.
func (p *Provider) UpdateProfile(ctx context.Context, profile models.CostProfile) (models.CostProfile, error) {
	profile.Sanitize()
	saved, err := p.store.SaveCostProfile(ctx, profile)
	if err != nil {
		return models.CostProfile{}, err
	}
	p.logger.Info("cost profile updated", zap.String("profile_id", saved.ID))
	return saved, nil
}
