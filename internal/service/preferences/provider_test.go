package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

type fakeCostStore struct {
	profile models.CostProfile
	err     error
	saved   *models.CostProfile
}

func (f *fakeCostStore) ActiveCostProfile(_ context.Context) (models.CostProfile, error) {
	return f.profile, f.err
}

func (f *fakeCostStore) SaveCostProfile(_ context.Context, p models.CostProfile) (models.CostProfile, error) {
	if p.ID == "" {
		p.ID = "profile-1"
	}
	f.saved = &p
	return p, nil
}

func defaults() models.CostProfile {
	return models.CostProfile{
		AgistmentMonthly:    12,
		FeedMonthly:         18,
		VetMonthly:          4,
		FreightPerKm:        3,
		AnnualMortalityRate: 0.03,
		DefaultCalvingRate:  0.80,
	}
}

func TestPreferences_UsesStoredProfile(t *testing.T) {
	store := &fakeCostStore{profile: models.CostProfile{ID: "stored", AgistmentMonthly: 99}}
	p := NewProvider(store, defaults(), models.PriceStatAverage, "NSW", 120, nil)

	prefs, err := p.Preferences(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "stored", prefs.Costs.ID)
	assert.InDelta(t, 99.0, prefs.Costs.AgistmentMonthly, 1e-9)
	assert.Equal(t, models.PriceStatAverage, prefs.Stat)
	assert.Equal(t, "NSW", prefs.Region)
	assert.InDelta(t, 120.0, prefs.FreightDistanceKm, 1e-9)
}

func TestPreferences_FallsBackToDefaults(t *testing.T) {
	store := &fakeCostStore{err: errors.New("no profile stored")}
	p := NewProvider(store, defaults(), models.PriceStatCurrent, "", 0, nil)

	prefs, err := p.Preferences(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 12.0, prefs.Costs.AgistmentMonthly, 1e-9)
	assert.InDelta(t, 0.80, prefs.Costs.DefaultCalvingRate, 1e-9)
}

func TestPreferences_InvalidStatDefaultsToCurrent(t *testing.T) {
	p := NewProvider(&fakeCostStore{}, defaults(), models.PriceStat("median"), "", 0, nil)

	prefs, err := p.Preferences(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.PriceStatCurrent, prefs.Stat)
}

func TestUpdateProfile_SanitisesBeforeSaving(t *testing.T) {
	store := &fakeCostStore{}
	p := NewProvider(store, defaults(), models.PriceStatCurrent, "", 0, nil)

	saved, err := p.UpdateProfile(context.Background(), models.CostProfile{
		AgistmentMonthly:    -5,
		AnnualMortalityRate: 1.4,
	})

	require.NoError(t, err)
	assert.Zero(t, saved.AgistmentMonthly)
	assert.InDelta(t, 1.0, saved.AnnualMortalityRate, 1e-9)
	require.NotNil(t, store.saved)
}
