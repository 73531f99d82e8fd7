package herd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/valuation"
)

type memStore struct {
	groups map[string]models.LivestockGroup
	order  []string
}

func newMemStore() *memStore {
	return &memStore{groups: map[string]models.LivestockGroup{}}
}

func (m *memStore) InsertGroup(_ context.Context, g models.LivestockGroup) error {
	m.groups[g.ID] = g
	m.order = append(m.order, g.ID)
	return nil
}

func (m *memStore) UpdateGroup(_ context.Context, g models.LivestockGroup) error {
	if _, ok := m.groups[g.ID]; !ok {
		return errMissing
	}
	m.groups[g.ID] = g
	return nil
}

func (m *memStore) GetGroup(_ context.Context, id string) (models.LivestockGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return models.LivestockGroup{}, errMissing
	}
	return g, nil
}

func (m *memStore) ListActive(_ context.Context) ([]models.LivestockGroup, error) {
	var out []models.LivestockGroup
	for _, id := range m.order {
		if g := m.groups[id]; !g.IsSold {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(_ context.Context) ([]models.LivestockGroup, error) {
	var out []models.LivestockGroup
	for _, id := range m.order {
		out = append(out, m.groups[id])
	}
	return out, nil
}

func (m *memStore) MarkSold(_ context.Context, id string, soldAt time.Time, pricePerKg decimal.Decimal) error {
	g, ok := m.groups[id]
	if !ok {
		return errMissing
	}
	g.IsSold = true
	g.SoldAt = &soldAt
	g.SalePricePerKg = pricePerKg
	m.groups[id] = g
	return nil
}

var errMissing = errors.New("not found")

type staticPrefs struct{ prefs models.Preferences }

func (s staticPrefs) Preferences(_ context.Context) (models.Preferences, error) {
	return s.prefs, nil
}

type noQuotes struct{}

func (noQuotes) Lookup(_ context.Context, _ models.QuoteQuery) ([]models.MarketPriceQuote, error) {
	return nil, nil
}

func newTestService(prefs models.Preferences) (*Service, *memStore) {
	store := newMemStore()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	svc := NewService(store, staticPrefs{prefs}, valuation.NewEvaluator(noQuotes{}, nil), nil).
		WithClock(func() time.Time { return now })
	return svc, store
}

func validInput() CreateGroupInput {
	return CreateGroupInput{
		Species:         models.SpeciesCattle,
		Breed:           "Angus",
		Category:        "Cows",
		HeadCount:       50,
		InitialWeightKg: 550,
		ReferenceDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	svc, store := newTestService(models.Preferences{})

	g, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), g.CreatedAt)
	assert.Contains(t, store.groups, g.ID)
}

func TestCreate_BreederWithoutRateInheritsProfileDefault(t *testing.T) {
	prefs := models.Preferences{Costs: models.CostProfile{DefaultCalvingRate: 0.82}}
	svc, _ := newTestService(prefs)

	in := validInput()
	in.IsBreeder = true
	in.IsPregnant = true

	g, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.InDelta(t, 0.82, g.CalvingRate, 1e-9)
}

func TestCreate_ExplicitZeroRateIsKept(t *testing.T) {
	prefs := models.Preferences{Costs: models.CostProfile{DefaultCalvingRate: 0.82}}
	svc, _ := newTestService(prefs)

	zero := 0.0
	in := validInput()
	in.IsBreeder = true
	in.CalvingRate = &zero

	g, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Zero(t, g.CalvingRate)
}

func TestCreate_RejectsInvalidGroups(t *testing.T) {
	svc, store := newTestService(models.Preferences{})

	in := validInput()
	in.InitialWeightKg = 0

	_, err := svc.Create(context.Background(), in)

	assert.Error(t, err)
	assert.Empty(t, store.groups)
}

func TestUpdate_ReplacesDetailsKeepsIdentity(t *testing.T) {
	svc, _ := newTestService(models.Preferences{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Category = "Heifers"
	in.InitialWeightKg = 480

	updated, err := svc.Update(context.Background(), created.ID, in)

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Heifers", updated.Category)
	assert.InDelta(t, 480.0, updated.InitialWeightKg, 1e-9)
}

func TestUpdate_NilRateKeepsStoredRate(t *testing.T) {
	svc, _ := newTestService(models.Preferences{})

	rate := 0.9
	in := validInput()
	in.IsBreeder = true
	in.CalvingRate = &rate
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	next := validInput()
	next.IsBreeder = true

	updated, err := svc.Update(context.Background(), created.ID, next)

	require.NoError(t, err)
	assert.InDelta(t, 0.9, updated.CalvingRate, 1e-9)
}

func TestUpdate_RejoiningDeliveredMotherRestartsCycle(t *testing.T) {
	svc, store := newTestService(models.Preferences{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	delivered := store.groups[created.ID]
	processed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	delivered.CalvingProcessedDate = &processed
	store.groups[created.ID] = delivered

	in := validInput()
	in.IsBreeder = true
	in.IsPregnant = true

	updated, err := svc.Update(context.Background(), created.ID, in)

	require.NoError(t, err)
	assert.Nil(t, updated.CalvingProcessedDate)
}

func TestUpdate_RefusesSoldGroups(t *testing.T) {
	svc, _ := newTestService(models.Preferences{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Sell(context.Background(), created.ID, nil, decimal.Zero)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, validInput())

	assert.ErrorIs(t, err, ErrAlreadySold)
}

func TestSell_MarksSoldOnce(t *testing.T) {
	svc, store := newTestService(models.Preferences{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	soldAt := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	sold, err := svc.Sell(context.Background(), created.ID, &soldAt, decimal.RequireFromString("3.10"))

	require.NoError(t, err)
	assert.True(t, sold.IsSold)
	require.NotNil(t, sold.SoldAt)
	assert.Equal(t, soldAt, *sold.SoldAt)
	assert.Equal(t, "3.1", sold.SalePricePerKg.String())

	_, err = svc.Sell(context.Background(), created.ID, nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrAlreadySold)

	active, err := store.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestValuation_UsesAsOfWhenGiven(t *testing.T) {
	svc, _ := newTestService(models.Preferences{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Valuation(context.Background(), created.ID, &asOf)

	require.NoError(t, err)
	assert.Equal(t, asOf, res.AsOf)
	assert.Equal(t, created.ID, res.GroupID)
}

func TestList_FiltersSoldByDefault(t *testing.T) {
	svc, _ := newTestService(models.Preferences{})
	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Sell(context.Background(), first.ID, nil, decimal.Zero)
	require.NoError(t, err)

	active, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	all, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
