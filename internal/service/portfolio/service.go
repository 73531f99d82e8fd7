// Package portfolio aggregates per-group valuations into the herd-wide view:
// current worth, category breakdown, day movement and the history curve.
package portfolio

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/valuation"
)

// GroupSource lists the groups still on the books.
type GroupSource interface {
	ListActive(ctx context.Context) ([]models.LivestockGroup, error)
}

// PreferencesSource resolves the active cost profile and market preferences.
type PreferencesSource interface {
	Preferences(ctx context.Context) (models.Preferences, error)
}

// CalvingRunner applies due gestation transitions before a valuation pass.
type CalvingRunner interface {
	Process(ctx context.Context, groups []models.LivestockGroup, prefs models.Preferences) ([]models.CalvingEvent, error)
}

// SnapshotSource reads persisted portfolio points, for day-change comparison
// and the stored history curve.
type SnapshotSource interface {
	LatestBefore(ctx context.Context, date time.Time) (models.ValuationSnapshot, error)
	ListSnapshotsSince(ctx context.Context, from time.Time) ([]models.ValuationSnapshot, error)
}

const (
	defaultWorkers      = 8
	defaultLookbackDays = 1095
	maxLookbackDays     = 3650
)

// Service values the whole portfolio.
type Service struct {
	groups    GroupSource
	prefs     PreferencesSource
	evaluator *valuation.Evaluator
	calving   CalvingRunner
	snapshots SnapshotSource

	workers      int
	lookbackDays int
	logger       *zap.Logger
	now          func() time.Time
}

type Option func(*Service)

// WithWorkers bounds the per-group valuation fan-out.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLookback sets the default history depth in days.
func WithLookback(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.lookbackDays = days
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(groups GroupSource, prefs PreferencesSource, evaluator *valuation.Evaluator, calving CalvingRunner, snapshots SnapshotSource, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		groups:       groups,
		prefs:        prefs,
		evaluator:    evaluator,
		calving:      calving,
		snapshots:    snapshots,
		workers:      defaultWorkers,
		lookbackDays: defaultLookbackDays,
		logger:       logger.Named("portfolio"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs due calving transitions and then values the portfolio as of
// now. Calving failures are logged but never block the valuation pass.
func (s *Service) Refresh(ctx context.Context) (models.PortfolioSnapshot, error) {
	now := s.now()
	prefs, err := s.prefs.Preferences(ctx)
	if err != nil {
		return models.PortfolioSnapshot{}, err
	}

	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return models.PortfolioSnapshot{}, err
	}

	if s.calving != nil {
		events, err := s.calving.Process(ctx, groups, prefs)
		if err != nil {
			s.logger.Warn("calving pass finished with failures", zap.Error(err))
		}
		if len(events) > 0 {
			s.logger.Info("calving transitions applied", zap.Int("events", len(events)))
			// Deliveries changed the herd; value the post-transition state.
			groups, err = s.groups.ListActive(ctx)
			if err != nil {
				return models.PortfolioSnapshot{}, err
			}
		}
	}

	snap, err := s.Aggregate(ctx, groups, prefs, now)
	if err != nil {
		return models.PortfolioSnapshot{}, err
	}

	if s.snapshots != nil {
		prev, err := s.snapshots.LatestBefore(ctx, dateOnly(now))
		if err == nil {
			snap.PreviousDayValue = prev.TotalValue
			snap.DayChange = snap.TotalValue.Sub(prev.TotalValue)
		}
	}
	return snap, nil
}

// RunCalving applies due transitions without valuing anything.
func (s *Service) RunCalving(ctx context.Context) ([]models.CalvingEvent, error) {
	prefs, err := s.prefs.Preferences(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.calving.Process(ctx, groups, prefs)
}

// Aggregate values every group at asOf and folds the results into one
// snapshot. Groups are valued concurrently; a failed group is reported and
// excluded rather than sinking the run.
func (s *Service) Aggregate(ctx context.Context, groups []models.LivestockGroup, prefs models.Preferences, asOf time.Time) (models.PortfolioSnapshot, error) {
	type outcome struct {
		result  models.ValuationResult
		initial decimal.Decimal
		err     error
	}
	outcomes := make([]outcome, len(groups))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			res, err := s.evaluator.Evaluate(egCtx, g, prefs, asOf)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return nil
			}
			outcomes[i] = outcome{
				result:  res,
				initial: s.evaluator.InitialValue(egCtx, g, prefs, asOf),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.PortfolioSnapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.PortfolioSnapshot{}, err
	}

	snap := models.PortfolioSnapshot{
		Date:             asOf,
		TotalValue:       decimal.Zero,
		BreedingAccrual:  decimal.Zero,
		CostToCarry:      decimal.Zero,
		InitialValue:     decimal.Zero,
		PreviousDayValue: decimal.Zero,
		DayChange:        decimal.Zero,
	}
	byCategory := map[string]*models.CategoryTotal{}

	for i, o := range outcomes {
		if o.err != nil {
			if ctx.Err() != nil {
				return models.PortfolioSnapshot{}, ctx.Err()
			}
			s.logger.Warn("group valuation failed, excluding from aggregate",
				zap.String("group_id", groups[i].ID),
				zap.Error(o.err))
			snap.GroupErrors = append(snap.GroupErrors, models.GroupError{
				GroupID: groups[i].ID,
				Reason:  o.err.Error(),
			})
			continue
		}
		res := o.result
		if res.Sold {
			continue
		}
		snap.TotalValue = snap.TotalValue.Add(res.NetValue)
		snap.BreedingAccrual = snap.BreedingAccrual.Add(res.BreedingAccrual)
		snap.CostToCarry = snap.CostToCarry.Add(res.CostToCarry)
		snap.InitialValue = snap.InitialValue.Add(o.initial)
		snap.HeadCount += res.HeadCount
		snap.GroupCount++

		key := strings.ToLower(res.Category)
		ct, ok := byCategory[key]
		if !ok {
			ct = &models.CategoryTotal{Category: res.Category, Value: decimal.Zero}
			byCategory[key] = ct
		}
		ct.HeadCount += res.HeadCount
		ct.Value = ct.Value.Add(res.NetValue)
	}

	snap.Categories = make([]models.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		if snap.TotalValue.IsPositive() {
			ct.Percent = ct.Value.Div(snap.TotalValue).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		snap.Categories = append(snap.Categories, *ct)
	}
	sort.Slice(snap.Categories, func(i, j int) bool {
		if !snap.Categories[i].Value.Equal(snap.Categories[j].Value) {
			return snap.Categories[i].Value.GreaterThan(snap.Categories[j].Value)
		}
		return snap.Categories[i].Category < snap.Categories[j].Category
	})
	return snap, nil
}

// History rebuilds the portfolio curve by revaluing today's herd at each
// ladder date. Groups created after a point's date are excluded from it.
func (s *Service) History(ctx context.Context, lookbackDays int) ([]models.ValuationSnapshot, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.lookbackDays
	}
	if lookbackDays > maxLookbackDays {
		lookbackDays = maxLookbackDays
	}

	prefs, err := s.prefs.Preferences(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	dates := historyDates(s.now(), lookbackDays)
	points := make([]models.ValuationSnapshot, len(dates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, d := range dates {
		i, d := i, d
		eg.Go(func() error {
			existing := groupsExistingAt(groups, d)
			snap, err := s.Aggregate(egCtx, existing, prefs, d)
			if err != nil {
				return err
			}
			points[i] = models.ValuationSnapshot{
				Date:            d,
				TotalValue:      snap.TotalValue,
				Categories:      snap.Categories,
				BreedingAccrual: snap.BreedingAccrual,
				CostToCarry:     snap.CostToCarry,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// StoredHistory returns the persisted nightly snapshots within the lookback:
// the cheap read path fed by the daily job, as opposed to History which
// recomputes every point.
func (s *Service) StoredHistory(ctx context.Context, lookbackDays int) ([]models.ValuationSnapshot, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.lookbackDays
	}
	if lookbackDays > maxLookbackDays {
		lookbackDays = maxLookbackDays
	}
	if s.snapshots == nil {
		return nil, nil
	}
	from := dateOnly(s.now()).AddDate(0, 0, -lookbackDays)
	return s.snapshots.ListSnapshotsSince(ctx, from)
}

func groupsExistingAt(groups []models.LivestockGroup, date time.Time) []models.LivestockGroup {
	out := make([]models.LivestockGroup, 0, len(groups))
	for _, g := range groups {
		if !g.CreatedAt.After(date) {
			out = append(out, g)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
