// Package calving applies the gestation-completion transition: pregnant
// groups past their due date deliver, spawning one juvenile group per calf
// and retiring the mother's pregnancy exactly once.
package calving

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/valuation"
)

// ErrAlreadyProcessed reports that another run won the delivery race for a
// mother group. It is a skip signal, not a failure.
var ErrAlreadyProcessed = errors.New("calving already processed for group")

// Store persists a delivery atomically.
type Store interface {
	// CommitCalving applies the mother update and inserts her calves in one
	// transaction. The mother write must be conditional on her
	// calving-processed date still being unset and return
	// ErrAlreadyProcessed when that compare-and-set loses.
	CommitCalving(ctx context.Context, mother models.LivestockGroup, calves []models.LivestockGroup) error
}

const defaultWorkers = 4

// Processor scans breeder groups and delivers every gestation past its due
// date.
type Processor struct {
	store   Store
	logger  *zap.Logger
	workers int
	now     func() time.Time
	newID   func() string
}

func NewProcessor(store Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:   store,
		logger:  logger.Named("calving"),
		workers: defaultWorkers,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock overrides the wall clock, for tests and backdated runs.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// WithWorkers bounds the delivery fan-out.
func (p *Processor) WithWorkers(n int) *Processor {
	if n > 0 {
		p.workers = n
	}
	return p
}

// Process delivers every due group in the slice. Failures are isolated per
// mother: the scan continues past a failed delivery and the joined error is
// returned alongside the events that did commit.
func (p *Processor) Process(ctx context.Context, groups []models.LivestockGroup, prefs models.Preferences) ([]models.CalvingEvent, error) {
	now := p.now()

	var (
		mu     sync.Mutex
		events []models.CalvingEvent
		errs   []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, group := range groups {
		if !dueForDelivery(group, now) {
			continue
		}
		group := group
		g.Go(func() error {
			event, err := p.deliver(ctx, group, prefs, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrAlreadyProcessed):
				p.logger.Debug("delivery already applied, skipping",
					zap.String("group_id", group.ID))
			case err != nil:
				p.logger.Error("delivery failed, continuing scan",
					zap.String("group_id", group.ID),
					zap.Error(err))
				errs = append(errs, err)
			default:
				events = append(events, event)
			}
			// Never abort the errgroup: per-mother isolation.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return events, errors.Join(errs...)
}

func dueForDelivery(g models.LivestockGroup, now time.Time) bool {
	if !g.IsBreeder || !g.IsPregnant || g.IsDelivered() || g.IsSold {
		return false
	}
	return !now.Before(g.CalvingDate())
}

func (p *Processor) deliver(ctx context.Context, mother models.LivestockGroup, prefs models.Preferences, now time.Time) (models.CalvingEvent, error) {
	calvingDate := mother.CalvingDate()
	count := calfCount(mother.HeadCount, mother.CalvingRate)
	calves := p.buildCalves(mother, prefs, calvingDate, count, now)

	delivered := mother
	delivered.IsPregnant = false
	delivered.CalvingProcessedDate = &calvingDate
	delivered.UpdatedAt = now

	if err := p.store.CommitCalving(ctx, delivered, calves); err != nil {
		return models.CalvingEvent{}, err
	}

	event := models.CalvingEvent{
		MotherID:    mother.ID,
		Species:     mother.Species,
		CalvingDate: calvingDate,
		CalfCount:   count,
		CalfIDs:     make([]string, 0, len(calves)),
	}
	for _, c := range calves {
		event.CalfIDs = append(event.CalfIDs, c.ID)
	}
	p.logger.Info("gestation completed",
		zap.String("group_id", mother.ID),
		zap.String("species", string(mother.Species)),
		zap.Time("calving_date", calvingDate),
		zap.Int("calves", count))
	return event, nil
}

// calfCount rounds head x rate half away from zero, so 3 cows at 50% deliver
// 2 calves.
func calfCount(headCount int, rate float64) int {
	if headCount <= 0 || rate <= 0 {
		return 0
	}
	n := decimal.NewFromInt(int64(headCount)).
		Mul(decimal.NewFromFloat(rate)).
		Round(0).
		IntPart()
	return int(n)
}

// buildCalves creates one single-head juvenile group per calf, backdated to
// the calving date so later valuations grow them from birth, not from the
// run that created them.
func (p *Processor) buildCalves(mother models.LivestockGroup, prefs models.Preferences, calvingDate time.Time, count int, now time.Time) []models.LivestockGroup {
	motherWeight := valuation.ProjectedWeightKg(mother.InitialWeightKg, mother.DailyGainKg, mother.ReferenceDate, calvingDate)
	birthWeight := valuation.BirthWeightKg(mother.Species, motherWeight, prefs.Costs.PigBirthWeightRatio).InexactFloat64()

	notes := fmt.Sprintf("Born from group %s on %s", mother.ID, calvingDate.Format("2006-01-02"))
	calves := make([]models.LivestockGroup, 0, count)
	for i := 0; i < count; i++ {
		motherID := mother.ID
		born := calvingDate
		calves = append(calves, models.LivestockGroup{
			ID:              p.newID(),
			Species:         mother.Species,
			Breed:           mother.Breed,
			Category:        mother.Species.JuvenileCategory(),
			HeadCount:       1,
			InitialWeightKg: birthWeight,
			DailyGainKg:     mother.Species.JuvenileDailyGainKg(),
			BirthDate:       &born,
			ReferenceDate:   calvingDate,
			SaleyardVenue:   mother.SaleyardVenue,
			SourceGroupID:   &motherID,
			Notes:           notes,
			CreatedAt:       calvingDate,
			UpdatedAt:       now,
		})
	}
	return calves
}
