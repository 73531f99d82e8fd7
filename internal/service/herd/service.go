// Package herd manages the livestock group lifecycle: creation, listing,
// single-group valuation and sale.
package herd

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/valuation"
)

// ErrAlreadySold reports a sale applied to a group that has already left the
// books.
var ErrAlreadySold = errors.New("group is already sold")

// GroupStore is the persistence surface the herd service needs.
type GroupStore interface {
	InsertGroup(ctx context.Context, g models.LivestockGroup) error
	UpdateGroup(ctx context.Context, g models.LivestockGroup) error
	GetGroup(ctx context.Context, id string) (models.LivestockGroup, error)
	ListActive(ctx context.Context) ([]models.LivestockGroup, error)
	ListAll(ctx context.Context) ([]models.LivestockGroup, error)
	MarkSold(ctx context.Context, id string, soldAt time.Time, pricePerKg decimal.Decimal) error
}

// PreferencesSource resolves the active valuation preferences.
type PreferencesSource interface {
	Preferences(ctx context.Context) (models.Preferences, error)
}

// Service owns group lifecycle operations.
type Service struct {
	store     GroupStore
	prefs     PreferencesSource
	evaluator *valuation.Evaluator

	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(store GroupStore, prefs PreferencesSource, evaluator *valuation.Evaluator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		prefs:     prefs,
		evaluator: evaluator,
		logger:    logger.Named("herd"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock overrides the wall clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateGroupInput carries a new group's fields. Optional fields are
// pointers so an omitted calving rate can be told apart from an explicit
// zero.
type CreateGroupInput struct {
	Species         models.Species
	Breed           string
	Sex             string
	Category        string
	HeadCount       int
	InitialWeightKg float64
	DailyGainKg     float64
	AgeMonths       *int
	BirthDate       *time.Time
	ReferenceDate   time.Time
	IsBreeder       bool
	IsPregnant      bool
	CalvingRate     *float64
	JoiningStart    *time.Time
	JoiningEnd      *time.Time
	SaleyardVenue   string
	Notes           string
}

// Create validates and stores a new livestock group. Breeder groups created
// without an explicit calving rate inherit the profile default.
func (s *Service) Create(ctx context.Context, in CreateGroupInput) (models.LivestockGroup, error) {
	now := s.now()

	g := models.LivestockGroup{
		ID:              s.newID(),
		Species:         in.Species,
		Breed:           in.Breed,
		Sex:             in.Sex,
		Category:        in.Category,
		HeadCount:       in.HeadCount,
		InitialWeightKg: in.InitialWeightKg,
		DailyGainKg:     in.DailyGainKg,
		AgeMonths:       in.AgeMonths,
		BirthDate:       in.BirthDate,
		ReferenceDate:   in.ReferenceDate,
		IsBreeder:       in.IsBreeder,
		IsPregnant:      in.IsPregnant,
		JoiningStart:    in.JoiningStart,
		JoiningEnd:      in.JoiningEnd,
		SaleyardVenue:   in.SaleyardVenue,
		SalePricePerKg:  decimal.Zero,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if g.ReferenceDate.IsZero() {
		g.ReferenceDate = now
	}

	if in.CalvingRate != nil {
		g.CalvingRate = *in.CalvingRate
	} else if g.IsBreeder {
		prefs, err := s.prefs.Preferences(ctx)
		if err != nil {
			return models.LivestockGroup{}, err
		}
		g.CalvingRate = prefs.Costs.DefaultCalvingRate
	}

	g.Sanitize()
	if err := g.Validate(); err != nil {
		return models.LivestockGroup{}, err
	}
	if err := s.store.InsertGroup(ctx, g); err != nil {
		return models.LivestockGroup{}, err
	}

	s.logger.Info("livestock group created",
		zap.String("group_id", g.ID),
		zap.String("species", string(g.Species)),
		zap.String("category", g.Category),
		zap.Int("head", g.HeadCount))
	return g, nil
}

// Update replaces an editable group's details. Identity, audit trail and
// sale state are kept; a nil calving rate keeps the stored rate. Marking a
// delivered mother pregnant again opens a new gestation cycle.
func (s *Service) Update(ctx context.Context, id string, in CreateGroupInput) (models.LivestockGroup, error) {
	existing, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return models.LivestockGroup{}, err
	}
	if existing.IsSold {
		return models.LivestockGroup{}, ErrAlreadySold
	}

	g := existing
	g.Species = in.Species
	g.Breed = in.Breed
	g.Sex = in.Sex
	g.Category = in.Category
	g.HeadCount = in.HeadCount
	g.InitialWeightKg = in.InitialWeightKg
	g.DailyGainKg = in.DailyGainKg
	g.AgeMonths = in.AgeMonths
	g.BirthDate = in.BirthDate
	g.IsBreeder = in.IsBreeder
	g.IsPregnant = in.IsPregnant
	g.JoiningStart = in.JoiningStart
	g.JoiningEnd = in.JoiningEnd
	g.SaleyardVenue = in.SaleyardVenue
	g.Notes = in.Notes
	g.UpdatedAt = s.now()
	if !in.ReferenceDate.IsZero() {
		g.ReferenceDate = in.ReferenceDate
	}
	if in.CalvingRate != nil {
		g.CalvingRate = *in.CalvingRate
	}
	if in.IsPregnant && existing.IsDelivered() {
		g.CalvingProcessedDate = nil
	}

	g.Sanitize()
	if err := g.Validate(); err != nil {
		return models.LivestockGroup{}, err
	}
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		return models.LivestockGroup{}, err
	}

	s.logger.Info("livestock group updated",
		zap.String("group_id", g.ID),
		zap.String("category", g.Category),
		zap.Int("head", g.HeadCount))
	return g, nil
}

// Get fetches one group.
func (s *Service) Get(ctx context.Context, id string) (models.LivestockGroup, error) {
	return s.store.GetGroup(ctx, id)
}

// List returns the herd, optionally including sold groups.
func (s *Service) List(ctx context.Context, includeSold bool) ([]models.LivestockGroup, error) {
	if includeSold {
		return s.store.ListAll(ctx)
	}
	return s.store.ListActive(ctx)
}

// Valuation values one group, at asOf when given or now otherwise.
func (s *Service) Valuation(ctx context.Context, id string, asOf *time.Time) (models.ValuationResult, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return models.ValuationResult{}, err
	}
	prefs, err := s.prefs.Preferences(ctx)
	if err != nil {
		return models.ValuationResult{}, err
	}

	at := s.now()
	if asOf != nil {
		at = *asOf
	}
	return s.evaluator.Evaluate(ctx, g, prefs, at)
}

// Sell flags a group as sold so it stops being valued. The recorded price is
// optional.
func (s *Service) Sell(ctx context.Context, id string, soldAt *time.Time, pricePerKg decimal.Decimal) (models.LivestockGroup, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return models.LivestockGroup{}, err
	}
	if g.IsSold {
		return models.LivestockGroup{}, ErrAlreadySold
	}

	at := s.now()
	if soldAt != nil {
		at = *soldAt
	}
	if err := s.store.MarkSold(ctx, id, at, pricePerKg); err != nil {
		return models.LivestockGroup{}, err
	}

	s.logger.Info("livestock group sold",
		zap.String("group_id", id),
		zap.Time("sold_at", at))
	return s.store.GetGroup(ctx, id)
}
