// Package pricesync pulls liveweight quotes from the market feed into the
// local quote store so valuations keep working when the feed is unreachable.
package pricesync

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/pkg/clients/marketdata"
)

const feedDateLayout = "2006-01-02"

// QuoteWriter stores fetched quotes.
type QuoteWriter interface {
	UpsertQuote(ctx context.Context, q models.MarketPriceQuote) error
}

// Service refreshes the stored quote universe from the market feed.
type Service struct {
	feed       marketdata.Client
	store      QuoteWriter
	categories []string
	logger     *zap.Logger
}

// Result summarises one refresh pass.
type Result struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

func NewService(feed marketdata.Client, store QuoteWriter, categories []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		feed:       feed,
		store:      store,
		categories: categories,
		logger:     logger.Named("pricesync"),
	}
}

// Sync fetches the feed and upserts every well-formed quote. Malformed rows
// and per-quote write failures are counted and skipped; only a dead feed
// fails the pass.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	quotes, err := s.feed.FetchQuotes(ctx, s.categories)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch market feed: %w", err)
	}

	result := Result{Fetched: len(quotes)}
	for _, raw := range quotes {
		quote, err := s.toQuote(raw)
		if err != nil {
			s.logger.Warn("skipping malformed feed quote",
				zap.String("category", raw.Category),
				zap.Error(err))
			result.Skipped++
			continue
		}
		if err := s.store.UpsertQuote(ctx, quote); err != nil {
			s.logger.Warn("failed to store feed quote",
				zap.String("category", quote.Category),
				zap.Error(err))
			result.Skipped++
			continue
		}
		result.Upserted++
	}

	s.logger.Info("market feed refreshed",
		zap.Int("fetched", result.Fetched),
		zap.Int("upserted", result.Upserted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *Service) toQuote(raw marketdata.Quote) (models.MarketPriceQuote, error) {
	if raw.Category == "" {
		return models.MarketPriceQuote{}, fmt.Errorf("quote has no category")
	}
	if raw.PricePerKg <= 0 {
		return models.MarketPriceQuote{}, fmt.Errorf("quote price %v is not positive", raw.PricePerKg)
	}
	effective, err := time.Parse(feedDateLayout, raw.EffectiveDate)
	if err != nil {
		return models.MarketPriceQuote{}, fmt.Errorf("quote date %q: %w", raw.EffectiveDate, err)
	}

	source := raw.Source
	if source == "" {
		source = "feed"
	}
	return models.MarketPriceQuote{
		Category:      raw.Category,
		Breed:         raw.Breed,
		Venue:         raw.Venue,
		Region:        raw.Region,
		PricePerKg:    decimal.NewFromFloat(raw.PricePerKg),
		EffectiveDate: effective,
		Source:        source,
	}, nil
}
