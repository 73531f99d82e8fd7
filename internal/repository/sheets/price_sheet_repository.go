// Package sheets reads market price quotes maintained by hand in a Google
// Sheet, as a secondary quote source beside the stored market feed.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/config"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

const quoteDateLayout = "2006-01-02"

// PriceSheetRepository serves quotes out of one spreadsheet range with the
// columns Category | Breed | Venue | Region | Price/kg | Date | Source.
type PriceSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	quoteRange    string
	logger        *zap.Logger
}

// NewPriceSheetRepository builds a Google Sheets backed quote source.
func NewPriceSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*PriceSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &PriceSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		quoteRange:    cfg.QuoteRange,
		logger:        logger.Named("sheets"),
	}, nil
}

// Lookup reads the whole quote range and returns rows matching the query's
// category. The sheet is small enough that filtering happens client-side.
func (r *PriceSheetRepository) Lookup(ctx context.Context, q models.QuoteQuery) ([]models.MarketPriceQuote, error) {
	rows, err := r.readRange(ctx, r.quoteRange)
	if err != nil {
		return nil, err
	}

	quotes := make([]models.MarketPriceQuote, 0, len(rows))
	for i, row := range rows {
		quote, ok := r.parseRow(i, row)
		if !ok {
			continue
		}
		if strings.EqualFold(quote.Category, q.Category) {
			quotes = append(quotes, quote)
		}
	}
	return quotes, nil
}

// readRange fetches a rectangular data range from the spreadsheet.
func (r *PriceSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// parseRow turns one sheet row into a quote. Hand-maintained sheets collect
// broken rows; those are logged and skipped rather than failing the lookup.
func (r *PriceSheetRepository) parseRow(index int, row []interface{}) (models.MarketPriceQuote, bool) {
	if len(row) < 6 {
		return models.MarketPriceQuote{}, false
	}

	price, err := decimal.NewFromString(cellString(row[4]))
	if err != nil {
		r.logger.Warn("skipping quote row with unparseable price",
			zap.Int("row", index),
			zap.String("price", cellString(row[4])))
		return models.MarketPriceQuote{}, false
	}

	effective, err := time.Parse(quoteDateLayout, cellString(row[5]))
	if err != nil {
		r.logger.Warn("skipping quote row with unparseable date",
			zap.Int("row", index),
			zap.String("date", cellString(row[5])))
		return models.MarketPriceQuote{}, false
	}

	quote := models.MarketPriceQuote{
		Category:      cellString(row[0]),
		Breed:         cellString(row[1]),
		Venue:         cellString(row[2]),
		Region:        cellString(row[3]),
		PricePerKg:    price,
		EffectiveDate: effective,
		Source:        "sheet",
	}
	if len(row) > 6 && cellString(row[6]) != "" {
		quote.Source = cellString(row[6])
	}
	if quote.Category == "" {
		return models.MarketPriceQuote{}, false
	}
	return quote, true
}

func cellString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
