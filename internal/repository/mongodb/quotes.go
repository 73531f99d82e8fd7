package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// quoteLookupLimit caps how many candidates one resolution can pull.
const quoteLookupLimit = 500

type quoteDoc struct {
	ID            string    `bson:"_id"`
	Category      string    `bson:"category"`
	CategoryKey   string    `bson:"category_key"`
	Breed         string    `bson:"breed,omitempty"`
	Venue         string    `bson:"venue,omitempty"`
	Region        string    `bson:"region,omitempty"`
	PricePerKg    string    `bson:"price_per_kg"`
	EffectiveDate time.Time `bson:"effective_date"`
	Source        string    `bson:"source,omitempty"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toQuoteDoc(q models.MarketPriceQuote) quoteDoc {
	id := q.ID
	if id == "" {
		id = uuid.NewString()
	}
	return quoteDoc{
		ID:            id,
		Category:      q.Category,
		CategoryKey:   strings.ToLower(q.Category),
		Breed:         q.Breed,
		Venue:         q.Venue,
		Region:        q.Region,
		PricePerKg:    q.PricePerKg.String(),
		EffectiveDate: q.EffectiveDate,
		Source:        q.Source,
		UpdatedAt:     time.Now(),
	}
}

func (d quoteDoc) toModel() (models.MarketPriceQuote, error) {
	price, err := decimal.NewFromString(d.PricePerKg)
	if err != nil {
		return models.MarketPriceQuote{}, fmt.Errorf("failed to parse stored price for quote %s: %w", d.ID, err)
	}
	return models.MarketPriceQuote{
		ID:            d.ID,
		Category:      d.Category,
		Breed:         d.Breed,
		Venue:         d.Venue,
		Region:        d.Region,
		PricePerKg:    price,
		EffectiveDate: d.EffectiveDate,
		Source:        d.Source,
	}, nil
}

// Lookup returns stored quotes for the query's category, newest first. Finer
// matching (breed, venue, statistic) happens in the resolver.
func (s *Store) Lookup(ctx context.Context, q models.QuoteQuery) ([]models.MarketPriceQuote, error) {
	filter := bson.M{"category_key": strings.ToLower(q.Category)}
	if q.AsOf != nil {
		filter["effective_date"] = bson.M{"$lte": *q.AsOf}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "effective_date", Value: -1}}).
		SetLimit(quoteLookupLimit)

	cursor, err := s.collection(quotesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query market quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []quoteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode market quotes: %w", err)
	}

	quotes := make([]models.MarketPriceQuote, 0, len(docs))
	for _, doc := range docs {
		quote, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// UpsertQuote writes a quote, replacing any earlier observation of the same
// category, breed, venue, source and date so feed refreshes stay idempotent.
func (s *Store) UpsertQuote(ctx context.Context, q models.MarketPriceQuote) error {
	doc := toQuoteDoc(q)
	filter := bson.M{
		"category_key":   doc.CategoryKey,
		"breed":          doc.Breed,
		"venue":          doc.Venue,
		"source":         doc.Source,
		"effective_date": doc.EffectiveDate,
	}
	update := bson.M{
		"$set": bson.M{
			"category":       doc.Category,
			"category_key":   doc.CategoryKey,
			"breed":          doc.Breed,
			"venue":          doc.Venue,
			"region":         doc.Region,
			"price_per_kg":   doc.PricePerKg,
			"effective_date": doc.EffectiveDate,
			"source":         doc.Source,
			"updated_at":     doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": doc.ID},
	}

	_, err := s.collection(quotesCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert market quote: %w", err)
	}
	return nil
}
