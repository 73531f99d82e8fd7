package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

type categoryTotalDoc struct {
	Category  string  `bson:"category"`
	HeadCount int     `bson:"head_count"`
	Value     string  `bson:"value"`
	Percent   float64 `bson:"percent"`
}

// snapshotDoc keys on the calendar day so re-running a day's snapshot
// overwrites rather than duplicates.
type snapshotDoc struct {
	ID              string             `bson:"_id"`
	Date            time.Time          `bson:"date"`
	TotalValue      string             `bson:"total_value"`
	HeadCount       int                `bson:"head_count"`
	GroupCount      int                `bson:"group_count"`
	Categories      []categoryTotalDoc `bson:"categories"`
	BreedingAccrual string             `bson:"breeding_accrual"`
	CostToCarry     string             `bson:"cost_to_carry"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

const snapshotDayFormat = "2006-01-02"

func toSnapshotDoc(snap models.PortfolioSnapshot) snapshotDoc {
	categories := make([]categoryTotalDoc, 0, len(snap.Categories))
	for _, ct := range snap.Categories {
		categories = append(categories, categoryTotalDoc{
			Category:  ct.Category,
			HeadCount: ct.HeadCount,
			Value:     ct.Value.String(),
			Percent:   ct.Percent,
		})
	}
	return snapshotDoc{
		ID:              snap.Date.Format(snapshotDayFormat),
		Date:            snap.Date,
		TotalValue:      snap.TotalValue.String(),
		HeadCount:       snap.HeadCount,
		GroupCount:      snap.GroupCount,
		Categories:      categories,
		BreedingAccrual: snap.BreedingAccrual.String(),
		CostToCarry:     snap.CostToCarry.String(),
		UpdatedAt:       time.Now(),
	}
}

func (d snapshotDoc) toModel() (models.ValuationSnapshot, error) {
	total, err := decimal.NewFromString(d.TotalValue)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("failed to parse stored snapshot total for %s: %w", d.ID, err)
	}
	accrual, err := decimal.NewFromString(d.BreedingAccrual)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("failed to parse stored snapshot accrual for %s: %w", d.ID, err)
	}
	carry, err := decimal.NewFromString(d.CostToCarry)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("failed to parse stored snapshot costs for %s: %w", d.ID, err)
	}

	categories := make([]models.CategoryTotal, 0, len(d.Categories))
	for _, ct := range d.Categories {
		value, err := decimal.NewFromString(ct.Value)
		if err != nil {
			return models.ValuationSnapshot{}, fmt.Errorf("failed to parse stored category value for %s: %w", d.ID, err)
		}
		categories = append(categories, models.CategoryTotal{
			Category:  ct.Category,
			HeadCount: ct.HeadCount,
			Value:     value,
			Percent:   ct.Percent,
		})
	}

	return models.ValuationSnapshot{
		Date:            d.Date,
		TotalValue:      total,
		Categories:      categories,
		BreedingAccrual: accrual,
		CostToCarry:     carry,
	}, nil
}

// SaveSnapshot persists one portfolio point, one document per calendar day.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.PortfolioSnapshot) error {
	doc := toSnapshotDoc(snap)
	_, err := s.collection(snapshotsCollection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save portfolio snapshot: %w", err)
	}
	return nil
}

// LatestBefore returns the newest snapshot strictly older than date.
func (s *Store) LatestBefore(ctx context.Context, date time.Time) (models.ValuationSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	var doc snapshotDoc
	err := s.collection(snapshotsCollection).FindOne(ctx, bson.M{"date": bson.M{"$lt": date}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ValuationSnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("failed to fetch previous snapshot: %w", err)
	}
	return doc.toModel()
}

// ListSnapshotsSince returns stored snapshots from the given date forward,
// oldest first.
func (s *Store) ListSnapshotsSince(ctx context.Context, from time.Time) ([]models.ValuationSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.collection(snapshotsCollection).Find(ctx, bson.M{"date": bson.M{"$gte": from}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []snapshotDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio snapshots: %w", err)
	}

	snaps := make([]models.ValuationSnapshot, 0, len(docs))
	for _, doc := range docs {
		snap, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
