package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

type costProfileDoc struct {
	ID                  string    `bson:"_id"`
	AgistmentMonthly    float64   `bson:"agistment_monthly"`
	FeedMonthly         float64   `bson:"feed_monthly"`
	VetMonthly          float64   `bson:"vet_monthly"`
	FreightPerKm        float64   `bson:"freight_per_km"`
	AnnualMortalityRate float64   `bson:"annual_mortality_rate"`
	DefaultCalvingRate  float64   `bson:"default_calving_rate"`
	PigBirthWeightRatio float64   `bson:"pig_birth_weight_ratio"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func toCostProfileDoc(p models.CostProfile) costProfileDoc {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	return costProfileDoc{
		ID:                  id,
		AgistmentMonthly:    p.AgistmentMonthly,
		FeedMonthly:         p.FeedMonthly,
		VetMonthly:          p.VetMonthly,
		FreightPerKm:        p.FreightPerKm,
		AnnualMortalityRate: p.AnnualMortalityRate,
		DefaultCalvingRate:  p.DefaultCalvingRate,
		PigBirthWeightRatio: p.PigBirthWeightRatio,
		UpdatedAt:           time.Now(),
	}
}

func (d costProfileDoc) toModel() models.CostProfile {
	return models.CostProfile{
		ID:                  d.ID,
		AgistmentMonthly:    d.AgistmentMonthly,
		FeedMonthly:         d.FeedMonthly,
		VetMonthly:          d.VetMonthly,
		FreightPerKm:        d.FreightPerKm,
		AnnualMortalityRate: d.AnnualMortalityRate,
		DefaultCalvingRate:  d.DefaultCalvingRate,
		PigBirthWeightRatio: d.PigBirthWeightRatio,
	}
}

// ActiveCostProfile returns the most recently saved profile, or ErrNotFound
// when none has been stored yet.
func (s *Store) ActiveCostProfile(ctx context.Context) (models.CostProfile, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var doc costProfileDoc
	err := s.collection(costsCollection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CostProfile{}, ErrNotFound
	}
	if err != nil {
		return models.CostProfile{}, fmt.Errorf("failed to fetch cost profile: %w", err)
	}
	return doc.toModel(), nil
}

// SaveCostProfile upserts a profile, making it the active one.
func (s *Store) SaveCostProfile(ctx context.Context, p models.CostProfile) (models.CostProfile, error) {
	doc := toCostProfileDoc(p)
	_, err := s.collection(costsCollection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return models.CostProfile{}, fmt.Errorf("failed to save cost profile: %w", err)
	}
	return doc.toModel(), nil
}
