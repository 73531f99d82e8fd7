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

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/calving"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// groupDoc is the stored shape of a livestock group. Money fields are kept
// as strings to round-trip decimals exactly. calving_processed_date has no
// omitempty: undelivered groups must carry an explicit null for the delivery
// compare-and-set filter.
type groupDoc struct {
	ID                   string     `bson:"_id"`
	Species              string     `bson:"species"`
	Breed                string     `bson:"breed,omitempty"`
	Sex                  string     `bson:"sex,omitempty"`
	Category             string     `bson:"category"`
	HeadCount            int        `bson:"head_count"`
	InitialWeightKg      float64    `bson:"initial_weight_kg"`
	DailyGainKg          float64    `bson:"daily_gain_kg"`
	AgeMonths            *int       `bson:"age_months,omitempty"`
	BirthDate            *time.Time `bson:"birth_date,omitempty"`
	ReferenceDate        time.Time  `bson:"reference_date"`
	IsBreeder            bool       `bson:"is_breeder"`
	IsPregnant           bool       `bson:"is_pregnant"`
	CalvingRate          float64    `bson:"calving_rate"`
	CalvingProcessedDate *time.Time `bson:"calving_processed_date"`
	JoiningStart         *time.Time `bson:"joining_start,omitempty"`
	JoiningEnd           *time.Time `bson:"joining_end,omitempty"`
	SaleyardVenue        string     `bson:"saleyard_venue,omitempty"`
	IsSold               bool       `bson:"is_sold"`
	SoldAt               *time.Time `bson:"sold_at,omitempty"`
	SalePricePerKg       string     `bson:"sale_price_per_kg,omitempty"`
	SourceGroupID        *string    `bson:"source_group_id,omitempty"`
	Notes                string     `bson:"notes,omitempty"`
	CreatedAt            time.Time  `bson:"created_at"`
	UpdatedAt            time.Time  `bson:"updated_at"`
}

func toGroupDoc(g models.LivestockGroup) groupDoc {
	doc := groupDoc{
		ID:                   g.ID,
		Species:              string(g.Species),
		Breed:                g.Breed,
		Sex:                  g.Sex,
		Category:             g.Category,
		HeadCount:            g.HeadCount,
		InitialWeightKg:      g.InitialWeightKg,
		DailyGainKg:          g.DailyGainKg,
		AgeMonths:            g.AgeMonths,
		BirthDate:            g.BirthDate,
		ReferenceDate:        g.ReferenceDate,
		IsBreeder:            g.IsBreeder,
		IsPregnant:           g.IsPregnant,
		CalvingRate:          g.CalvingRate,
		CalvingProcessedDate: g.CalvingProcessedDate,
		JoiningStart:         g.JoiningStart,
		JoiningEnd:           g.JoiningEnd,
		SaleyardVenue:        g.SaleyardVenue,
		IsSold:               g.IsSold,
		SoldAt:               g.SoldAt,
		SourceGroupID:        g.SourceGroupID,
		Notes:                g.Notes,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            g.UpdatedAt,
	}
	if !g.SalePricePerKg.IsZero() {
		doc.SalePricePerKg = g.SalePricePerKg.String()
	}
	return doc
}

func (d groupDoc) toModel() (models.LivestockGroup, error) {
	g := models.LivestockGroup{
		ID:                   d.ID,
		Species:              models.Species(d.Species),
		Breed:                d.Breed,
		Sex:                  d.Sex,
		Category:             d.Category,
		HeadCount:            d.HeadCount,
		InitialWeightKg:      d.InitialWeightKg,
		DailyGainKg:          d.DailyGainKg,
		AgeMonths:            d.AgeMonths,
		BirthDate:            d.BirthDate,
		ReferenceDate:        d.ReferenceDate,
		IsBreeder:            d.IsBreeder,
		IsPregnant:           d.IsPregnant,
		CalvingRate:          d.CalvingRate,
		CalvingProcessedDate: d.CalvingProcessedDate,
		JoiningStart:         d.JoiningStart,
		JoiningEnd:           d.JoiningEnd,
		SaleyardVenue:        d.SaleyardVenue,
		IsSold:               d.IsSold,
		SoldAt:               d.SoldAt,
		SourceGroupID:        d.SourceGroupID,
		Notes:                d.Notes,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	g.SalePricePerKg = decimal.Zero
	if d.SalePricePerKg != "" {
		price, err := decimal.NewFromString(d.SalePricePerKg)
		if err != nil {
			return models.LivestockGroup{}, fmt.Errorf("failed to parse stored sale price for group %s: %w", d.ID, err)
		}
		g.SalePricePerKg = price
	}
	return g, nil
}

// InsertGroup stores a new livestock group.
func (s *Store) InsertGroup(ctx context.Context, g models.LivestockGroup) error {
	if _, err := s.collection(groupsCollection).InsertOne(ctx, toGroupDoc(g)); err != nil {
		return fmt.Errorf("failed to insert livestock group: %w", err)
	}
	return nil
}

// UpdateGroup replaces a stored group.
func (s *Store) UpdateGroup(ctx context.Context, g models.LivestockGroup) error {
	res, err := s.collection(groupsCollection).ReplaceOne(ctx, bson.M{"_id": g.ID}, toGroupDoc(g))
	if err != nil {
		return fmt.Errorf("failed to update livestock group %s: %w", g.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGroup fetches one group by id.
func (s *Store) GetGroup(ctx context.Context, id string) (models.LivestockGroup, error) {
	var doc groupDoc
	err := s.collection(groupsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.LivestockGroup{}, ErrNotFound
	}
	if err != nil {
		return models.LivestockGroup{}, fmt.Errorf("failed to fetch livestock group %s: %w", id, err)
	}
	return doc.toModel()
}

// ListActive returns every group still on the books, oldest first.
func (s *Store) ListActive(ctx context.Context) ([]models.LivestockGroup, error) {
	return s.listGroups(ctx, bson.M{"is_sold": false})
}

// ListAll returns every group including sold ones.
func (s *Store) ListAll(ctx context.Context) ([]models.LivestockGroup, error) {
	return s.listGroups(ctx, bson.M{})
}

func (s *Store) listGroups(ctx context.Context, filter bson.M) ([]models.LivestockGroup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection(groupsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list livestock groups: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []groupDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode livestock groups: %w", err)
	}

	groups := make([]models.LivestockGroup, 0, len(docs))
	for _, doc := range docs {
		g, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// MarkSold flags a group as sold so valuation stops counting it.
func (s *Store) MarkSold(ctx context.Context, id string, soldAt time.Time, pricePerKg decimal.Decimal) error {
	set := bson.M{
		"is_sold":    true,
		"sold_at":    soldAt,
		"updated_at": soldAt,
	}
	if !pricePerKg.IsZero() {
		set["sale_price_per_kg"] = pricePerKg.String()
	}
	res, err := s.collection(groupsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to mark group %s sold: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CommitCalving applies a delivery in one transaction: the mother flips to
// delivered only if her calving_processed_date is still null, and the calf
// groups are inserted alongside. Losing the compare-and-set returns
// calving.ErrAlreadyProcessed and inserts nothing.
func (s *Store) CommitCalving(ctx context.Context, mother models.LivestockGroup, calves []models.LivestockGroup) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	coll := s.collection(groupsCollection)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res := coll.FindOneAndUpdate(sc,
			bson.M{"_id": mother.ID, "calving_processed_date": nil},
			bson.M{"$set": bson.M{
				"is_pregnant":            false,
				"calving_processed_date": mother.CalvingProcessedDate,
				"updated_at":             mother.UpdatedAt,
			}},
		)
		if err := res.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, calving.ErrAlreadyProcessed
			}
			return nil, fmt.Errorf("failed to mark group %s delivered: %w", mother.ID, err)
		}

		if len(calves) == 0 {
			return nil, nil
		}
		docs := make([]interface{}, 0, len(calves))
		for _, calf := range calves {
			docs = append(docs, toGroupDoc(calf))
		}
		if _, err := coll.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("failed to insert progeny groups for %s: %w", mother.ID, err)
		}
		return nil, nil
	})
	return err
}
