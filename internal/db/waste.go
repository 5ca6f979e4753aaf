package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WasteRepository persists waste entries and runs the statistics pipeline.
type WasteRepository struct {
	coll *mongo.Collection
}

func NewWasteRepository(database *mongo.Database) *WasteRepository {
	return &WasteRepository{coll: database.Collection(WasteCollection)}
}

func (r *WasteRepository) Create(ctx context.Context, entry *models.WasteEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert waste entry: %w", err)
	}
	return nil
}

func (r *WasteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WasteEntry, error) {
	var entry models.WasteEntry
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find waste entry: %w", err)
	}
	return &entry, nil
}

// List returns every entry, oldest first.
func (r *WasteRepository) List(ctx context.Context) ([]models.WasteEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "collected_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find waste entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.WasteEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode waste entries: %w", err)
	}
	return entries, nil
}

// Update applies the supplied fields of upd and returns the updated entry.
func (r *WasteRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.WasteUpdate) (*models.WasteEntry, error) {
	if upd.Empty() {
		return r.FindByID(ctx, id)
	}

	set := bson.M{}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Weight != nil {
		set["weight"] = *upd.Weight
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}

	var entry models.WasteEntry
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update waste entry: %w", err)
	}
	return &entry, nil
}

func (r *WasteRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete waste entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	return nil
}

type bucket struct {
	Key   string  `bson:"_id"`
	Total float64 `bson:"total"`
}

type summaryFacets struct {
	Totals []struct {
		Total float64 `bson:"total"`
	} `bson:"totals"`
	Locations []struct {
		Count int `bson:"count"`
	} `bson:"locations"`
	Categories []bucket `bson:"categories"`
	Dates      []bucket `bson:"dates"`
}

// summaryPipeline computes every statistic in one $facet pass, so all figures
// come from the same read. Days are bucketed in timezone.
func summaryPipeline(timezone string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$facet", Value: bson.D{
			{Key: "totals", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "total", Value: bson.D{{Key: "$sum", Value: "$weight"}}},
				}}},
			}},
			{Key: "locations", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$location"}}}},
				bson.D{{Key: "$count", Value: "count"}},
			}},
			{Key: "categories", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$category"},
					{Key: "total", Value: bson.D{{Key: "$sum", Value: "$weight"}}},
				}}},
			}},
			{Key: "dates", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
						{Key: "format", Value: "%Y-%m-%d"},
						{Key: "date", Value: "$collected_at"},
						{Key: "timezone", Value: timezone},
					}}}},
					{Key: "total", Value: bson.D{{Key: "$sum", Value: "$weight"}}},
				}}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
			}},
		}}},
	}
}

// Summary aggregates the whole collection. It is recomputed on every call.
func (r *WasteRepository) Summary(ctx context.Context, timezone string) (*models.Summary, error) {
	cursor, err := r.coll.Aggregate(ctx, summaryPipeline(timezone))
	if err != nil {
		return nil, fmt.Errorf("aggregate summary: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []summaryFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	summary := models.NewSummary()
	if len(facets) == 0 {
		return summary, nil
	}

	f := facets[0]
	if len(f.Totals) > 0 {
		summary.TotalWaste = f.Totals[0].Total
	}
	if len(f.Locations) > 0 {
		summary.LocationCount = f.Locations[0].Count
	}
	for _, c := range f.Categories {
		summary.CategoryDistribution[c.Key] = c.Total
	}
	for _, d := range f.Dates {
		summary.DateWiseCollection[d.Key] = d.Total
	}
	return summary, nil
}
