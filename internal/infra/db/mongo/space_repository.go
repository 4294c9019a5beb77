package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyreserve/internal/domain/spaces"
)

// SpaceRepository is the read side of the study-space catalog. Seed is the
// only write path; the engine never mutates spaces.
type SpaceRepository struct {
	col *mongo.Collection
}

func NewSpaceRepository(db *mongo.Database) *SpaceRepository {
	return &SpaceRepository{col: db.Collection("spaces")}
}

func (r *SpaceRepository) ByID(ctx context.Context, id spaces.SpaceID) (*spaces.StudySpace, error) {
	var doc spaceDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, spaces.ErrSpaceNotFound
		}
		return nil, err
	}
	return doc.toSpace(), nil
}

func (r *SpaceRepository) Exists(ctx context.Context, id spaces.SpaceID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SpaceRepository) List(ctx context.Context) ([]*spaces.StudySpace, error) {
	return r.Search(ctx, spaces.SearchParams{})
}

func (r *SpaceRepository) Search(ctx context.Context, params spaces.SearchParams) ([]*spaces.StudySpace, error) {
	filter := bson.M{}
	if params.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(params.Name), Options: "i"}
	}
	if params.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(params.Location), Options: "i"}
	}
	if params.Type != "" {
		filter["type"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(params.Type) + "$", Options: "i"}
	}
	if params.MinCapacity > 0 {
		filter["capacity"] = bson.M{"$gte": params.MinCapacity}
	}
	if params.NoiseLevel != "" {
		filter["noise_level"] = string(params.NoiseLevel)
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*spaces.StudySpace
	for cur.Next(ctx) {
		var doc spaceDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toSpace())
	}
	return out, cur.Err()
}

// Seed upserts fixture spaces at startup.
func (r *SpaceRepository) Seed(ctx context.Context, list []*spaces.StudySpace) error {
	for _, s := range list {
		doc := newSpaceDocument(s)
		filter := bson.M{"_id": doc.ID}
		update := bson.M{"$set": doc}
		if _, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
	}
	return nil
}

type spaceDocument struct {
	ID         string `bson:"_id"`
	Name       string `bson:"name"`
	Type       string `bson:"type"`
	Location   string `bson:"location"`
	Capacity   int    `bson:"capacity"`
	Equipment  string `bson:"equipment"`
	NoiseLevel string `bson:"noise_level"`
	ImageURL   string `bson:"image_url"`
}

func newSpaceDocument(s *spaces.StudySpace) spaceDocument {
	return spaceDocument{
		ID:         string(s.ID),
		Name:       s.Name,
		Type:       s.Type,
		Location:   s.Location,
		Capacity:   s.Capacity,
		Equipment:  s.Equipment,
		NoiseLevel: string(s.NoiseLevel),
		ImageURL:   s.ImageURL,
	}
}

func (d spaceDocument) toSpace() *spaces.StudySpace {
	return &spaces.StudySpace{
		ID:         spaces.SpaceID(d.ID),
		Name:       d.Name,
		Type:       d.Type,
		Location:   d.Location,
		Capacity:   d.Capacity,
		Equipment:  d.Equipment,
		NoiseLevel: spaces.NoiseLevel(d.NoiseLevel),
		ImageURL:   d.ImageURL,
	}
}
