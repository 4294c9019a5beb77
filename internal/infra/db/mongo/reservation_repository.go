package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreservation "studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// ReservationRepository persists reservations with an optimistic version
// check. A save that loses the race to a concurrent writer surfaces
// ErrWriteConflict, never silently overwrites.
type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("reservations")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "space_id", Value: 1},
		{Key: "date", Value: 1},
		{Key: "status", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ReservationRepository) ConfirmedBySpaceAndDate(ctx context.Context, spaceID spaces.SpaceID, date civil.Date) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"space_id": string(spaceID),
		"date":     date.String(),
		"status":   string(domainreservation.StatusConfirmed),
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepository) ByUser(ctx context.Context, userID string) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *ReservationRepository) BySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"space_id": string(spaceID)})
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M) ([]*domainreservation.Reservation, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreservation.Reservation
	for cur.Next(ctx) {
		var doc reservationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		agg, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, cur.Err()
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreservation.ErrWriteConflict
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return domainreservation.ErrWriteConflict
	}
	res.Version = doc.Version
	return nil
}

type reservationDocument struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	SpaceID   string `bson:"space_id"`
	Date      string `bson:"date"`
	StartTime int    `bson:"start_time"`
	EndTime   int    `bson:"end_time"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
	Version   int64  `bson:"version"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:        string(res.ID),
		UserID:    res.UserID,
		SpaceID:   string(res.SpaceID),
		Date:      res.Date.String(),
		StartTime: int(res.Interval.Start),
		EndTime:   int(res.Interval.End),
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt.UnixMilli(),
		UpdatedAt: res.UpdatedAt.UnixMilli(),
		Version:   res.Version,
	}
}

func (d reservationDocument) toAggregate() (*domainreservation.Reservation, error) {
	date, err := civil.ParseDate(d.Date)
	if err != nil {
		return nil, fmt.Errorf("decode reservation %s: %w", d.ID, err)
	}
	return &domainreservation.Reservation{
		ID:        domainreservation.ReservationID(d.ID),
		UserID:    d.UserID,
		SpaceID:   spaces.SpaceID(d.SpaceID),
		Date:      date,
		Interval:  civil.Interval{Start: civil.TimeOfDay(d.StartTime), End: civil.TimeOfDay(d.EndTime)},
		Status:    domainreservation.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
