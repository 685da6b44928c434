package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainavailability "staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("reservations")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "range.start", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col}
}

type reservationDocument struct {
	ListingID string        `bson:"listing_id"`
	Range     rangeDocument `bson:"range"`
}

func (d reservationDocument) toReservation() domainavailability.Reservation {
	return domainavailability.Reservation{
		ListingID: listings.ListingID(d.ListingID),
		Range: domainrange.DateRange{
			Start: timestampToTime(d.Range.Start),
			End:   timestampToTime(d.Range.End),
		},
	}
}

// InRange uses the half-open overlap condition: a row conflicts when it
// starts before the window ends and ends after the window starts.
func (r *ReservationRepository) InRange(ctx context.Context, rng domainrange.DateRange) ([]domainavailability.Reservation, error) {
	filter := bson.M{
		"range.start": bson.M{"$lt": rng.End.UnixMilli()},
		"range.end":   bson.M{"$gt": rng.Start.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepository) ForListing(ctx context.Context, id listings.ListingID) ([]domainavailability.Reservation, error) {
	return r.find(ctx, bson.M{"listing_id": string(id)})
}

func (r *ReservationRepository) Add(ctx context.Context, res domainavailability.Reservation) error {
	doc := reservationDocument{
		ListingID: string(res.ListingID),
		Range:     rangeDocument{Start: res.Range.Start.UnixMilli(), End: res.Range.End.UnixMilli()},
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M) ([]domainavailability.Reservation, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]domainavailability.Reservation, 0)
	for cur.Next(ctx) {
		var doc reservationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toReservation())
	}
	return out, cur.Err()
}

var _ domainavailability.Repository = (*ReservationRepository)(nil)
