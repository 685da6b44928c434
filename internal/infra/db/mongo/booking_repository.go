package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/payment"
	domainpricing "staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts with an optimistic version check: the row must still carry the
// version we loaded, or another writer got there first.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByAccount(ctx context.Context, accountID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: string(m.Currency)}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: money.Currency(d.Currency)}
}

type quoteDocument struct {
	RentalFiat     moneyDocument `bson:"rental_fiat"`
	RentalToken    moneyDocument `bson:"rental_token"`
	UtilityFiat    moneyDocument `bson:"utility_fiat"`
	FoodFiat       moneyDocument `bson:"food_fiat"`
	EventFiat      moneyDocument `bson:"event_fiat"`
	TotalFiat      moneyDocument `bson:"total_fiat"`
	TotalToken     moneyDocument `bson:"total_token"`
	DurationNights int           `bson:"duration_nights"`
	DiscountBps    int64         `bson:"discount_bps"`
	SeasonBps      int64         `bson:"season_bps"`
	PolicyVersion  string        `bson:"policy_version"`
}

type allocationDocument struct {
	TokenPortion        moneyDocument `bson:"token_portion"`
	FiatPortion         moneyDocument `bson:"fiat_portion"`
	CreditPortion       moneyDocument `bson:"credit_portion"`
	TokenFiatEquivalent moneyDocument `bson:"token_fiat_equivalent"`
}

type policyDocument struct {
	LastDayBps   int64 `bson:"last_day_bps"`
	LastWeekBps  int64 `bson:"last_week_bps"`
	LastMonthBps int64 `bson:"last_month_bps"`
	DefaultBps   int64 `bson:"default_bps"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

type bookingDocument struct {
	ID         string             `bson:"_id"`
	ListingID  string             `bson:"listing_id"`
	AccountID  string             `bson:"account_id"`
	Category   string             `bson:"category"`
	Range      rangeDocument      `bson:"range"`
	Adults     int                `bson:"adults"`
	Quote      quoteDocument      `bson:"quote"`
	Allocation allocationDocument `bson:"allocation"`
	PaidFiat   moneyDocument      `bson:"paid_fiat"`
	Policy     *policyDocument    `bson:"policy,omitempty"`
	Status     string             `bson:"status"`
	CreatedAt  int64              `bson:"created_at"`
	UpdatedAt  int64              `bson:"updated_at"`
	Version    int64              `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		AccountID: b.AccountID,
		Category:  string(b.Category),
		Range:     rangeDocument{Start: b.Range.Start.UnixMilli(), End: b.Range.End.UnixMilli()},
		Adults:    b.Adults,
		Quote: quoteDocument{
			RentalFiat:     newMoneyDocument(b.Quote.RentalFiat),
			RentalToken:    newMoneyDocument(b.Quote.RentalToken),
			UtilityFiat:    newMoneyDocument(b.Quote.UtilityFiat),
			FoodFiat:       newMoneyDocument(b.Quote.FoodFiat),
			EventFiat:      newMoneyDocument(b.Quote.EventFiat),
			TotalFiat:      newMoneyDocument(b.Quote.TotalFiat),
			TotalToken:     newMoneyDocument(b.Quote.TotalToken),
			DurationNights: b.Quote.DurationNights,
			DiscountBps:    b.Quote.AppliedDiscountBps,
			SeasonBps:      b.Quote.AppliedSeasonModifierBps,
			PolicyVersion:  b.Quote.PolicyVersion,
		},
		Allocation: allocationDocument{
			TokenPortion:        newMoneyDocument(b.Allocation.TokenPortion),
			FiatPortion:         newMoneyDocument(b.Allocation.FiatPortion),
			CreditPortion:       newMoneyDocument(b.Allocation.CreditPortion),
			TokenFiatEquivalent: newMoneyDocument(b.Allocation.TokenFiatEquivalent),
		},
		PaidFiat:  newMoneyDocument(b.PaidFiat),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
	if b.Policy != nil {
		doc.Policy = &policyDocument{
			LastDayBps:   b.Policy.LastDayBps,
			LastWeekBps:  b.Policy.LastWeekBps,
			LastMonthBps: b.Policy.LastMonthBps,
			DefaultBps:   b.Policy.DefaultBps,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	agg := &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		AccountID: d.AccountID,
		Category:  listings.Category(d.Category),
		Range: domainrange.DateRange{
			Start: timestampToTime(d.Range.Start),
			End:   timestampToTime(d.Range.End),
		},
		Adults: d.Adults,
		Quote: domainpricing.Quote{
			RentalFiat:               d.Quote.RentalFiat.toMoney(),
			RentalToken:              d.Quote.RentalToken.toMoney(),
			UtilityFiat:              d.Quote.UtilityFiat.toMoney(),
			FoodFiat:                 d.Quote.FoodFiat.toMoney(),
			EventFiat:                d.Quote.EventFiat.toMoney(),
			TotalFiat:                d.Quote.TotalFiat.toMoney(),
			TotalToken:               d.Quote.TotalToken.toMoney(),
			DurationNights:           d.Quote.DurationNights,
			AppliedDiscountBps:       d.Quote.DiscountBps,
			AppliedSeasonModifierBps: d.Quote.SeasonBps,
			PolicyVersion:            d.Quote.PolicyVersion,
		},
		Allocation: payment.Allocation{
			TokenPortion:        d.Allocation.TokenPortion.toMoney(),
			FiatPortion:         d.Allocation.FiatPortion.toMoney(),
			CreditPortion:       d.Allocation.CreditPortion.toMoney(),
			TokenFiatEquivalent: d.Allocation.TokenFiatEquivalent.toMoney(),
		},
		PaidFiat:  d.PaidFiat.toMoney(),
		Status:    domainbooking.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.Policy != nil {
		agg.Policy = &domainbooking.CancellationPolicy{
			LastDayBps:   d.Policy.LastDayBps,
			LastWeekBps:  d.Policy.LastWeekBps,
			LastMonthBps: d.Policy.LastMonthBps,
			DefaultBps:   d.Policy.DefaultBps,
		}
	}
	return agg
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
