package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainorder "threadly/internal/domain/order"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	col := db.Collection("orders")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &OrderRepository{col: col}
}

func (r *OrderRepository) ByID(ctx context.Context, id string) (*domainorder.Order, error) {
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainorder.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OrderRepository) ByParticipant(ctx context.Context, userID string) ([]*domainorder.Order, error) {
	filter := bson.M{"$or": []bson.M{{"buyer": userID}, {"seller": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainorder.Order
	for cur.Next(ctx) {
		var doc orderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]*domainorder.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainorder.Order
	for cur.Next(ctx) {
		var doc orderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *OrderRepository) Stats(ctx context.Context) (domainorder.Stats, error) {
	var stats domainorder.Stats
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats.Total = total

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domainorder.StatusCompleted)}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return stats, err
	}
	defer cur.Close(ctx)

	var row struct {
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return stats, err
		}
	}
	stats.Completed = row.Count
	stats.Revenue = row.Revenue
	return stats, cur.Err()
}

func (r *OrderRepository) Save(ctx context.Context, o *domainorder.Order) error {
	doc := newOrderDocument(o)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type shippingDocument struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	Pincode string `bson:"pincode"`
}

type orderDocument struct {
	ID              string           `bson:"_id"`
	Buyer           string           `bson:"buyer"`
	Seller          string           `bson:"seller"`
	ListingID       string           `bson:"listing_id"`
	Amount          float64          `bson:"amount"`
	Currency        string           `bson:"currency"`
	PaymentIntentID string           `bson:"payment_intent_id"`
	PaymentID       string           `bson:"payment_id"`
	PaymentStatus   string           `bson:"payment_status"`
	Status          string           `bson:"status"`
	EscrowReleased  bool             `bson:"escrow_released"`
	Shipping        shippingDocument `bson:"shipping"`
	DeliveryNote    string           `bson:"delivery_note"`
	CreatedAt       int64            `bson:"created_at"`
	UpdatedAt       int64            `bson:"updated_at"`
}

func newOrderDocument(o *domainorder.Order) orderDocument {
	return orderDocument{
		ID:              o.ID,
		Buyer:           o.Buyer,
		Seller:          o.Seller,
		ListingID:       o.ListingID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		PaymentIntentID: o.PaymentIntentID,
		PaymentID:       o.PaymentID,
		PaymentStatus:   string(o.PaymentStatus),
		Status:          string(o.Status),
		EscrowReleased:  o.EscrowReleased,
		Shipping: shippingDocument{
			Name:    o.Shipping.Name,
			Phone:   o.Shipping.Phone,
			Street:  o.Shipping.Street,
			City:    o.Shipping.City,
			State:   o.Shipping.State,
			Pincode: o.Shipping.Pincode,
		},
		DeliveryNote: o.DeliveryNote,
		CreatedAt:    o.CreatedAt.UnixMilli(),
		UpdatedAt:    o.UpdatedAt.UnixMilli(),
	}
}

func (d orderDocument) toAggregate() *domainorder.Order {
	return &domainorder.Order{
		ID:              d.ID,
		Buyer:           d.Buyer,
		Seller:          d.Seller,
		ListingID:       d.ListingID,
		Amount:          d.Amount,
		Currency:        d.Currency,
		PaymentIntentID: d.PaymentIntentID,
		PaymentID:       d.PaymentID,
		PaymentStatus:   domainorder.PaymentStatus(d.PaymentStatus),
		Status:          domainorder.Status(d.Status),
		EscrowReleased:  d.EscrowReleased,
		Shipping: domainorder.ShippingAddress{
			Name:    d.Shipping.Name,
			Phone:   d.Shipping.Phone,
			Street:  d.Shipping.Street,
			City:    d.Shipping.City,
			State:   d.Shipping.State,
			Pincode: d.Shipping.Pincode,
		},
		DeliveryNote: d.DeliveryNote,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

var _ domainorder.Repository = (*OrderRepository)(nil)
