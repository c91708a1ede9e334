package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreview "threadly/internal/domain/review"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("reviews")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reviewer", Value: 1}, {Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) BySeller(ctx context.Context, sellerID string) ([]*domainreview.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"seller": sellerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainreview.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *ReviewRepository) ByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*domainreview.Review, error) {
	var doc reviewDocument
	err := r.col.FindOne(ctx, bson.M{"reviewer": reviewerID, "order_id": orderID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainreview.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domainreview.Review) error {
	_, err := r.col.InsertOne(ctx, newReviewDocument(rev))
	if mongo.IsDuplicateKeyError(err) {
		return domainreview.ErrAlreadyReviewed
	}
	return err
}

func (r *ReviewRepository) SellerStats(ctx context.Context, sellerID string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seller": sellerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$rating"},
			"count":  bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var stats struct {
		Rating float64 `bson:"rating"`
		Count  int     `bson:"count"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&stats); err != nil {
			return 0, 0, err
		}
	}
	return stats.Rating, stats.Count, cur.Err()
}

type reviewDocument struct {
	ID        string `bson:"_id"`
	Reviewer  string `bson:"reviewer"`
	Seller    string `bson:"seller"`
	OrderID   string `bson:"order_id"`
	Rating    int    `bson:"rating"`
	Comment   string `bson:"comment"`
	CreatedAt int64  `bson:"created_at"`
}

func newReviewDocument(rev *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:        rev.ID,
		Reviewer:  rev.Reviewer,
		Seller:    rev.Seller,
		OrderID:   rev.OrderID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreview.Review {
	return &domainreview.Review{
		ID:        d.ID,
		Reviewer:  d.Reviewer,
		Seller:    d.Seller,
		OrderID:   d.OrderID,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainreview.Repository = (*ReviewRepository)(nil)
