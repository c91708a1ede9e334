package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "threadly/internal/domain/listing"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("listings")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "brand", Value: "text"}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Search(ctx context.Context, q domainlisting.Query) ([]*domainlisting.Listing, int64, error) {
	filter := searchFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(searchSort(q.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var result []*domainlisting.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, total, cur.Err()
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id domainlisting.ID, status domainlisting.Status) error {
	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UnixMilli()}}
	res, err := r.col.UpdateByID(ctx, string(id), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlisting.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlisting.ID) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlisting.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlisting.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]*domainlisting.Listing, error) {
	filter := bson.M{
		"status":     string(domainlisting.StatusActive),
		"created_at": bson.M{"$lt": cutoff.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var expired []*domainlisting.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		l := doc.toAggregate()
		l.Status = domainlisting.StatusExpired
		expired = append(expired, l)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"status": string(domainlisting.StatusExpired), "updated_at": time.Now().UnixMilli()}}
	if _, err := r.col.UpdateMany(ctx, filter, update); err != nil {
		return nil, err
	}
	return expired, nil
}

func searchFilter(q domainlisting.Query) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Seller != "" {
		filter["seller"] = q.Seller
	}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	if q.Size != "" {
		filter["size"] = string(q.Size)
	}
	if q.Cond != "" {
		filter["condition"] = string(q.Cond)
	}
	price := bson.M{}
	if q.PriceMin > 0 {
		price["$gte"] = q.PriceMin
	}
	if q.PriceMax > 0 {
		price["$lte"] = q.PriceMax
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}
	return filter
}

func searchSort(order string) bson.D {
	switch order {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "popular":
		return bson.D{{Key: "views", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

type imageDocument struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id"`
}

type listingDocument struct {
	ID          string          `bson:"_id"`
	Seller      string          `bson:"seller"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Brand       string          `bson:"brand"`
	Category    string          `bson:"category"`
	Size        string          `bson:"size"`
	Condition   string          `bson:"condition"`
	Price       float64         `bson:"price"`
	Images      []imageDocument `bson:"images"`
	Status      string          `bson:"status"`
	AIGenerated bool            `bson:"ai_generated"`
	Views       int64           `bson:"views"`
	Slug        string          `bson:"slug"`
	Tags        []string        `bson:"tags"`
	CreatedAt   int64           `bson:"created_at"`
	UpdatedAt   int64           `bson:"updated_at"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	images := make([]imageDocument, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, imageDocument{URL: img.URL, PublicID: img.PublicID})
	}
	return listingDocument{
		ID:          string(l.ID),
		Seller:      l.Seller,
		Title:       l.Title,
		Description: l.Description,
		Brand:       l.Brand,
		Category:    string(l.Category),
		Size:        string(l.Size),
		Condition:   string(l.Condition),
		Price:       l.Price,
		Images:      images,
		Status:      string(l.Status),
		AIGenerated: l.AIGenerated,
		Views:       l.Views,
		Slug:        l.Slug,
		Tags:        l.Tags,
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlisting.Listing {
	images := make([]domainlisting.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domainlisting.Image{URL: img.URL, PublicID: img.PublicID})
	}
	return &domainlisting.Listing{
		ID:          domainlisting.ID(d.ID),
		Seller:      d.Seller,
		Title:       d.Title,
		Description: d.Description,
		Brand:       d.Brand,
		Category:    domainlisting.Category(d.Category),
		Size:        domainlisting.Size(d.Size),
		Condition:   domainlisting.Condition(d.Condition),
		Price:       d.Price,
		Images:      images,
		Status:      domainlisting.Status(d.Status),
		AIGenerated: d.AIGenerated,
		Views:       d.Views,
		Slug:        d.Slug,
		Tags:        d.Tags,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
