package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnotification "threadly/internal/domain/notification"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	col := db.Collection("notifications")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &NotificationRepository{col: col}
}

func (r *NotificationRepository) ByRecipient(ctx context.Context, userID string) ([]*domainnotification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cur, err := r.col.Find(ctx, bson.M{"recipient": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainnotification.Notification
	for cur.Next(ctx) {
		var doc notificationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *NotificationRepository) Create(ctx context.Context, n *domainnotification.Notification) error {
	_, err := r.col.InsertOne(ctx, newNotificationDocument(n))
	return err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "recipient": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainnotification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"recipient": userID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}

type notificationDocument struct {
	ID        string `bson:"_id"`
	Recipient string `bson:"recipient"`
	Type      string `bson:"type"`
	Message   string `bson:"message"`
	Read      bool   `bson:"read"`
	Link      string `bson:"link"`
	CreatedAt int64  `bson:"created_at"`
}

func newNotificationDocument(n *domainnotification.Notification) notificationDocument {
	return notificationDocument{
		ID:        n.ID,
		Recipient: n.Recipient,
		Type:      string(n.Type),
		Message:   n.Message,
		Read:      n.Read,
		Link:      n.Link,
		CreatedAt: n.CreatedAt.UnixMilli(),
	}
}

func (d notificationDocument) toAggregate() *domainnotification.Notification {
	return &domainnotification.Notification{
		ID:        d.ID,
		Recipient: d.Recipient,
		Type:      domainnotification.Type(d.Type),
		Message:   d.Message,
		Read:      d.Read,
		Link:      d.Link,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainnotification.Repository = (*NotificationRepository)(nil)
