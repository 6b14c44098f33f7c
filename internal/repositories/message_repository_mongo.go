package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCounterKey = "messages"

// messageDocument is the stored shape of a direct message in MongoDB
type messageDocument struct {
	ID         int64     `bson:"_id"`
	SenderID   int64     `bson:"sender_id"`
	ReceiverID int64     `bson:"receiver_id"`
	Body       string    `bson:"message"`
	CreatedAt  time.Time `bson:"created_at"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoMessageRepository implements MessageRepository for MongoDB. Users live
// in PostgreSQL, so existence checks and sender names go through UserRepository.
type MongoMessageRepository struct {
	messages *mongo.Collection
	counters *mongo.Collection
	users    UserRepository
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database, users UserRepository) *MongoMessageRepository {
	return &MongoMessageRepository{
		messages: db.Collection("messages"),
		counters: db.Collection("counters"),
		users:    users,
	}
}

// EnsureIndexes creates the conversation lookup index
func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "receiver_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	return err
}

// nextID hands out monotonically increasing integer ids so message ids keep
// the same shape as the PostgreSQL store.
func (r *MongoMessageRepository) nextID(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": messageCounterKey},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate message id: %w", err)
	}
	return counter.Seq, nil
}

// CreateMessage stores msg after checking both participants exist
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.MessageView, error) {
	names, err := r.users.UsernamesByID(ctx, []uint{msg.SenderID, msg.ReceiverID})
	if err != nil {
		return nil, err
	}
	senderName, okSender := names[msg.SenderID]
	if _, okReceiver := names[msg.ReceiverID]; !okSender || !okReceiver {
		return nil, ErrMissingReference
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	doc := messageDocument{
		ID:         id,
		SenderID:   int64(msg.SenderID),
		ReceiverID: int64(msg.ReceiverID),
		Body:       msg.Body,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.messages.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	msg.ID = uint(doc.ID)
	msg.CreatedAt = doc.CreatedAt
	return &models.MessageView{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		SenderName: senderName,
		CreatedAt:  msg.CreatedAt,
	}, nil
}

// GetConversation returns the messages between the two users, oldest first
func (r *MongoMessageRepository) GetConversation(ctx context.Context, userID, otherID uint) ([]models.MessageView, error) {
	a, b := int64(userID), int64(otherID)
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "receiver_id": b},
		bson.M{"sender_id": b, "receiver_id": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}

	names, err := r.users.UsernamesByID(ctx, []uint{userID, otherID})
	if err != nil {
		return nil, err
	}
	messages := make([]models.MessageView, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, models.MessageView{
			ID:         uint(doc.ID),
			SenderID:   uint(doc.SenderID),
			ReceiverID: uint(doc.ReceiverID),
			Body:       doc.Body,
			SenderName: names[uint(doc.SenderID)],
			CreatedAt:  doc.CreatedAt,
		})
	}
	return messages, nil
}
