package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

type ChatRepository struct {
	col      *mongo.Collection
	messages *mongo.Collection
	ids      IDSource
}

func NewChatRepository(db *mongo.Database, ids IDSource) *ChatRepository {
	return &ChatRepository{
		col:      db.Collection(collectionChats),
		messages: db.Collection(collectionMessages),
		ids:      ids,
	}
}

type chatDoc struct {
	ID           int64     `bson:"_id"`
	Participants []int64   `bson:"participants"`
	Messages     []int64   `bson:"messages"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d chatDoc) toDomain() *domain.Chat {
	c := &domain.Chat{ID: d.ID, Participants: d.Participants, Messages: d.Messages, CreatedAt: d.CreatedAt}
	if c.Participants == nil {
		c.Participants = []int64{}
	}
	if c.Messages == nil {
		c.Messages = []int64{}
	}
	return c
}

func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	doc := chatDoc{
		ID:           r.ids.Next(),
		Participants: chat.Participants,
		Messages:     []int64{},
		CreatedAt:    chat.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id int64) (*domain.Chat, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc chatDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) ListByParticipant(ctx context.Context, contactID int64) ([]*domain.Chat, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"participants": contactID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer cur.Close(ctx)

	var docs []chatDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	out := make([]*domain.Chat, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ChatRepository) UpdateParticipants(ctx context.Context, id int64, participants []int64) (*domain.Chat, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc chatDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"participants": participants}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("update chat participants: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, chatID, messageID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$push": bson.M{"messages": messageID}})
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// Delete removes the chat together with its messages.
func (r *ChatRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc chatDoc
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrChatNotFound
		}
		return fmt.Errorf("delete chat: %w", err)
	}
	if len(doc.Messages) == 0 {
		return nil
	}
	if _, err := r.messages.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": doc.Messages}}); err != nil {
		return fmt.Errorf("delete chat messages: %w", err)
	}
	return nil
}

type MessageRepository struct {
	col *mongo.Collection
	ids IDSource
}

func NewMessageRepository(db *mongo.Database, ids IDSource) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages), ids: ids}
}

type messageDoc struct {
	ID        int64     `bson:"_id"`
	ContactID int64     `bson:"contact_id"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

func (d messageDoc) toDomain() *domain.Message {
	return &domain.Message{ID: d.ID, ContactID: d.ContactID, Content: d.Content, Timestamp: d.Timestamp}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	doc := messageDoc{ID: r.ids.Next(), ContactID: msg.ContactID, Content: msg.Content, Timestamp: msg.Timestamp}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return doc.toDomain(), nil
}

// Latest relies on snowflake ids growing with time, so _id breaks timestamp ties.
func (r *MessageRepository) Latest(ctx context.Context, ids []int64, limit int) ([]*domain.Message, error) {
	if len(ids) == 0 {
		return []*domain.Message{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]*domain.Message, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
