package mongodb

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobDocument is one blob in the collection
type BlobDocument struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Size      int64     `bson:"size"`
	CreatedAt time.Time `bson:"created_at"`
}

// Backend serves blobs from a MongoDB collection
type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, database, collection string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Backend{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Stat reads only the size field.
func (m *Backend) Stat(ctx context.Context, id string) (int64, error) {
	opts := options.FindOne().SetProjection(bson.M{"size": 1})
	var doc BlobDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat blob: %w", err)
	}
	return doc.Size, nil
}

func (m *Backend) Get(ctx context.Context, id string) ([]byte, error) {
	var doc BlobDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if doc.Data == nil {
		doc.Data = []byte{}
	}
	return doc.Data, nil
}

func (m *Backend) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	return nil
}

func (m *Backend) Close() error {
	return m.client.Disconnect(context.Background())
}
