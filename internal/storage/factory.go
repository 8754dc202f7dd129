package storage

import (
	"context"
	"fmt"

	"github.com/ambryfs/ambryfs-go/internal/storage/memory"
	"github.com/ambryfs/ambryfs-go/internal/storage/mongodb"
	"github.com/ambryfs/ambryfs-go/internal/storage/postgres"
	"github.com/ambryfs/ambryfs-go/internal/storage/s3"
)

// Type names a store.
type Type string

const (
	// TypeAmbry is the HTTP blob store itself; it has no Backend.
	TypeAmbry    Type = "ambry"
	TypeS3       Type = "s3"
	TypePostgres Type = "postgres"
	TypeMongoDB  Type = "mongodb"
	TypeMemory   Type = "memory"
)

// Config holds configuration for creating a backend
type Config struct {
	Type Type

	S3 s3.Config

	PostgresConnStr string
	PostgresTable   string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// NewBackend creates the backend named by config.Type.
func NewBackend(ctx context.Context, config Config) (Backend, error) {
	switch config.Type {
	case TypeS3:
		return s3.New(ctx, config.S3)

	case TypePostgres:
		if config.PostgresConnStr == "" {
			return nil, fmt.Errorf("PostgreSQL connection string is required")
		}
		table := config.PostgresTable
		if table == "" {
			table = "blobs"
		}
		return postgres.New(ctx, config.PostgresConnStr, table)

	case TypeMongoDB:
		if config.MongoURI == "" {
			return nil, fmt.Errorf("MongoDB URI is required")
		}
		database := config.MongoDatabase
		if database == "" {
			database = "ambryfs"
		}
		collection := config.MongoCollection
		if collection == "" {
			collection = "blobs"
		}
		return mongodb.New(ctx, config.MongoURI, database, collection)

	case TypeMemory:
		return memory.New(), nil

	case TypeAmbry:
		return nil, fmt.Errorf("%s store is reached over HTTP and has no backend", TypeAmbry)

	default:
		return nil, fmt.Errorf("unknown backend type: %s", config.Type)
	}
}
