package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lborres/reisetagebuch/core"
)

// Store serves the document collections of one MongoDB database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.DocumentStorage = (*Store)(nil)

// Dial returns a provider dial function. The driver pools connections
// internally; the returned Store is shared by every request.
func Dial(uri, database string, logger *slog.Logger) core.DialFunc[core.DocumentStorage] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (core.DocumentStorage, error) {
		logger.Info("connecting to mongodb", slog.String("database", database))

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo ping: %w", err)
		}

		logger.Info("mongodb connected", slog.String("database", database))
		return New(client, database), nil
	}
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) Collection(name string) (core.DocumentCollection, error) {
	if !slices.Contains(core.Collections, name) {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCollection, name)
	}
	return NewCollection(s.db.Collection(name)), nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
