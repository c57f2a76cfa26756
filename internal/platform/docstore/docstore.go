package docstore

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionPersonnel      = "personnel"
	CollectionQualifications = "qualifications"
)

// Store is the document database handle shared by the personnel and analytics packages.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.WithField("database", database).Info("connected to document store")
	return &Store{Client: client, DB: client.Database(database)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *Store) Personnel() *mongo.Collection {
	return s.DB.Collection(CollectionPersonnel)
}

func (s *Store) Qualifications() *mongo.Collection {
	return s.DB.Collection(CollectionQualifications)
}

// CollectionPresent reports whether the named collection exists and holds at least one document.
func (s *Store) CollectionPresent(ctx context.Context, name string) (bool, error) {
	names, err := s.DB.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		return false, nil
	}
	count, err := s.DB.Collection(name).CountDocuments(ctx, bson.D{}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.Personnel().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "employee_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("personnel index: %w", err)
	}
	if _, err := s.Qualifications().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "employee_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("qualifications index: %w", err)
	}
	return nil
}
