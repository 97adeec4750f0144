package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Service interface {
	Health() map[string]string
	Client() *mongo.Client
	Database() *mongo.Database
	Disconnect(ctx context.Context) error
}

type service struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(uri, dbName string) (Service, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return &service{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := s.client.Ping(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return map[string]string{
			"message": "db down",
			"error":   err.Error(),
		}
	}

	return map[string]string{
		"message": "It's healthy",
	}
}

func (s *service) Client() *mongo.Client {
	return s.client
}

func (s *service) Database() *mongo.Database {
	return s.db
}

func (s *service) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateUniqueIndex creates a unique index on the given collection keys.
func CreateUniqueIndex(ctx context.Context, collection *mongo.Collection, keys interface{}, fieldName string) error {
	indexModel := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("failed to create index for %s: %w", fieldName, err)
	}
	return nil
}

// EnsureIndexes creates the unique indexes the data model depends on:
// member identity fields and the one-vote-record-per-member constraint.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	members := db.Collection("members")
	for field, keys := range map[string]bson.D{
		"registerNumber":   {{Key: "registerNumber", Value: 1}},
		"email":            {{Key: "email", Value: 1}},
		"membershipNumber": {{Key: "membershipNumber", Value: 1}},
	} {
		if err := CreateUniqueIndex(ctx, members, keys, field); err != nil {
			return err
		}
	}

	votes := db.Collection("votes")
	if err := CreateUniqueIndex(ctx, votes, bson.D{{Key: "memberId", Value: 1}}, "memberId"); err != nil {
		return err
	}
	return CreateUniqueIndex(ctx, votes, bson.D{{Key: "registerNumber", Value: 1}}, "registerNumber")
}
