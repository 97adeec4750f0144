package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

var testURI string

func mustStartMongoContainer() (func(context.Context) error, error) {
	dbContainer, err := mongodb.Run(context.Background(), "mongo:latest")
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "27017/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testURI = fmt.Sprintf("mongodb://%s:%s", dbHost, dbPort.Port())

	return dbContainer.Terminate, err
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	teardown, err := mustStartMongoContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start mongodb container")
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Could not teardown mongodb container")
		}
	}
	os.Exit(code)
}

func TestNew(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv, err := New(testURI, "club_test")
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if srv == nil {
		t.Fatal("New() returned nil")
	}
	defer srv.Disconnect(context.Background())
}

func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv, err := New(testURI, "club_test")
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Disconnect(context.Background())

	stats := srv.Health()

	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestEnsureIndexes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv, err := New(testURI, "club_index_test")
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Disconnect(context.Background())

	ctx := context.Background()
	if err := EnsureIndexes(ctx, srv.Database()); err != nil {
		t.Fatalf("EnsureIndexes() returned error: %v", err)
	}

	// The memberId unique index must reject a second vote record for the
	// same member.
	votes := srv.Database().Collection("votes")
	first := bson.M{"memberId": "m1", "registerNumber": int64(810018104080), "done": false}
	if _, err := votes.InsertOne(ctx, first); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	second := bson.M{"memberId": "m1", "registerNumber": int64(810018104081), "done": false}
	if _, err := votes.InsertOne(ctx, second); err == nil {
		t.Fatal("expected duplicate key error on second vote record for the same member")
	}
}
