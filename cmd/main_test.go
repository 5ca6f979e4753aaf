package main

import (
	"context"
	"errors"
	"testing"

	"github.com/arzan03/wastetrack/internal/config"
	"github.com/arzan03/wastetrack/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zaptest"
)

func TestOpenStores_Memory(t *testing.T) {
	st, client, err := openStores(context.Background(), &config.Config{MongoURI: db.MemoryURI}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.IsType(t, &db.MemoryUserRepository{}, st.users)
	assert.IsType(t, &db.MemoryWasteRepository{}, st.waste)
}

func TestOpenStores_IndexFailureDisconnects(t *testing.T) {
	var connected *mongo.Client
	connectMongo = func(ctx context.Context, uri string) (*mongo.Client, error) {
		// mongo.Connect does not dial until the first operation.
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		connected = c
		return c, err
	}
	ensureIndexes = func(context.Context, *mongo.Database) error { return errors.New("not primary") }
	t.Cleanup(func() {
		connectMongo = db.ConnectMongoDB
		ensureIndexes = db.EnsureIndexes
	})

	cfg := &config.Config{MongoURI: "mongodb://127.0.0.1:1", MongoDB: "waste_tracker"}
	_, client, err := openStores(context.Background(), cfg, zaptest.NewLogger(t))
	assert.EqualError(t, err, "not primary")
	assert.Nil(t, client)

	require.NotNil(t, connected)
	assert.ErrorIs(t, connected.Disconnect(context.Background()), mongo.ErrClientDisconnected)
}
