package mongostore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/kvstore/mongostore"
)

func TestNew_NilCollection(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { mongostore.New(nil) })
}

func TestStore_EmptyKey(t *testing.T) {
	t.Parallel()

	// Connect does not dial; empty keys are rejected before any round trip.
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://localhost:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := mongostore.New(client.Database("stockroom").Collection("kv_records"))
	ctx := context.Background()

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, kvstore.ErrEmptyKey)
	assert.ErrorIs(t, s.Set(ctx, "", "{}"), kvstore.ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), kvstore.ErrEmptyKey)
}
