package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoOptions(t *testing.T) {
	opts := MongoOptions("mongodb://localhost:27017/?retryWrites=false", "salemre")
	require.NoError(t, opts.Validate())

	require.NotNil(t, opts.AppName)
	assert.Equal(t, "salemre", *opts.AppName)
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, 10*time.Second, *opts.ServerSelectionTimeout)
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(50), *opts.MaxPoolSize)
	require.NotNil(t, opts.RetryWrites)
	assert.False(t, *opts.RetryWrites)
}

func TestDisconnectMongoNil(t *testing.T) {
	assert.NoError(t, DisconnectMongo(nil))
}
