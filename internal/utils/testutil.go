package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/db"
	"salemre/backend/internal/repository/sqlrepo"
)

var testMongoURI string

func init() {
	loadTestEnv()
}

// loadTestEnv loads the project .env file, if any, and reads MONGO_TEST_URI.
func loadTestEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		_ = godotenv.Load()
	}
	testMongoURI = os.Getenv("MONGO_TEST_URI")
}

// SetupTestMongo connects to the MongoDB named by MONGO_TEST_URI and drops the
// given collections. The test is skipped when no URI is configured.
func SetupTestMongo(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()
	if testMongoURI == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	client, database, err := db.ConnectMongo(context.Background(), testMongoURI, dbName, "salemre-test")
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = db.DisconnectMongo(client) })

	for _, collection := range collections {
		_ = database.Collection(collection).Drop(context.Background())
	}
	return database
}

// SetupTestStore returns a migrated store on a private in-memory SQLite database.
func SetupTestStore(t *testing.T) *sqlrepo.Store {
	t.Helper()
	conn, err := db.ConnectSQL("sqlite", ":memory:")
	require.NoError(t, err, "Failed to open SQLite")
	t.Cleanup(func() { _ = conn.Close() })

	store := sqlrepo.New(conn, "sqlite")
	require.NoError(t, store.Migrate(context.Background()))
	return store
}
