package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestMongoRepositories(t *testing.T) {
	uri := os.Getenv("MONGODB_URI_TEST")
	if uri == "" {
		t.Skip("MONGODB_URI_TEST not set, skipping MongoDB integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable: %v", err)
	}

	db := client.Database("helpdesk_test_" + bson.NewObjectID().Hex())
	defer func() { _ = db.Drop(context.Background()) }()
	require.NoError(t, EnsureMongoIndexes(ctx, db))

	t.Run("tickets", func(t *testing.T) { testTicketRepository(t, NewMongoTicketRepository(db)) })
	t.Run("users", func(t *testing.T) { testUserRepository(t, NewMongoUserRepository(db), "mongo@example.com") })
}

func TestPostgresRepositories(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN_TEST")
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set, skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("Postgres not reachable: %v", err)
	}

	for _, file := range []string{"0001_create_users.sql", "0002_create_tickets.sql"} {
		sql, err := os.ReadFile("../../migrations/" + file)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(sql))
		require.NoError(t, err)
	}

	email := "pg-" + NewID() + "@example.com"
	t.Run("tickets", func(t *testing.T) { testTicketRepository(t, NewPostgresTicketRepository(pool)) })
	t.Run("users", func(t *testing.T) { testUserRepository(t, NewPostgresUserRepository(pool), email) })
}
