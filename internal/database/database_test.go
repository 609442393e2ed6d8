package database_test

import (
	"context"
	"testing"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/database/dbtest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, database.Migrate(ctx, db.Pool, zerolog.Nop()))

	var count int
	err := db.Pool.QueryRow(ctx, "SELECT count(*) FROM products WHERE id = 'herbal-cream'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMigrate_StatusConstraint(t *testing.T) {
	db := dbtest.New(t)

	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO orders (id, full_name, address, mobile, product, quantity, status)
		VALUES (gen_random_uuid(), 'A', 'B', '077', 'herbal-cream', 1, 'pending')`)

	assert.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := database.Open(ctx, "invalid connection string", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse connection string")
}

func TestNewPool_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	cfg := config.DatabaseConfig{
		Host:            "127.0.0.1",
		Port:            1,
		User:            "postgres",
		Database:        "none",
		MaxConnections:  1,
		MinConnections:  1,
		MaxConnLifetime: 60,
	}

	pool, err := database.NewPool(context.Background(), cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "failed to")
}
