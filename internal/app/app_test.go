package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinodjarare/shopgraph/internal/config"
	"github.com/vinodjarare/shopgraph/internal/database"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:     0,
		DatabaseURL:    filepath.Join(t.TempDir(), "app.db"),
		JWTSecret:      "app-secret",
		TokenTTL:       time.Hour,
		BcryptCost:     4,
		LogLevel:       "error",
		LogFormat:      "json",
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   10,
		RateLimitBurst: 10,
		StatsSchedule:  "@every 1h",
	}
}

func TestOpenStore_SQLiteMigrates(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	st, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Ping(ctx))

	n, err := st.CountProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, st.Close(ctx))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	a, err := New(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}
}

func TestNew_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.StatsSchedule = "not a schedule"

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "invalid stats schedule")
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	cfgPath := filepath.Join(dir, "cli.env")
	require.NoError(t, os.WriteFile(cfgPath, []byte("JWT_SECRET=cli\nDATABASE_URL="+dbPath+"\nLOG_LEVEL=error\n"), 0o600))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "--config", cfgPath})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	db, err := database.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'products')`).Scan(&tables))
	assert.Equal(t, 2, tables)
}
