package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stwalsh4118/homefinder/api/internal/config"
)

// Test configuration for local PostgreSQL
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "homefinder_test"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// openTestDB connects to the test database or skips the test when none is reachable.
func openTestDB(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}
	return db
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		Name:     "homefinder",
		User:     "app",
		Password: "pw",
	}

	want := "postgres://app:pw@db:5433/homefinder?sslmode=disable"
	if got := DSN(cfg); got != want {
		t.Errorf("Expected DSN %s, got %s", want, got)
	}
}

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames() failed: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("Expected at least one embedded migration")
	}
	if names[0] != "0001_init.sql" {
		t.Errorf("Expected first migration 0001_init.sql, got %s", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Migrations not sorted: %s before %s", names[i-1], names[i])
		}
	}
}

func TestPing_NilPool(t *testing.T) {
	db := &Database{}
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail without a pool")
	}
}

func TestStats_NilPool(t *testing.T) {
	db := &Database{}
	if db.Stats() != nil {
		t.Error("Expected nil stats without a pool")
	}
}

func TestNewPostgresPool_Success(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if db.Pool == nil {
		t.Error("Expected Pool to be initialized")
	}
	if db.Stats() == nil {
		t.Error("Expected stats to be available")
	}
}

func TestNewPostgresPool_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	_, err := NewPostgresPool(ctx, cfg)
	if err == nil {
		t.Error("Expected error when connecting to invalid host")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("First migration failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}

	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ANY($1)`,
		[]string{"users", "property_types", "properties", "property_images", "favorites", "reviews", "tokens"},
	).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count tables: %v", err)
	}
	if count != 7 {
		t.Errorf("Expected 7 tables, got %d", count)
	}
}

func TestPing_AfterClose(t *testing.T) {
	db := openTestDB(t)

	db.Close()

	if err := db.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after pool is closed")
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	db := openTestDB(t)

	// Close multiple times should not panic
	db.Close()
	db.Close()
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	stats := db.Stats()
	if stats == nil {
		t.Fatal("Expected stats to be available")
	}
	if stats.MaxConns() != int32(getTestConfig().PoolMax) {
		t.Errorf("Expected MaxConns %d, got %d", getTestConfig().PoolMax, stats.MaxConns())
	}
}
