package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testPool        *pgxpool.Pool
	testDatabaseURL string
)

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Exit(runWithContainer(m))
}

func runWithContainer(m *testing.M) int {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	testDatabaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		return 1
	}

	testPool, err = Connect(ctx, testDatabaseURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		return 1
	}
	defer testPool.Close()

	if err := RunMigrationsWithLock(ctx, testPool); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		return 1
	}

	return m.Run()
}

// setupTestDB returns the shared pool and truncates every table after the test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Cleanup(func() {
		_, err := testPool.Exec(context.Background(),
			"TRUNCATE users, notes, calendar_notes, custom_foods, food_entries, tier_categories, tier_food_items, tier_votes CASCADE")
		if err != nil {
			t.Logf("Failed to truncate tables: %v", err)
		}
	})

	return testPool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, email string) *domain.User {
	t.Helper()
	user, err := NewUserRepo(pool).Create(context.Background(), email, "tester", "hash")
	require.NoError(t, err)
	return user
}

type countingObserver struct {
	calls int
}

func (o *countingObserver) QueryFinished(string, time.Duration, error) { o.calls++ }

func TestConnect_TracesQueries(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	observer := &countingObserver{}
	pool, err := Connect(context.Background(), testDatabaseURL, observer)
	require.NoError(t, err)
	defer pool.Close()

	var one int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT 1").Scan(&one))
	require.Equal(t, 1, one)
	require.Positive(t, observer.calls)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url ::", nil)
	require.Error(t, err)
}

func TestRunMigrationsWithLock_Idempotent(t *testing.T) {
	pool := setupTestDB(t)
	require.NoError(t, RunMigrationsWithLock(context.Background(), pool))
}
