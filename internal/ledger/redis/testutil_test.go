package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	ledgerredis "github.com/finquarium/proof-of-contribution/internal/ledger/redis"
)

// setupTestStore starts a Redis container and returns the store, the raw
// client for direct assertions, and a cleanup function.
func setupTestStore(t *testing.T) (*ledgerredis.ContributionStore, *goredis.Client, func()) {
	t.Helper()

	if os.Getenv("TESTCONTAINERS_DISABLED") != "" {
		t.Skip("testcontainers disabled")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get endpoint")

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	store := ledgerredis.NewContributionStoreFromClient(client)
	require.NoError(t, store.Ping(ctx), "failed to ping redis")

	cleanup := func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return store, client, cleanup
}
