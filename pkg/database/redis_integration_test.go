package database

import (
	"context"
	"net"
	"testing"

	testtool "watch_earn_service/pkg/test_tool"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStorage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	redisContainer, host, port, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if redisContainer != nil {
		t.Cleanup(func() { _ = redisContainer.Terminate(ctx) })
	}
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	client, err := NewRedisClient(net.JoinHostPort(host, port), "", 0)
	require.NoError(t, err)

	storageContract(t, NewRedisStorage(client, "test:"))
}
