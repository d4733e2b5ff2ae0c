// Package natstest starts embedded NATS servers for tests.
package natstest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/require"

	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats"
)

// StartServer runs a server on a free loopback port, stopped when the test ends.
func StartServer(t testing.TB) *nats.ServerManager {
	t.Helper()
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	sm, err := nats.NewServerManager(context.Background(), nats.ServerManagerParams{
		Host: "127.0.0.1",
		Port: port,
		Name: "test-" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	t.Cleanup(sm.Stop)
	return sm
}

// Group returns a group name no other test uses.
func Group() string {
	return "g" + uuid.NewString()[:8]
}
