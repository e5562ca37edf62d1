//go:build integration_pg

// Package pgtest starts a throwaway postgres for integration tests and applies the schema
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"jobacq/internal/platform/store"
	"jobacq/internal/schema"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start runs postgres:16-alpine and returns its DSN; the container stops on cleanup
func Start(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "jobacq",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/jobacq?sslmode=disable", host, port.Port())
}

// Open starts a container, opens the store against it and applies the schema
func Open(t *testing.T) store.TxRunner {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		AppName: "jobacq-integration",
		PG:      store.PGConfig{Enabled: true, URL: Start(t), MaxConns: 16},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := schema.Apply(ctx, st.PG); err != nil {
		t.Fatalf("schema.Apply: %v", err)
	}
	return st.PG
}
