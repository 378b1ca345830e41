//go:build e2e

package metadatastore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// startPostgres launches a disposable Postgres container for one test
// run. The Ryuk reaper that testcontainers attaches to the Docker
// daemon cleans it up if the process is killed before Terminate runs.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("filevault_e2e"),
		postgres.WithUsername("filevault"),
		postgres.WithPassword("filevault"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://filevault:filevault@%s:%s/filevault_e2e?sslmode=disable", host, port.Port())
}

func TestStore_Postgres_MigratesAndRoundTripsUser(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := metadatastore.New(ctx, metadatastore.Config{
		Driver: metadatastore.DriverPostgres,
		DSN:    dsn,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Healthcheck(ctx))

	user := &model.User{
		ID:       uuid.NewString(),
		Email:    "e2e@example.com",
		Username: "e2e-user",
		Role:     model.RoleFree,
		Status:   model.StatusActive,
	}
	require.NoError(t, store.CreateUser(ctx, user))

	fetched, err := store.GetUserByEmail(ctx, "e2e@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, fetched.ID)
	require.Equal(t, model.RoleFree, fetched.Role)
}

func TestStore_Postgres_AddFileUsage_RejectsOverQuota(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := metadatastore.New(ctx, metadatastore.Config{
		Driver: metadatastore.DriverPostgres,
		DSN:    dsn,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	user := &model.User{
		ID:       uuid.NewString(),
		Email:    "quota-e2e@example.com",
		Username: "quota-e2e-user",
		Role:     model.RoleFree,
		Status:   model.StatusActive,
	}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.CreateQuota(ctx, &model.Quota{
		UserID:      user.ID,
		MaxStorage:  100,
		MaxFileSize: 100,
		MaxFiles:    model.Unlimited,
	}))

	require.NoError(t, store.AddFileUsage(ctx, user.ID, 60))

	err = store.AddFileUsage(ctx, user.ID, 60)
	require.ErrorIs(t, err, metadatastore.ErrQuotaExceeded)

	q, err := store.GetQuota(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(60), q.StorageBytes, "rejected increment must not be applied")
	require.Equal(t, int64(1), q.FileCount)
}
