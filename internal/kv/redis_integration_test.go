//go:build integration

package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// startRedis runs a throwaway Redis container.
//
// Requirements:
//   - Docker daemon running and accessible
//   - Docker image: redis:7-alpine
func startRedis(t *testing.T) *Redis {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	r, err := NewRedis(ctx, RedisOptions{Addr: host + ":" + port.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_Repository(t *testing.T) {
	r := startRedis(t)
	repo := NewRepository(r, WithPrefix("test:"), WithDefaultVolunteer("volunteer-123"))
	ctx := context.Background()

	err := repo.Update(ctx, func(tx store.Tx) error {
		return tx.PutDonation(&models.Donation{ID: "d1", Target: models.TargetHuman, Status: models.DonationAvailable})
	})
	require.NoError(t, err)

	raw, err := r.Get(ctx, "test:donations", "test:sponsors")
	require.NoError(t, err)
	assert.Contains(t, raw, "test:donations")
	assert.NotContains(t, raw, "test:sponsors")

	err = repo.View(ctx, func(tx store.Tx) error {
		d, err := tx.Donation("d1")
		require.NoError(t, err)
		assert.Equal(t, models.DonationAvailable, d.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestRedis_ConcurrentCredits(t *testing.T) {
	r := startRedis(t)
	repo := NewRepository(r)
	ctx := context.Background()

	// Fewer writers than maxTxnRetries so every update lands.
	const writers = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Update(ctx, func(tx store.Tx) error {
				p, err := tx.Profile("vol-1")
				if errors.Is(err, store.ErrNotFound) {
					p = &models.VolunteerProfile{VolunteerID: "vol-1"}
				} else if err != nil {
					return err
				}
				p.Credits += 10
				return tx.PutProfile(p)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := repo.View(ctx, func(tx store.Tx) error {
		p, err := tx.Profile("vol-1")
		require.NoError(t, err)
		assert.Equal(t, writers*10, p.Credits)
		return nil
	})
	require.NoError(t, err)
}
