package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Labels:       map[string]string{"test": "birthdaybot-dashboard", "cleanup": "auto"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)
	return endpoint + "/0"
}

func TestRedisSessionStore(t *testing.T) {
	redisURL := setupRedis(t)
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	store := NewRedisSessionStore(rdb, time.Hour)

	session := &Session{
		UserID:      "500",
		Username:    "alice",
		AccessToken: "token",
		Guilds:      []UserGuild{{ID: "100", Name: "Guild", Permissions: adminPermissions}},
	}
	require.NoError(t, store.Create(ctx, session))
	require.NotEmpty(t, session.ID)

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Username)
	_, ok := loaded.AdminGuild("100")
	assert.True(t, ok)

	ttl, err := rdb.TTL(ctx, sessionKey(session.ID)).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestSession_AdminGuild(t *testing.T) {
	session := &Session{Guilds: []UserGuild{
		{ID: "1", Permissions: adminPermissions | 0x400},
		{ID: "2", Permissions: 0x400},
	}}

	_, ok := session.AdminGuild("1")
	assert.True(t, ok)
	_, ok = session.AdminGuild("2")
	assert.False(t, ok)
	_, ok = session.AdminGuild("3")
	assert.False(t, ok)
}
