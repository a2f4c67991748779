package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ddportal/internal/gateway"
	"ddportal/internal/models"
)

func newRedisPersister(t *testing.T) (*RedisPersister, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPersister(client), mr
}

func TestRedisPersisterRoundTrip(t *testing.T) {
	p, mr := newRedisPersister(t)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "s1", []byte("sealed"), time.Now().Add(10*time.Minute)))
	got, err := p.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got)
	assert.True(t, mr.Exists(redisKeyPrefix+"s1"))
	assert.InDelta(t, (10 * time.Minute).Seconds(), mr.TTL(redisKeyPrefix+"s1").Seconds(), 2)

	require.NoError(t, p.Delete(ctx, "s1"))
	_, err = p.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisPersisterMissingKey(t *testing.T) {
	p, _ := newRedisPersister(t)

	_, err := p.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, p.Delete(context.Background(), "nobody"))
}

func TestRedisPersisterExpiry(t *testing.T) {
	p, mr := newRedisPersister(t)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "s1", []byte("sealed"), time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)
	_, err := p.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, p.Save(ctx, "s2", []byte("sealed"), time.Now().Add(time.Minute)))
	require.NoError(t, p.Save(ctx, "s2", []byte("sealed"), time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(redisKeyPrefix+"s2"), "an already expired credential is not kept")
}

func TestStoreOverRedis(t *testing.T) {
	p, _ := newRedisPersister(t)
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)
	auth := &fakeAuth{
		login: gateway.LoginResult{Token: "tok", User: &models.Identity{ID: 4, Role: models.RoleUser}},
		me:    models.Identity{ID: 4, Role: models.RoleUser},
	}

	st := NewStore(auth, p, sealer, time.Hour, zap.NewNop().Sugar())
	s := st.Session("")
	_, err = st.SignIn(context.Background(), s, "a@b.c", "pw")
	require.NoError(t, err)

	restarted := NewStore(auth, p, sealer, time.Hour, zap.NewNop().Sugar())
	again := restarted.Session(s.ID)
	restarted.Restore(context.Background(), again)

	id, ok := again.Identity()
	require.True(t, ok)
	assert.Equal(t, models.ID(4), id.ID)
	assert.Equal(t, "tok", id.Credential)
}
