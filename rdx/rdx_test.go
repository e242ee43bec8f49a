package rdx

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)

	prev := Conn
	Conn = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { Conn = prev })
}

func TestSetGetDel(t *testing.T) {
	useMiniredis(t)

	require.NoError(t, RdxSet("k", "v"))

	got, err := RdxGet("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, RdxDel("k"))
	_, err = RdxGet("k")
	assert.Error(t, err)
}

func TestSetNXLock(t *testing.T) {
	useMiniredis(t)

	ok, err := RdxSetNX("register_lock:reg-1", "1", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// second acquisition must fail while held
	ok, err = RdxSetNX("register_lock:reg-1", "1", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RdxDel("register_lock:reg-1"))
	ok, _ = RdxSetNX("register_lock:reg-1", "1", 0)
	assert.True(t, ok)
}

func TestHashOps(t *testing.T) {
	useMiniredis(t)

	require.NoError(t, RdxHset("tokki", "user1", "token-a"))

	got, err := RdxHget("tokki", "user1")
	require.NoError(t, err)
	assert.Equal(t, "token-a", got)

	require.NoError(t, RdxHdel("tokki", "user1"))
	_, err = RdxHget("tokki", "user1")
	assert.Error(t, err)
}

func TestRegisterHeartbeat(t *testing.T) {
	useMiniredis(t)

	assert.False(t, RegisterSeen("reg-9"))

	require.NoError(t, RegisterHeartbeat("reg-9"))
	assert.True(t, RegisterSeen("reg-9"))
}

func TestSetWithTTLExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	prev := Conn
	Conn = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { Conn = prev })

	require.NoError(t, RdxSetWithTTL("k", "v", 10*time.Second))
	got, err := RdxGet("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	mr.FastForward(11 * time.Second)
	_, err = RdxGet("k")
	assert.Error(t, err)
}
