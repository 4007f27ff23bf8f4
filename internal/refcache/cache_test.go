package refcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granabot/granabot/internal/model"
)

const (
	idAlpha = "0123456789abcdef0000aaaa"
	idBeta  = "fedcba98765432100000bbbb"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := New(ttl)
	now := time.Date(2025, time.March, 13, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestResolveOrdinal(t *testing.T) {
	c, _ := newTestCache(DefaultTTL)
	c.Put("conv", []string{idAlpha, idBeta})

	id, ok := c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 1})
	require.True(t, ok)
	assert.Equal(t, idAlpha, id)

	id, ok = c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 2})
	require.True(t, ok)
	assert.Equal(t, idBeta, id)

	_, ok = c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 3})
	assert.False(t, ok, "ordinal past the listing must not resolve")
}

func TestResolveShortID(t *testing.T) {
	c, _ := newTestCache(DefaultTTL)
	c.Put("conv", []string{idAlpha, idBeta})

	id, ok := c.Resolve("conv", model.Reference{Kind: model.RefShortID, Hex: "00bbbb"})
	require.True(t, ok)
	assert.Equal(t, idBeta, id)

	// Short ids are case-insensitive.
	id, ok = c.Resolve("conv", model.Reference{Kind: model.RefShortID, Hex: "00AAAA"})
	require.True(t, ok)
	assert.Equal(t, idAlpha, id)

	_, ok = c.Resolve("conv", model.Reference{Kind: model.RefShortID, Hex: "ffffff"})
	assert.False(t, ok, "short id search space is the cached listing only")
}

func TestResolveFullIDBypassesCache(t *testing.T) {
	c, _ := newTestCache(DefaultTTL)

	// No Put at all: a full id still resolves.
	id, ok := c.Resolve("conv", model.Reference{Kind: model.RefFullID, Hex: "0123456789ABCDEF01234567"})
	require.True(t, ok)
	assert.Equal(t, "0123456789abcdef01234567", id)
}

func TestResolveExpiry(t *testing.T) {
	c, now := newTestCache(time.Minute)
	c.Put("conv", []string{idAlpha})

	*now = now.Add(59 * time.Second)
	_, ok := c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 1})
	assert.True(t, ok, "entry within TTL must resolve")

	*now = now.Add(2 * time.Second)
	_, ok = c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 1})
	assert.False(t, ok, "expired entry must behave as absent")

	// Full ids are unaffected by expiry.
	_, ok = c.Resolve("conv", model.Reference{Kind: model.RefFullID, Hex: idAlpha})
	assert.True(t, ok)
}

func TestPutReplaces(t *testing.T) {
	c, _ := newTestCache(DefaultTTL)
	c.Put("conv", []string{idAlpha, idBeta})
	c.Put("conv", []string{idBeta})

	id, ok := c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 1})
	require.True(t, ok)
	assert.Equal(t, idBeta, id, "a new listing replaces the previous one")

	_, ok = c.Resolve("conv", model.Reference{Kind: model.RefOrdinal, Ordinal: 2})
	assert.False(t, ok)
}

func TestConversationsAreIsolated(t *testing.T) {
	c, _ := newTestCache(DefaultTTL)
	c.Put("conv-a", []string{idAlpha})

	_, ok := c.Resolve("conv-b", model.Reference{Kind: model.RefOrdinal, Ordinal: 1})
	assert.False(t, ok)

	_, ok = c.Resolve("conv-b", model.Reference{Kind: model.RefShortID, Hex: idAlpha[18:]})
	assert.False(t, ok, "short ids never cross conversations")
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTTL, c.ttl)

	c = New(-time.Second)
	assert.Equal(t, DefaultTTL, c.ttl)
}
