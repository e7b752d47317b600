// internals/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ymd(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildKeyDeterministic(t *testing.T) {
	uid := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	a := BuildKey("daily", "teacher", uid, map[string]string{"section": "s1", "date": "2026-08-31"})
	b := BuildKey("daily", "teacher", uid, map[string]string{"date": "2026-08-31", "section": "s1"})
	assert.Equal(t, a, b, "urutan map tidak boleh mengubah key")

	// Identitas caller ikut di key: role/uid beda → key beda
	c := BuildKey("daily", "admin", uid, map[string]string{"section": "s1", "date": "2026-08-31"})
	assert.NotEqual(t, a, c)

	d := BuildKey("daily", "teacher", uuid.New(), map[string]string{"section": "s1", "date": "2026-08-31"})
	assert.NotEqual(t, a, d)
}

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	_, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "store kosong harus miss")

	require.NoError(t, st.Set(ctx, "k", []byte(`{"x":1}`), time.Minute, []string{"t1"}))

	v, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"x":1}`), v)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, st.Set(ctx, "k", []byte("v"), 10*time.Millisecond, nil))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry kadaluarsa harus miss")
	assert.Equal(t, 0, st.Len(), "entry kadaluarsa harus dibuang saat disentuh")
}

func TestMemoryStoreInvalidateTags(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	sec := uuid.New()
	day := ymd("2026-08-31")
	other := ymd("2026-09-01")

	require.NoError(t, st.Set(ctx, "roster", []byte("a"), time.Minute, []string{SectionTag(sec, day)}))
	require.NoError(t, st.Set(ctx, "overview", []byte("b"), time.Minute, []string{OverviewTag(day)}))
	require.NoError(t, st.Set(ctx, "besok", []byte("c"), time.Minute, []string{SectionTag(sec, other)}))

	n, err := st.InvalidateTags(ctx, []string{SectionTag(sec, day), OverviewTag(day)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := st.Get(ctx, "roster")
	assert.False(t, ok)
	_, ok, _ = st.Get(ctx, "overview")
	assert.False(t, ok)

	// Tanggal lain tidak ikut kena
	_, ok, _ = st.Get(ctx, "besok")
	assert.True(t, ok)
}

func TestMemoryStoreOverwriteReindexesTags(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, st.Set(ctx, "k", []byte("v1"), time.Minute, []string{"old"}))
	require.NoError(t, st.Set(ctx, "k", []byte("v2"), time.Minute, []string{"new"}))

	// Tag lama sudah dilepas: invalidasi "old" tidak boleh menghapus entry
	n, err := st.InvalidateTags(ctx, []string{"old"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	v, ok, _ := st.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), v)

	n, err = st.InvalidateTags(ctx, []string{"new"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCacheReadAfterWriteInvalidation(t *testing.T) {
	ctx := context.Background()
	ch := New(NewMemoryStore(), time.Minute)

	sec := uuid.New()
	day := ymd("2026-08-31")
	uid := uuid.New()

	key := BuildKey("daily", "teacher", uid, map[string]string{"section": sec.String(), "date": "2026-08-31"})
	ch.Set(ctx, key, []byte(`{"present":0}`), []string{SectionTag(sec, day)})

	ovwKey := BuildKey("overview", "admin", uid, map[string]string{"date": "2026-08-31"})
	ch.Set(ctx, ovwKey, []byte(`[]`), []string{OverviewTag(day)})

	if _, ok := ch.Get(ctx, key); !ok {
		t.Fatal("expected HIT sebelum invalidasi")
	}

	// Jalur tulis: satu section + tanggal → roster DAN overview tanggal itu gugur
	ch.InvalidateSectionDate(ctx, sec, day)

	_, ok := ch.Get(ctx, key)
	assert.False(t, ok, "read-after-write harus MISS")
	_, ok = ch.Get(ctx, ovwKey)
	assert.False(t, ok, "overview harian harus ikut gugur")
}

func TestCacheNilSafe(t *testing.T) {
	// Handler boleh jalan tanpa cache sama sekali
	var ch *Cache
	_, ok := ch.Get(context.Background(), "k")
	assert.False(t, ok)
	ch.Set(context.Background(), "k", []byte("v"), nil)
	ch.InvalidateSectionDate(context.Background(), uuid.New(), ymd("2026-08-31"))
}
