// internals/cache/cache.go
//
// Cache baca absensi: read-through + TTL pendek.
// Tiap entry dikasih tag scope (section+tanggal / overview tanggal),
// jadi invalidasi tulis cukup lookup tag, bukan pattern-match string key.
package cache

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/configs"
)

// Store: backend kunci-nilai dengan TTL + index tag.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags []string) error
	InvalidateTags(ctx context.Context, tags []string) (int, error)
}

type Cache struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{store: store, ttl: ttl}
}

// NewFromEnv: Redis kalau REDIS_ADDR di-set, fallback in-memory.
func NewFromEnv() *Cache {
	if configs.RedisAddr != "" {
		return New(NewRedisStore(configs.RedisAddr), configs.CacheTTL)
	}
	return New(NewMemoryStore(), configs.CacheTTL)
}

func (ch *Cache) TTL() time.Duration { return ch.ttl }

/* ===============================
   Key & tag builders
=================================*/

const dateLayout = "2006-01-02"

// BuildKey: komposit deterministik route + query (diurutkan) + identitas caller.
// Route yang sama bisa beda isi per caller (visibility per role), jadi caller ikut di key.
func BuildKey(route, callerRole string, callerID uuid.UUID, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("att:")
	b.WriteString(route)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	b.WriteString("|role=")
	b.WriteString(callerRole)
	b.WriteString("|uid=")
	b.WriteString(callerID.String())
	return b.String()
}

// SectionTag: scope satu section + satu tanggal.
func SectionTag(sectionID uuid.UUID, date time.Time) string {
	return "att:sec:" + sectionID.String() + ":" + date.Format(dateLayout)
}

// OverviewTag: scope agregat satu sekolah untuk satu tanggal.
// Tulisan di section manapun membatalkan overview tanggal itu.
func OverviewTag(date time.Time) string {
	return "att:ovw:" + date.Format(dateLayout)
}

/* ===============================
   Best-effort wrappers
=================================*/

// Get: miss kalau backend error (cache mati ≠ request gagal).
func (ch *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if ch == nil || ch.store == nil {
		return nil, false
	}
	b, ok, err := ch.store.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] cache get %q: %v", key, err)
		return nil, false
	}
	return b, ok
}

// Set: best-effort, error cuma dilog.
func (ch *Cache) Set(ctx context.Context, key string, val []byte, tags []string) {
	if ch == nil || ch.store == nil {
		return
	}
	if err := ch.store.Set(ctx, key, val, ch.ttl, tags); err != nil {
		log.Printf("[WARN] cache set %q: %v", key, err)
	}
}

// InvalidateSectionDate: SATU-SATUNYA jalur invalidasi untuk path tulis.
// Dipanggil sinkron SEBELUM response sukses dikirim, supaya read-after-write
// tidak pernah melihat agregat basi. Dua scope kena sekaligus:
// (a) semua key ber-tag section+tanggal, (b) semua overview tanggal itu.
func (ch *Cache) InvalidateSectionDate(ctx context.Context, sectionID uuid.UUID, date time.Time) {
	if ch == nil || ch.store == nil {
		return
	}
	tags := []string{SectionTag(sectionID, date), OverviewTag(date)}
	n, err := ch.store.InvalidateTags(ctx, tags)
	if err != nil {
		// Backend cache mati → read path juga bypass ke DB, tetap koheren.
		log.Printf("[WARN] cache invalidate %v: %v", tags, err)
		return
	}
	if n > 0 {
		log.Printf("[INFO] cache invalidated %d keys untuk section=%s date=%s", n, sectionID, date.Format(dateLayout))
	}
}
