package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vocab-drill-service/internal/domain"
)

// RecordGateway fetches and overwrites user records in a backing store.
type RecordGateway interface {
	LoadUser(ctx context.Context, username string) (domain.UserRecord, error)
	SaveUser(ctx context.Context, record domain.UserRecord) error
}

// RecordRepository caches user records with TTL to avoid repeated remote hits.
type RecordRepository struct {
	gateway RecordGateway
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedRecord
}

type cachedRecord struct {
	record    domain.UserRecord
	expiresAt time.Time
}

func NewRecordRepository(gateway RecordGateway, ttl time.Duration) *RecordRepository {
	return &RecordRepository{
		gateway: gateway,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedRecord),
	}
}

func (r *RecordRepository) GetUser(ctx context.Context, username string) (domain.UserRecord, error) {
	if record, ok := r.cached(username); ok {
		return record, nil
	}

	result, err, _ := r.sf.Do(username, func() (interface{}, error) {
		if record, ok := r.cached(username); ok {
			return record, nil
		}

		record, err := r.gateway.LoadUser(ctx, username)
		if err != nil {
			return domain.UserRecord{}, err
		}
		r.store(record)
		return record, nil
	})
	if err != nil {
		return domain.UserRecord{}, err
	}
	return result.(domain.UserRecord).Clone(), nil
}

// SaveUser writes through to the gateway and refreshes the cache on success.
func (r *RecordRepository) SaveUser(ctx context.Context, record domain.UserRecord) error {
	if err := r.gateway.SaveUser(ctx, record); err != nil {
		return err
	}
	r.store(record)
	return nil
}

func (r *RecordRepository) cached(username string) (domain.UserRecord, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[username]; ok && entry.expiresAt.After(now) {
		return entry.record.Clone(), true
	}
	return domain.UserRecord{}, false
}

func (r *RecordRepository) store(record domain.UserRecord) {
	expires := r.clock().Add(r.ttlWithJitter())
	r.mu.Lock()
	r.cache[record.Username] = cachedRecord{record: record.Clone(), expiresAt: expires}
	r.mu.Unlock()
}

func (r *RecordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
