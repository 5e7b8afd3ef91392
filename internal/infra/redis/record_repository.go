package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vocab-drill-service/internal/domain"
)

// RecordGateway fetches and overwrites user records in a backing store.
type RecordGateway interface {
	LoadUser(ctx context.Context, username string) (domain.UserRecord, error)
	SaveUser(ctx context.Context, record domain.UserRecord) error
}

// RecordRepository caches whole user records in Redis and falls back to the
// gateway on a miss. Records are stored as JSON under vocab:user:{username}.
type RecordRepository struct {
	client  *redis.Client
	gateway RecordGateway
	ttl     time.Duration
	logger  *zap.Logger
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewRecordRepository(client *redis.Client, gateway RecordGateway, ttl time.Duration, logger *zap.Logger) *RecordRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordRepository{
		client:  client,
		gateway: gateway,
		ttl:     ttl,
		logger:  logger,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RecordRepository) GetUser(ctx context.Context, username string) (domain.UserRecord, error) {
	if record, ok := r.cached(ctx, username); ok {
		return record, nil
	}

	result, err, _ := r.sf.Do(username, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if record, ok := r.cached(ctx, username); ok {
			return record, nil
		}

		record, err := r.gateway.LoadUser(ctx, username)
		if err != nil {
			return domain.UserRecord{}, err
		}
		r.store(ctx, record)
		return record, nil
	})
	if err != nil {
		return domain.UserRecord{}, err
	}
	return result.(domain.UserRecord).Clone(), nil
}

// SaveUser writes through to the gateway, then refreshes the cached copy.
func (r *RecordRepository) SaveUser(ctx context.Context, record domain.UserRecord) error {
	if err := r.gateway.SaveUser(ctx, record); err != nil {
		return err
	}
	r.store(ctx, record)
	return nil
}

// Invalidate drops the cached record of a user.
func (r *RecordRepository) Invalidate(ctx context.Context, username string) error {
	return errors.Wrap(r.client.Del(ctx, r.key(username)).Err(), "invalidate record cache")
}

func (r *RecordRepository) cached(ctx context.Context, username string) (domain.UserRecord, bool) {
	raw, err := r.client.Get(ctx, r.key(username)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("record cache read failed", zap.String("username", username), zap.Error(err))
		}
		return domain.UserRecord{}, false
	}
	var record domain.UserRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		r.logger.Warn("record cache entry corrupt", zap.String("username", username), zap.Error(err))
		return domain.UserRecord{}, false
	}
	return record, true
}

// store is best-effort: a failed cache write only costs a later reload.
func (r *RecordRepository) store(ctx context.Context, record domain.UserRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		r.logger.Warn("record cache encode failed", zap.String("username", record.Username), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.key(record.Username), data, r.ttlWithJitter()).Err(); err != nil {
		r.logger.Warn("record cache write failed", zap.String("username", record.Username), zap.Error(err))
	}
}

func (r *RecordRepository) key(username string) string {
	return "vocab:user:" + username
}

func (r *RecordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
