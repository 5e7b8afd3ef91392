package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vocab-drill-service/internal/config"
	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/infra/memory"
	"vocab-drill-service/internal/infra/postgres"
	"vocab-drill-service/internal/infra/remote"
	"vocab-drill-service/internal/logz"
)

// backend holds the infrastructure selected by the config.
type backend struct {
	gateway    memory.RecordGateway
	persistent bool
	redis      *redis.Client
	pool       *pgxpool.Pool
}

func (b *backend) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logz.New(cfg.Log.Level)
}

// openBackend picks the record gateway: Postgres when a URL is set, else the
// remote REST store, else the in-memory demo data.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		b.gateway = postgres.NewRecordGateway(pool)
		b.persistent = true
		logger.Info("using postgres record gateway")
	case cfg.Gateway.BaseURL != "":
		gw, err := remote.NewGateway(cfg.Gateway.BaseURL, config.TTLDuration(cfg.Gateway.Timeout, 10*time.Second))
		if err != nil {
			return nil, err
		}
		b.gateway = gw
		b.persistent = true
		logger.Info("using remote record gateway", zap.String("baseUrl", cfg.Gateway.BaseURL))
	default:
		b.gateway = memory.NewStaticGateway(sampleRecords()...)
		logger.Info("using in-memory demo records")
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return b, nil
}

// sampleRecords seeds the demo user when no real record store is configured.
func sampleRecords() []domain.UserRecord {
	return []domain.UserRecord{
		{
			ID:       "demo",
			Username: "demo",
			Words: []domain.WordEntry{
				{Primary: "cat", Secondary: "feline", Meaning: "猫", AcquiredOn: "2026-10-15"},
				{Primary: "dog", Secondary: "canine", Meaning: "狗", AcquiredOn: "2026-10-15"},
				{Primary: "big", Secondary: "large", Meaning: "大的", AcquiredOn: "2026-10-16"},
				{Primary: "quick", Secondary: "fast", Meaning: "快的", AcquiredOn: "2026-10-16"},
				{Primary: "happy", Secondary: "glad", Meaning: "高兴的", AcquiredOn: "2026-10-16"},
				{Primary: "apple", Meaning: "苹果", AcquiredOn: "2026-10-16"},
			},
		},
	}
}
