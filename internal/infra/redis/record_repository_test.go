package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/infra/memory"
)

func TestRecordRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	gateway := &countingGateway{RecordGateway: memory.NewStaticGateway(sampleRecord())}
	repo := NewRecordRepository(client, gateway, time.Minute, nil)

	if _, err := repo.GetUser(context.Background(), "amy"); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gateway.loads != 1 {
		t.Fatalf("expected gateway called once, got %d", gateway.loads)
	}
	if !mr.Exists("vocab:user:amy") {
		t.Fatalf("expected cached record in redis")
	}

	// Second call should hit cache, gateway not incremented.
	record, err := repo.GetUser(context.Background(), "amy")
	if err != nil {
		t.Fatalf("get user 2: %v", err)
	}
	if gateway.loads != 1 {
		t.Fatalf("expected cache hit, gateway loads=%d", gateway.loads)
	}
	if len(record.Words) != 1 || record.Words[0].Meaning != "猫" {
		t.Fatalf("unexpected cached record %+v", record)
	}
	if string(record.Extra["avatar"]) != `"cat.png"` {
		t.Fatalf("expected extra fields to survive the cache, got %v", record.Extra)
	}
}

func TestRecordRepositorySaveWritesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	gateway := &countingGateway{RecordGateway: memory.NewStaticGateway(sampleRecord())}
	repo := NewRecordRepository(newClient(mr), gateway, time.Minute, nil)

	record := sampleRecord()
	record.Words[0].Score = 3
	if err := repo.SaveUser(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetUser(ctx, "amy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Words[0].Score != 3 || gateway.loads != 0 {
		t.Fatalf("expected cached saved record, score=%d loads=%d", got.Words[0].Score, gateway.loads)
	}

	if err := repo.Invalidate(ctx, "amy"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("vocab:user:amy") {
		t.Fatalf("expected cache entry removed")
	}
}

func TestRecordRepositoryTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewRecordRepository(newClient(mr), memory.NewStaticGateway(sampleRecord()), time.Minute, nil)
	_, _ = repo.GetUser(context.Background(), "amy")

	ttl := mr.TTL("vocab:user:amy")
	if ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl within jitter window, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if mr.Exists("vocab:user:amy") {
		t.Fatalf("expected cache entry to expire")
	}
}

type countingGateway struct {
	memory.RecordGateway
	loads int
}

func (g *countingGateway) LoadUser(ctx context.Context, username string) (domain.UserRecord, error) {
	g.loads++
	return g.RecordGateway.LoadUser(ctx, username)
}

func sampleRecord() domain.UserRecord {
	return domain.UserRecord{
		ID:       "1",
		Username: "amy",
		Words: []domain.WordEntry{
			{Primary: "cat", Secondary: "feline", Meaning: "猫", AcquiredOn: "2026-10-16"},
		},
		Extra: map[string]json.RawMessage{"avatar": json.RawMessage(`"cat.png"`)},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
