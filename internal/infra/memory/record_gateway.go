package memory

import (
	"context"
	"sync"

	"vocab-drill-service/internal/domain"
)

// StaticGateway is a record store backed by an in-memory map (useful for tests/demos).
type StaticGateway struct {
	mu      sync.RWMutex
	records map[string]domain.UserRecord
}

func NewStaticGateway(records ...domain.UserRecord) *StaticGateway {
	g := &StaticGateway{records: make(map[string]domain.UserRecord, len(records))}
	for _, r := range records {
		g.records[r.Username] = r.Clone()
	}
	return g
}

func (g *StaticGateway) LoadUser(_ context.Context, username string) (domain.UserRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if record, ok := g.records[username]; ok {
		return record.Clone(), nil
	}
	return domain.UserRecord{}, domain.ErrUserNotFound
}

// SaveUser overwrites the whole record.
func (g *StaticGateway) SaveUser(_ context.Context, record domain.UserRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records[record.Username] = record.Clone()
	return nil
}
