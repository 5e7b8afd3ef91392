package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"vocab-drill-service/internal/domain"
)

// RecordGateway stores each user record as one JSONB document.
type RecordGateway struct {
	pool *pgxpool.Pool
}

func NewRecordGateway(pool *pgxpool.Pool) *RecordGateway {
	return &RecordGateway{pool: pool}
}

func (g *RecordGateway) LoadUser(ctx context.Context, username string) (domain.UserRecord, error) {
	var (
		id  string
		raw []byte
	)
	err := g.pool.QueryRow(ctx, `SELECT id, data FROM vocab_users WHERE username=$1`, username).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, errors.Wrap(err, "load user")
	}
	var record domain.UserRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.UserRecord{}, errors.Wrap(err, "unmarshal user")
	}
	record.ID = id
	record.Username = username
	return record, nil
}

// SaveUser overwrites the whole document keyed by username, creating the row
// on first save. Records without an id get a fresh one.
func (g *RecordGateway) SaveUser(ctx context.Context, record domain.UserRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal user")
	}
	_, err = g.pool.Exec(ctx, `
		INSERT INTO vocab_users (id, username, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (username) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()`,
		record.ID, record.Username, string(data))
	return errors.Wrap(err, "save user")
}
