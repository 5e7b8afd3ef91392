package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"vocab-drill-service/internal/quiz"
)

// SessionStore is a Redis implementation of app.SessionRepository. Session
// state is a plain value, so it is stored as JSON and expires after ttl of
// inactivity; any instance can pick a session up.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, state quiz.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	return errors.Wrapf(s.client.Set(ctx, s.key(state.ID), data, s.ttl).Err(), "save session %s", state.ID)
}

func (s *SessionStore) Get(ctx context.Context, id string) (quiz.SessionState, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quiz.SessionState{}, false, nil
	}
	if err != nil {
		return quiz.SessionState{}, false, errors.Wrapf(err, "get session %s", id)
	}
	var state quiz.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return quiz.SessionState{}, false, errors.Wrapf(err, "decode session %s", id)
	}
	return state, true, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return errors.Wrapf(s.client.Del(ctx, s.key(id)).Err(), "delete session %s", id)
}

func (s *SessionStore) key(id string) string {
	return "vocab:session:" + id
}
