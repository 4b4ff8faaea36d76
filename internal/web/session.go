package web

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 30 * time.Minute

// ViewState is what a visitor last selected.
type ViewState struct {
	Category string `json:"category"`
	Query    string `json:"query"`
}

// SessionStore keeps each visitor's ViewState in Redis with a sliding TTL.
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func sessionKey(sessionID string) string {
	return "view:" + sessionID
}

// Get returns the stored state, or the zero state for an unknown session.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (ViewState, error) {
	val, err := s.Client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return ViewState{}, nil
	}
	if err != nil {
		return ViewState{}, err
	}

	var st ViewState
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return ViewState{}, err
	}
	return st, nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, st ViewState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return s.Client.Set(ctx, sessionKey(sessionID), b, ttl).Err()
}
