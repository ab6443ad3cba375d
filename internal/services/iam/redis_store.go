package iam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

const redisKeyPrefix = "sandaran:"

// RedisSessionStore keeps sessions in Redis with a TTL matching their expiry.
// Revoked sessions are deleted outright, so purging only has to clean stale
// entries out of the per-user index.
//
// Keys:
//
//	sandaran:session:<id>          JSON encoded session
//	sandaran:session-token:<hash>  session id
//	sandaran:user-sessions:<uid>   set of session ids
type RedisSessionStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a session store backed by client.
func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

// redisSession is the stored form. models.Session hides the token hash from
// JSON, which Revoke needs to drop the token index.
type redisSession struct {
	models.Session
	TokenHash string `json:"tokenHash"`
}

func encodeSession(session *models.Session) ([]byte, error) {
	payload, err := json.Marshal(redisSession{Session: *session, TokenHash: session.TokenHash})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return payload, nil
}

func sessionKey(id string) string       { return redisKeyPrefix + "session:" + id }
func tokenKey(hash string) string       { return redisKeyPrefix + "session-token:" + hash }
func userSessionsKey(uid string) string { return redisKeyPrefix + "user-sessions:" + uid }

// Create stores a session until its expiry.
func (s *RedisSessionStore) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = bunx.NewUUIDv7()
	}
	now := s.now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastUsedAt = session.CreatedAt

	ttl := session.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return fmt.Errorf("create session: already expired")
	}
	payload, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.Set(ctx, tokenKey(session.TokenHash), session.ID, ttl)
		pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID loads a session by ID.
func (s *RedisSessionStore) GetByID(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get session %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session := stored.Session
	session.TokenHash = stored.TokenHash
	return &session, nil
}

// GetByTokenHash loads a session by the hash of its cookie token.
func (s *RedisSessionStore) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	id, err := s.client.Get(ctx, tokenKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get session by token: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateLastUsed refreshes last_used_at, keeping the remaining TTL.
func (s *RedisSessionStore) UpdateLastUsed(ctx context.Context, id string) error {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	session.LastUsedAt = s.now().UTC()
	return s.touch(ctx, session)
}

// touch rewrites an existing session record. A session revoked since it was
// read stays deleted.
func (s *RedisSessionStore) touch(ctx context.Context, session *models.Session) error {
	payload, err := encodeSession(session)
	if err != nil {
		return err
	}
	updated, err := s.client.SetXX(ctx, sessionKey(session.ID), payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("update last used: %w", err)
	}
	if !updated {
		return fmt.Errorf("update last used %s: %w", session.ID, repository.ErrNotFound)
	}
	return nil
}

// Revoke deletes a session and its token index.
func (s *RedisSessionStore) Revoke(ctx context.Context, id string) error {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.revoke(ctx, session)
}

func (s *RedisSessionStore) revoke(ctx context.Context, session *models.Session) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(session.ID), tokenKey(session.TokenHash))
		pipe.SRem(ctx, userSessionsKey(session.UserID), session.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeByUserID deletes every session of a user.
func (s *RedisSessionStore) RevokeByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	for _, id := range ids {
		session, err := s.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			if err := s.client.SRem(ctx, userSessionsKey(userID), id).Err(); err != nil {
				return fmt.Errorf("prune user sessions: %w", err)
			}
			continue
		}
		if err != nil {
			return err
		}
		if err := s.revoke(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// DeleteExpired drops user index entries whose session key already expired.
// Redis expires the sessions themselves; this keeps the per-user sets small.
// It returns the number of entries removed.
func (s *RedisSessionStore) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	var removed int64
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"user-sessions:*", 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		ids, err := s.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return removed, fmt.Errorf("purge sessions: %w", err)
		}
		for _, id := range ids {
			exists, err := s.client.Exists(ctx, sessionKey(id)).Result()
			if err != nil {
				return removed, fmt.Errorf("purge sessions: %w", err)
			}
			if exists == 0 {
				n, err := s.client.SRem(ctx, setKey, id).Result()
				if err != nil {
					return removed, fmt.Errorf("purge sessions: %w", err)
				}
				removed += n
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("purge sessions: %w", err)
	}
	return removed, nil
}
