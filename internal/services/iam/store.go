package iam

import "github.com/terraconstructs/sandaran/internal/repository"

// SessionStore persists sessions. The database implementation is
// repository.BunSessionRepository; RedisSessionStore keeps them in Redis.
// Lookups of unknown sessions return repository.ErrNotFound.
type SessionStore = repository.SessionRepository
