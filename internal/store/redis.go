package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/auth-service/internal/auth"
	"github.com/ayush/auth-service/internal/models"
)

// DefaultCacheTTL is how long a cached account lives when no TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// cachedAccount is the cache encoding; unlike models.Account it keeps the hash.
type cachedAccount struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CachedStore is a read-through Redis cache in front of another store for
// lookups by email and id. Accounts are never updated or deleted, so entries
// need no invalidation. Redis failures fall back to the wrapped store.
// Uniqueness checks and inserts always go to the wrapped store.
type CachedStore struct {
	next   auth.CredentialStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(next auth.CredentialStore, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func emailKey(email string) string { return "account:email:" + strings.ToLower(email) }
func idKey(id string) string       { return "account:id:" + id }

func (s *CachedStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Account, error) {
	return s.next.FindByEmailOrUsername(ctx, email, username)
}

func (s *CachedStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if acct, ok := s.get(ctx, emailKey(email)); ok {
		return acct, nil
	}
	acct, err := s.next.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.put(ctx, acct)
	return acct, nil
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if acct, ok := s.get(ctx, idKey(id)); ok {
		return acct, nil
	}
	acct, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, acct)
	return acct, nil
}

func (s *CachedStore) InsertUnique(ctx context.Context, account *models.Account) (*models.Account, error) {
	acct, err := s.next.InsertUnique(ctx, account)
	if err != nil {
		return nil, err
	}
	s.put(ctx, acct)
	return acct, nil
}

func (s *CachedStore) get(ctx context.Context, key string) (*models.Account, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "account cache read failed", "error", err)
		return nil, false
	}
	var c cachedAccount
	if err := json.Unmarshal(raw, &c); err != nil {
		s.logger.WarnContext(ctx, "account cache entry corrupt", "error", err)
		return nil, false
	}
	return &models.Account{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, true
}

func (s *CachedStore) put(ctx context.Context, acct *models.Account) {
	raw, err := json.Marshal(cachedAccount{
		ID:           acct.ID,
		Username:     acct.Username,
		Email:        acct.Email,
		PasswordHash: acct.PasswordHash,
		CreatedAt:    acct.CreatedAt,
		UpdatedAt:    acct.UpdatedAt,
	})
	if err != nil {
		return
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, idKey(acct.ID), raw, s.ttl)
		p.Set(ctx, emailKey(acct.Email), raw, s.ttl)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "account cache write failed", "error", err)
	}
}
