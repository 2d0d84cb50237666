package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/migueg98/empleo-portal/internal/apperrors"
)

// TokenStore holds issued admin session tokens. Redis in production, the
// in-memory store in tests and redis-less dev.
type TokenStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

const tokenKeyPrefix = "session:"

type RedisTokens struct {
	client *redis.Client
}

func NewRedisTokens(addr, password string, db int) *RedisTokens {
	return &RedisTokens{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (r *RedisTokens) Save(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Set(ctx, tokenKeyPrefix+token, "1", ttl).Err()
}

func (r *RedisTokens) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisTokens) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, tokenKeyPrefix+token).Err()
}

func (r *RedisTokens) Close() error { return r.client.Close() }

type MemoryTokens struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{tokens: make(map[string]time.Time)}
}

func (m *MemoryTokens) Save(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryTokens) Exists(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(m.tokens, token)
		return false, nil
	}
	return true, nil
}

func (m *MemoryTokens) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

// Sessions replaces the old client-side admin gate: credentials are
// checked server-side against a bcrypt hash and a bearer token with a TTL
// is issued.
type Sessions struct {
	tokens       TokenStore
	username     string
	passwordHash []byte
	ttl          time.Duration
	logger       *zap.Logger
}

// NewSessions takes either a precomputed bcrypt hash or, when hash is
// empty, hashes the configured plain password at startup (dev path).
func NewSessions(tokens TokenStore, username, password, hash string, ttl time.Duration, logger *zap.Logger) (*Sessions, error) {
	passwordHash := []byte(hash)
	if hash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = h
		logger.Warn("no ADMIN_PASSWORD_HASH configured, hashing dev password at startup")
	}
	return &Sessions{
		tokens:       tokens,
		username:     username,
		passwordHash: passwordHash,
		ttl:          ttl,
		logger:       logger,
	}, nil
}

// Login exchanges valid credentials for a session token.
func (s *Sessions) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.username ||
		bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.logger.Warn("failed admin login attempt", zap.String("username", username))
		return "", apperrors.Unauthorized("invalid credentials", nil)
	}

	token := uuid.NewString()
	if err := s.tokens.Save(ctx, token, s.ttl); err != nil {
		return "", apperrors.Internal("saving session token", err)
	}

	s.logger.Info("admin logged in", zap.String("username", username))
	return token, nil
}

func (s *Sessions) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Delete(ctx, token); err != nil {
		return apperrors.Internal("deleting session token", err)
	}
	return nil
}

// Validate checks a bearer token against the store.
func (s *Sessions) Validate(ctx context.Context, header string) error {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return apperrors.Unauthorized("missing bearer token", nil)
	}
	ok, err := s.tokens.Exists(ctx, token)
	if err != nil {
		return apperrors.Internal("checking session token", err)
	}
	if !ok {
		return apperrors.Unauthorized("session expired or unknown", nil)
	}
	return nil
}
