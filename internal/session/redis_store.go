package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ats-portal/internal/rbac"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ats:session:"

// RedisOptions holds Redis connection configuration
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf(errRedisPingFmt, opts.Addr, err)
	}
	return client, nil
}

// RedisStore keeps sessions in Redis as JSON with a TTL matching ExpiresAt
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store on top of an existing client
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, prefix: defaultKeyPrefix, now: time.Now}
}

func (r *RedisStore) key(tokenHash string) string {
	return r.prefix + tokenHash
}

// Save writes s with a TTL of its remaining lifetime
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrExpired
	}

	payload, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(s.TokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf(errRedisSetFmt, err)
	}
	return nil
}

// Get loads a session. Payloads with an unknown role are rejected.
func (r *RedisStore) Get(ctx context.Context, tokenHash string) (*Session, error) {
	payload, err := r.client.Get(ctx, r.key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errRedisGetFmt, err)
	}

	s, err := decodeSession(payload)
	if err != nil {
		return nil, err
	}
	if s.ExpiredAt(r.now()) {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session
func (r *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	if err := r.client.Del(ctx, r.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf(errRedisDelFmt, err)
	}
	return nil
}

func encodeSession(s *Session) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf(errRedisEncodeFmt, err)
	}
	return payload, nil
}

func decodeSession(payload []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf(errRedisDecodeFmt, err)
	}
	role, err := rbac.ParseRole(string(s.Identity.Role))
	if err != nil {
		return nil, fmt.Errorf(errRedisDecodeFmt, err)
	}
	s.Identity.Role = role
	return &s, nil
}
