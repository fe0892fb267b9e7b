package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const keyPrefix = "verification:code:v1:"

// RedisStore keeps a bcrypt hash of each pending code under an expiring key.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	cost    int
	newCode func() (string, error)
}

// NewRedisStore builds a code store whose codes expire after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, cost: bcrypt.DefaultCost, newCode: NewCode}
}

// WithCost sets the bcrypt cost used for new hashes. Values outside bcrypt's
// accepted range fall back to bcrypt.DefaultCost.
func (s *RedisStore) WithCost(cost int) *RedisStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	s.cost = cost
	return s
}

// Generate issues a code and stores its hash, overwriting any pending code.
func (s *RedisStore) Generate(ctx context.Context, phone string) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash verification code: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+phone, hash, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}
	return code, nil
}

// Validate compares and deletes the pending code in one optimistic
// transaction. If the key changes between the read and the delete (another
// confirm consumed it, or a new code was issued) the submitted code is
// reported as not found.
func (s *RedisStore) Validate(ctx context.Context, phone, code string) error {
	key := keyPrefix + phone
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		hash, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("load verification code: %w", err)
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
			return ErrCodesNotEqual
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrCodeNotFound
	}
	return err
}
