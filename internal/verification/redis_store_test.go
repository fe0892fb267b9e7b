package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisStore(client, time.Minute).WithCost(bcrypt.MinCost), mr
}

func TestRedisStoreValidateConsumesCode(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	code, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)

	require.NoError(t, store.Validate(ctx, "15550001111", code))
	assert.ErrorIs(t, store.Validate(ctx, "15550001111", code), ErrCodeNotFound)
}

func TestRedisStoreWrongCodeKeepsPendingCode(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	code, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	assert.ErrorIs(t, store.Validate(ctx, "15550001111", wrong), ErrCodesNotEqual)
	assert.NoError(t, store.Validate(ctx, "15550001111", code))
}

func TestRedisStoreReissueInvalidatesPreviousCode(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	codes := []string{"111111", "222222"}
	store.newCode = func() (string, error) {
		next := codes[0]
		codes = codes[1:]
		return next, nil
	}

	first, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)
	second, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Validate(ctx, "15550001111", first), ErrCodesNotEqual)
	assert.NoError(t, store.Validate(ctx, "15550001111", second))
}

func TestRedisStoreUnknownPhone(t *testing.T) {
	store, _ := setupRedisStore(t)
	assert.ErrorIs(t, store.Validate(context.Background(), "15550009999", "123456"), ErrCodeNotFound)
}

func TestRedisStoreCodeExpires(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	code, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, store.Validate(ctx, "15550001111", code), ErrCodeNotFound)
}

func TestRedisStoreKeepsOnlyHash(t *testing.T) {
	store, mr := setupRedisStore(t)

	code, err := store.Generate(context.Background(), "15550001111")
	require.NoError(t, err)

	stored, err := mr.Get(keyPrefix + "15550001111")
	require.NoError(t, err)
	assert.NotEqual(t, code, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(code)))
}

func TestRedisStoreConcurrentValidateSucceedsOnce(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	code, err := store.Generate(ctx, "15550001111")
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Validate(ctx, "15550001111", code)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrCodeNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRedisStoreHashesWithConfiguredCost(t *testing.T) {
	store, mr := setupRedisStore(t)

	_, err := store.Generate(context.Background(), "15550001111")
	require.NoError(t, err)

	stored, err := mr.Get(keyPrefix + "15550001111")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.Equal(t, bcrypt.DefaultCost, store.WithCost(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, store.WithCost(bcrypt.MaxCost+1).cost)
}
