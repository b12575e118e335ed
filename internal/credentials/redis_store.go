package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jpay/wallet/internal/clock"
)

// RedisCodeStore keeps pending codes in Redis under otp:<phone>. Keys carry a
// TTL matching the code's expiry so Redis reclaims them.
type RedisCodeStore struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisCodeStore(client *redis.Client, clk clock.Clock) *RedisCodeStore {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &RedisCodeStore{client: client, clock: clk}
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func (r *RedisCodeStore) Put(ctx context.Context, phone string, code StoredCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}

	ttl := code.ExpiresAt.Sub(r.clock.Now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return r.client.Set(ctx, otpKey(phone), data, ttl).Err()
}

func (r *RedisCodeStore) Get(ctx context.Context, phone string) (StoredCode, bool, error) {
	data, err := r.client.Get(ctx, otpKey(phone)).Bytes()
	if err == redis.Nil {
		return StoredCode{}, false, nil
	}
	if err != nil {
		return StoredCode{}, false, err
	}

	var code StoredCode
	if err := json.Unmarshal(data, &code); err != nil {
		return StoredCode{}, false, fmt.Errorf("decode stored code: %w", err)
	}
	return code, true, nil
}

func (r *RedisCodeStore) Delete(ctx context.Context, phone string) error {
	return r.client.Del(ctx, otpKey(phone)).Err()
}
