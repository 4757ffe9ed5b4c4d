// Package redisstore keeps pending verifications in Redis hashes with native
// TTLs, for multi-instance deployments.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sikad-ph/otpkit/core"
)

const keyPrefix = "otp:pending:"

// failAttemptScript increments attempts and purges at the threshold in one
// atomic step, so concurrent wrong guesses cannot exceed the limit. Returns
// {attempts, purged}.
var failAttemptScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
    return {0, 0}
end
local n = redis.call("HINCRBY", KEYS[1], "attempts", 1)
if n >= tonumber(ARGV[1]) then
    redis.call("DEL", KEYS[1])
    return {n, 1}
end
return {n, 0}
`)

type PendingStore struct {
	rdb *redis.Client
}

func NewPendingStore(rdb *redis.Client) *PendingStore {
	return &PendingStore{rdb: rdb}
}

func key(phone string) string { return keyPrefix + phone }

func (s *PendingStore) Put(ctx context.Context, phone string, rec core.PendingVerification, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	k := key(phone)
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		"code", rec.Code,
		"created_at", rec.CreatedAt.UnixMilli(),
		"expires_at", rec.ExpiresAt.UnixMilli(),
		"attempts", rec.Attempts,
	)
	pipe.PExpire(ctx, k, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *PendingStore) Get(ctx context.Context, phone string) (core.PendingVerification, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, key(phone)).Result()
	if err != nil {
		return core.PendingVerification{}, false, fmt.Errorf("redis get: %w", err)
	}
	if len(fields) == 0 {
		return core.PendingVerification{}, false, nil
	}
	rec := core.PendingVerification{Phone: phone, Code: fields["code"]}
	if ms, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		rec.CreatedAt = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(fields["expires_at"], 10, 64); err == nil {
		rec.ExpiresAt = time.UnixMilli(ms)
	}
	if n, err := strconv.Atoi(fields["attempts"]); err == nil {
		rec.Attempts = n
	}
	return rec, true, nil
}

func (s *PendingStore) FailAttempt(ctx context.Context, phone string, max int) (int, bool, error) {
	res, err := failAttemptScript.Run(ctx, s.rdb, []string{key(phone)}, max).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis fail attempt: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("redis fail attempt: unexpected reply %v", res)
	}
	return int(res[0]), res[1] == 1, nil
}

func (s *PendingStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, key(phone)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
