package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	r "gopkg.in/redis.v5"
)

const redisPrefix = "_HRPORTAL_OTP_"

// putScript: KEYS[1]=key ARGV: value, issuedAtMs, minIntervalMs, ttlMs.
// Returns -1 when refused, 1 when an unexpired entry was replaced, 0 otherwise.
const putScript = `
local raw = redis.call('GET', KEYS[1])
local replaced = 0
if raw then
  local cur = cjson.decode(raw)
  local now = tonumber(ARGV[2])
  if now <= tonumber(cur.expiresAtMs) then
    if now - tonumber(cur.issuedAtMs) < tonumber(ARGV[3]) then
      return -1
    end
    replaced = 1
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[4])
return replaced
`

// consumeScript: KEYS[1]=key ARGV: code, nowMs.
const consumeScript = `
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 'missing'
end
local cur = cjson.decode(raw)
if tonumber(ARGV[2]) > tonumber(cur.expiresAtMs) then
  redis.call('DEL', KEYS[1])
  return 'expired'
end
if cur.code ~= ARGV[1] then
  return 'invalid'
end
redis.call('DEL', KEYS[1])
return 'ok'
`

type redisEntry struct {
	Code        string `json:"code"`
	IssuedAtMs  int64  `json:"issuedAtMs"`
	ExpiresAtMs int64  `json:"expiresAtMs"`
}

// RedisStore shares codes between processes.
type RedisStore struct {
	client *r.Client
	retain time.Duration
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := r.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := r.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client, retain: ExpiredRetention}, nil
}

func (s *RedisStore) Put(_ context.Context, key string, entry Entry, minInterval time.Duration) (bool, error) {
	payload, err := json.Marshal(redisEntry{
		Code:        entry.Code,
		IssuedAtMs:  entry.IssuedAt.UnixMilli(),
		ExpiresAtMs: entry.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return false, err
	}
	ttl := entry.ExpiresAt.Sub(entry.IssuedAt) + s.retain
	res, err := s.client.Eval(putScript, []string{redisPrefix + key},
		string(payload), entry.IssuedAt.UnixMilli(), minInterval.Milliseconds(), ttl.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	switch v, _ := res.(int64); v {
	case -1:
		return false, ErrTooSoon
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

func (s *RedisStore) Delete(_ context.Context, key string) error {
	return s.client.Del(redisPrefix + key).Err()
}

func (s *RedisStore) Consume(_ context.Context, key, code string, now time.Time) error {
	res, err := s.client.Eval(consumeScript, []string{redisPrefix + key}, code, now.UnixMilli()).Result()
	if err != nil {
		return err
	}
	switch res {
	case "ok":
		return nil
	case "missing":
		return ErrNotFound
	case "expired":
		return ErrExpired
	case "invalid":
		return ErrInvalid
	default:
		return fmt.Errorf("unexpected consume result %v", res)
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
