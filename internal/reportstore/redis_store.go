package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raysh454/vertex/internal/logging"
)

// RedisStore keeps each record as a JSON value with a TTL and indexes ids in
// a sorted set scored by scan time. Index entries whose value expired are
// dropped lazily by List.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

func NewRedisStore(ctx context.Context, cfg Config, logger logging.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "reportstore"})
	componentLogger.Info("connected redis report store", logging.Field{Key: "addr", Value: opts.Addr})
	return &RedisStore{
		client: client,
		prefix: cfg.RedisPrefix,
		ttl:    cfg.TTL,
		logger: componentLogger,
	}, nil
}

func (r *RedisStore) key(id string) string { return r.prefix + "report:" + id }

func (r *RedisStore) indexKey() string { return r.prefix + "reports" }

func (r *RedisStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("save report: missing id")
	}
	if rec.Report == nil {
		return fmt.Errorf("save report %s: missing report", rec.ID)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", rec.ID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(rec.ID), body, r.ttl)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(rec.ScannedAt.UnixNano()), Member: rec.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store report %s: %w", rec.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &rec, nil
}

func (r *RedisStore) List(ctx context.Context, limit int) ([]Summary, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]Summary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}

	var expired []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			r.logger.Warn("skipping undecodable report", logging.Field{Key: "id", Value: ids[i]}, logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		out = append(out, Summarize(&rec))
	}
	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), expired...).Err(); err != nil {
			r.logger.Warn("failed to prune report index", logging.Field{Key: "error", Value: err.Error()})
		}
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
