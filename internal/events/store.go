package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	eventsKey = "security:events"
)

// Store はイベントを Redis のリストに新しい順で保存します。
type Store struct {
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int64
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration, maxEntries int) *Store {
	return &Store{
		rdb:        rdb,
		ttl:        ttl,
		maxEntries: int64(maxEntries),
	}
}

// Append はイベントを先頭に追加し、上限を超えた古いイベントを切り捨てます。
func (s *Store) Append(ctx context.Context, ev *Event) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, eventsKey, payload)
		if s.maxEntries > 0 {
			pipe.LTrim(ctx, eventsKey, 0, s.maxEntries-1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, eventsKey, s.ttl)
		}
		return nil
	})
	return err
}

// Count は保存されているイベント数を返します。
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.rdb.LLen(ctx, eventsKey).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// List は新しい順に offset から limit 件のイベントを返します。
func (s *Store) List(ctx context.Context, offset, limit int) ([]Event, error) {
	if offset < 0 || limit <= 0 {
		return []Event{}, nil
	}
	raw, err := s.rdb.LRange(ctx, eventsKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	list := make([]Event, 0, len(raw))
	for _, item := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		list = append(list, ev)
	}
	return list, nil
}
