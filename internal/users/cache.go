package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "user:"
	genKeyPrefix  = "user:gen:"
)

// CachedRepository は FindByID の結果を Redis に短時間キャッシュします。
// Update/Save 時には世代番号を進めてキャッシュを消すので、パスワード変更は次の検証から反映されます。
// 読み込み開始後に世代が進んだ結果はキャッシュに書きません。
type CachedRepository struct {
	Repository
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedRepository は inner を Redis キャッシュで包みます。
func NewCachedRepository(inner Repository, rdb *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		Repository: inner,
		rdb:        rdb,
		ttl:        ttl,
	}
}

// FindByID はキャッシュを優先して参照します。
// Redis の障害時は下位リポジトリの結果をそのまま返します。
func (r *CachedRepository) FindByID(ctx context.Context, id string) (*User, error) {
	key := userKey(id)

	data, err := r.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var u User
		if jsonErr := json.Unmarshal(data, &u); jsonErr == nil {
			return &u, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	gen, genErr := r.generation(ctx, r.rdb, id)

	u, err := r.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if payload, err := json.Marshal(u); err == nil {
			_ = r.fill(ctx, id, gen, payload)
		}
	}
	return u, nil
}

// fill は世代番号が gen のままの場合に限りキャッシュを書き込みます。
func (r *CachedRepository) fill(ctx context.Context, id string, gen int64, payload []byte) error {
	genKey := genKeyPrefix + id
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.generation(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(id), payload, r.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (r *CachedRepository) generation(ctx context.Context, c getter, id string) (int64, error) {
	gen, err := c.Get(ctx, genKeyPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *CachedRepository) Save(ctx context.Context, u *User) error {
	if err := r.Repository.Save(ctx, u); err != nil {
		return err
	}
	return r.invalidate(ctx, u.ID)
}

func (r *CachedRepository) Update(ctx context.Context, u *User) error {
	if err := r.Repository.Update(ctx, u); err != nil {
		return err
	}
	return r.invalidate(ctx, u.ID)
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKeyPrefix+id)
		pipe.Del(ctx, userKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func userKey(id string) string {
	return userKeyPrefix + id
}
