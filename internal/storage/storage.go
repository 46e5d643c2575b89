// Package storage は設定に応じてリポジトリ群を組み立てます。
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/webblog/internal/blog"
	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/db"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/users"
)

// Stores はアプリケーションが使うリポジトリと接続をまとめます。
type Stores struct {
	Users users.Repository
	Blogs blog.Repository

	// DB は PostgreSQL 利用時のみ設定されます。
	DB *sql.DB
	// Redis は REDIS_URL 指定時のみ設定されます。
	Redis *redis.Client
}

// Open は DATABASE_DSN があれば PostgreSQL (マイグレーション適用済み)、なければインメモリの
// リポジトリを作成します。REDIS_URL があればユーザー検索を Redis でキャッシュします。
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Stores, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Stores{}

	if cfg.DatabaseDSN != "" {
		conn, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		s.DB = conn
		s.Users = users.NewPostgresRepository(conn)
		s.Blogs = blog.NewPostgresRepository(conn)
		log.Info(ctx, "using postgres storage")
	} else {
		s.Users = users.NewMemoryRepository()
		s.Blogs = blog.NewMemoryRepository()
		log.Warn(ctx, "DATABASE_DSN is empty; using in-memory storage")
	}

	if cfg.RedisURL != "" {
		rdb, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Redis = rdb
		s.Users = users.NewCachedRepository(s.Users, rdb, cfg.UserCacheTTL())
		log.Info(ctx, "user cache enabled", "ttl", cfg.UserCacheTTL().String())
	}

	return s, nil
}

// OpenRedis は Redis に接続し、疎通確認まで行います。
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return rdb, nil
}

// Close は保持している接続を閉じます。
func (s *Stores) Close() error {
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}
