// Package blog はブログ記事とコメントの保存・取得・API を提供します。
package blog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound は記事またはコメントが存在しないことを表します。
var ErrNotFound = errors.New("not found")

// Blog はブログ記事です。投稿者の名前と画像は作成時点の値を複製して持ちます。
type Blog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserImage string    `json:"user_image"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment は記事へのコメントです。
type Comment struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserImage string    `json:"user_image"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository は記事とコメントの永続化を担います。一覧はいずれも新しい順です。
type Repository interface {
	CountBlogs(ctx context.Context) (int, error)
	ListBlogs(ctx context.Context, offset, limit int) ([]Blog, error)
	FindBlog(ctx context.Context, id string) (*Blog, error)
	SaveBlog(ctx context.Context, b *Blog) error
	UpdateBlog(ctx context.Context, b *Blog) error
	// DeleteBlog は記事と、その記事へのコメントを削除します。
	DeleteBlog(ctx context.Context, id string) error

	CountComments(ctx context.Context) (int, error)
	ListComments(ctx context.Context, offset, limit int) ([]Comment, error)
	CommentsForBlog(ctx context.Context, blogID string) ([]Comment, error)
	FindComment(ctx context.Context, id string) (*Comment, error)
	SaveComment(ctx context.Context, cm *Comment) error
	DeleteComment(ctx context.Context, id string) error
}
