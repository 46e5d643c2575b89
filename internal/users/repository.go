package users

import (
	"context"
	"errors"
)

// ErrNotFound は該当するユーザーが存在しないことを表します。
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken はメールアドレスが既に使われていることを表します。
var ErrEmailTaken = errors.New("email already in use")

// Finder は ID でユーザーを引く最小のインターフェースです。
type Finder interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// Repository はユーザーの永続化を担います。
// 各メソッドは I/O で待つことがあり、途中状態を残さずに成功か失敗のどちらかになる前提です。
type Repository interface {
	Finder
	FindByEmail(ctx context.Context, email string) ([]User, error)
	Save(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
}
