package auth

import (
	"time"

	"github.com/yourusername/webblog/internal/users"
)

// Principal は認証済みユーザーの公開用ビューです。
// パスワードハッシュを持つフィールドはありません。
type Principal struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPrincipal はユーザーレコードから Principal を作ります。
func NewPrincipal(u *users.User) Principal {
	return Principal{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

// NewPrincipals は一覧用にまとめて変換します。
func NewPrincipals(list []users.User) []Principal {
	out := make([]Principal, 0, len(list))
	for i := range list {
		out = append(out, NewPrincipal(&list[i]))
	}
	return out
}
