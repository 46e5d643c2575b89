// Package users はユーザーレコードの保存と取得を提供します。
//
// User はパスワードハッシュを含むため、HTTP レスポンスに直接載せてはいけません。
// 外部へ返すときは auth.NewPrincipal で変換します。
package users

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User は保存されるユーザーレコードです。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Admin        bool
	Image        string
	CreatedAt    time.Time
}

// NextID は英数字のみからなる ID を生成します。
// 形式: 15 桁のミリ秒時刻 + UUID の 16 進表記 (ハイフンなし) + "000"。
// セッション Cookie の区切り文字 "-" を含まないことが前提条件です。
func NextID() string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("%015d%s000", ms, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// GravatarURL はメールアドレスからアバター画像の URL を作ります。
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("http://www.gravatar.com/avatar/%s?d=mm&s=120", hex.EncodeToString(sum[:]))
}
