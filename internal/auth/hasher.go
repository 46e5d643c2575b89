package auth

import (
	"crypto/subtle"
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-z0-9\.\-\_]+\@[a-z0-9\-\_]+(\.[a-z0-9\-\_]+){1,4}$`)
	digestPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// Hasher は保存用パスワードハッシュを計算します。
//
// 入力はクライアント側で計算済みのダイジェスト (40 桁の 16 進) で、
// ユーザー ID をソルトとして hexHash(userID + ":" + digest) を返します。
// 平文パスワードはサーバーに届きません。
type Hasher struct {
	alg Algorithm
}

// NewHasher は Hasher を作成します。
func NewHasher(alg Algorithm) *Hasher {
	return &Hasher{alg: alg}
}

// Algorithm は使用中のダイジェスト方式を返します。
func (h *Hasher) Algorithm() Algorithm {
	return h.alg
}

// RegisterHash は新規登録時に保存するハッシュを返します。
func (h *Hasher) RegisterHash(userID, clientDigest string) string {
	return h.saltedHash(userID, clientDigest)
}

// DeriveLoginHash はログイン時に保存値と比較するハッシュを返します。
// RegisterHash と同じ入力なら同じ値になります。
func (h *Hasher) DeriveLoginHash(userID, clientDigest string) string {
	return h.saltedHash(userID, clientDigest)
}

// Verify は保存済みハッシュとログイン時のダイジェストが一致するか判定します。
func (h *Hasher) Verify(storedHash, userID, clientDigest string) bool {
	derived := h.DeriveLoginHash(userID, clientDigest)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(derived)) == 1
}

func (h *Hasher) saltedHash(userID, clientDigest string) string {
	return h.alg.HexDigest(userID + ":" + clientDigest)
}

// ValidClientDigest はクライアントダイジェストの形式 (40 桁の小文字 16 進) を検証します。
func ValidClientDigest(s string) bool {
	return digestPattern.MatchString(s)
}

// NormalizeEmail は比較用にメールアドレスを正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail は正規化済みのメールアドレスの形式を検証します。
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
