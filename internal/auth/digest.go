package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm はサーバー側で使うダイジェスト方式です。
type Algorithm string

const (
	SHA1       Algorithm = "sha1"
	SHA256     Algorithm = "sha256"
	SHA3_256   Algorithm = "sha3-256"
	BLAKE2b256 Algorithm = "blake2b-256"
)

// ParseAlgorithm は設定値を Algorithm に変換します。
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case SHA1, SHA256, SHA3_256, BLAKE2b256:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported password hash algorithm: %q", s)
	}
}

// HexDigest は s のダイジェストを小文字 16 進で返します。
func (a Algorithm) HexDigest(s string) string {
	data := []byte(s)
	switch a {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	case SHA3_256:
		sum := sha3.Sum256(data)
		return hex.EncodeToString(sum[:])
	case BLAKE2b256:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha1.Sum(data)
		return hex.EncodeToString(sum[:])
	}
}

// ClientDigest はブラウザ側が送るパスワードダイジェスト sha1(email:password) を計算します。
// CLI からのユーザー作成で使います。
func ClientDigest(email, password string) string {
	return SHA1.HexDigest(NormalizeEmail(email) + ":" + password)
}
