// Package events はセキュリティイベントの記録と非同期処理を提供します。
package events

import (
	"context"
	"time"
)

// Kind はイベントの種類を表します。
type Kind string

const (
	KindSignatureMismatch Kind = "session.signature_mismatch"
	KindLoginFailed       Kind = "login.failed"
	KindLoginLocked       Kind = "login.locked"
)

// Event はセキュリティ上注目すべき出来事を表します。
// 署名値やパスワードなどの秘密情報は含めません。
type Event struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	UserID   string    `json:"user_id,omitempty"`
	ClientIP string    `json:"client_ip,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Sink はイベントの送信先です。送信失敗は呼び出し元に返しません。
type Sink interface {
	Emit(ctx context.Context, ev Event)
}
