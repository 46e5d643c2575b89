// Package apierr は API 層で使うエラー種別と、そのレスポンス変換を提供します。
package apierr

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied は権限不足を表す種別です。errors.Is で判定できます。
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError は入力値の不備を表します。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError は対象リソースが存在しないことを表します。
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// PermissionError は認可ゲートで拒否されたことを表します。
// 未ログインと権限不足はメッセージのみが異なります。
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Message
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ConflictError は一意制約に反する登録を表します。
type ConflictError struct {
	Code    string
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// Invalid は ValidationError を作成します。
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound は NotFoundError を作成します。
func NotFound(resource, message string) error {
	return &NotFoundError{Resource: resource, Message: message}
}

// Denied は PermissionError を作成します。
func Denied(message string) error {
	return &PermissionError{Message: message}
}
