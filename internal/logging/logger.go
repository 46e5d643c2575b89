// Package logging はアプリケーション全体で使う構造化ロガーを提供します。
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger はコンテキスト付きの構造化ロガーです。
//
// 可変長引数はキーと値のペアとして解釈されます。
//
//	log.Info(ctx, "server started", "addr", addr)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With は常に指定の属性を付与する子ロガーを返します。
	With(args ...any) Logger
}

// New は標準出力へ JSON 形式で書き出すロガーを作成します。
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter は出力先を指定してロガーを作成します。
func NewWithWriter(w io.Writer, level string) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return NewSlogLogger(slog.New(h))
}

// Nop は何も出力しないロガーを返します。テスト用です。
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ParseLevel は LOG_LEVEL の文字列を slog.Level に変換します。未知の値は info 扱いです。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
