package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/yourusername/webblog/internal/logging"
)

func (m *Manager) handleEventTask(ctx context.Context, task *asynq.Task) error {
	var ev Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if ev.Kind == "" {
		return fmt.Errorf("%w: missing kind in payload", asynq.SkipRetry)
	}
	return m.store.Append(ctx, &ev)
}

// LogSink は Redis を使わない構成向けに、イベントを構造化ログとして出力します。
type LogSink struct {
	log logging.Logger
}

// NewLogSink は LogSink を作成します。
func NewLogSink(log logging.Logger) *LogSink {
	if log == nil {
		log = logging.Nop()
	}
	return &LogSink{log: log}
}

// Emit はイベントを警告ログとして記録します。
func (s *LogSink) Emit(ctx context.Context, ev Event) {
	s.log.Warn(ctx, "security event",
		"kind", string(ev.Kind),
		"user_id", ev.UserID,
		"client_ip", ev.ClientIP,
		"detail", ev.Detail,
	)
}
