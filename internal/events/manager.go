package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/logging"
)

const (
	taskTypeSecurityEvent = "security:event"
	queueName             = "security"
)

// Manager はイベントのキュー投入とワーカーを管理します。
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	store  *Store
	log    logging.Logger
}

// NewManager は Manager を初期化します。
func NewManager(cfg *config.Config, store *Store, log logging.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if log == nil {
		log = logging.Nop()
	}
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client: client,
		server: server,
		mux:    mux,
		store:  store,
		log:    log,
	}
	mux.HandleFunc(taskTypeSecurityEvent, manager.handleEventTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			m.log.Error(context.Background(), "asynq server stopped with error", "error", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	return m.client.Close()
}

// Emit はイベントをキューに投入します。投入に失敗した場合はログに残します。
func (m *Manager) Emit(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		m.log.Warn(ctx, "failed to encode security event", "kind", string(ev.Kind), "error", err)
		return
	}

	task := asynq.NewTask(taskTypeSecurityEvent, body, asynq.Queue(queueName))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		m.log.Warn(ctx, "failed to enqueue security event", "kind", string(ev.Kind), "error", err)
	}
}

// Recent は保存済みイベントの件数と指定範囲の一覧を返します。
func (m *Manager) Recent(ctx context.Context, offset, limit int) (int, []Event, error) {
	total, err := m.store.Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	list, err := m.store.List(ctx, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
