package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/users"
)

const (
	// MetaSessionName は CSRF トークンを保持する gin-contrib/sessions のセッション名です。
	MetaSessionName = "blog_meta"
	sessionKeyCSRF  = "csrf_token"

	csrfHeader = "X-CSRF-Token"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// ContextPrincipalKey は、ハンドラー間でログイン中の Principal を共有するためのキーです。
const ContextPrincipalKey = "auth.principal"

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Manager は認証まわりの HTTP 処理と状態をまとめた構造体です。
type Manager struct {
	cfg    *config.Config
	users  users.Repository
	codec  *Codec
	hasher *Hasher
	sink   EventSink
	log    logging.Logger

	lock     sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

// NewManager は認証マネージャーを作成します。sink が nil の場合はイベントを送信しません。
func NewManager(cfg *config.Config, repo users.Repository, codec *Codec, sink EventSink, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		cfg:      cfg,
		users:    repo,
		codec:    codec,
		hasher:   codec.hasher,
		sink:     sink,
		log:      log,
		attempts: make(map[string]*attemptState),
		now:      time.Now,
	}
}

func (m *Manager) checkLock(ip string) time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[ip]
	if !ok {
		return 0
	}
	now := m.now()
	if !now.Before(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// recordFailure は失敗を記録し、残り試行回数とロックされたかどうかを返します。
func (m *Manager) recordFailure(ip string) (int, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	state, ok := m.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		m.attempts[ip] = state
	}

	state.count++
	locked := false
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
		locked = true
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, locked
}

func (m *Manager) resetAttempts(ip string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, ip)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
