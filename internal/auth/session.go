package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/webblog/internal/events"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/users"
)

// SessionCookieName はセッション Cookie の名前です。
const SessionCookieName = "awesession"

const (
	defaultLookupTimeout = 2 * time.Second
	defaultEmitTimeout   = 200 * time.Millisecond
)

var (
	errMalformed   = errors.New("malformed session cookie")
	errExpired     = errors.New("session expired")
	errUnknownUser = errors.New("session user not found")
	errLookup      = errors.New("session user lookup failed")
	errSignature   = errors.New("session signature mismatch")
)

// EventSink はセキュリティイベントの送信先です。
type EventSink interface {
	Emit(ctx context.Context, ev events.Event)
}

// Codec はセッション Cookie の発行と検証を行います。
//
// Cookie の値は "<userID>-<expiresAt>-<signature>" で、署名は
// hexHash(userID-passwordHash-expiresAt-secret) です。HMAC ではなく連結ダイジェストですが、
// 発行済み Cookie との互換のためこの形式を維持しています。
// パスワードハッシュを署名に含めるため、パスワード変更で既存の Cookie はすべて無効になります。
//
// Codec は生成後に変更されないため、複数のゴルーチンから同時に使えます。
type Codec struct {
	secret        string
	hasher        *Hasher
	users         users.Finder
	now           func() time.Time
	log           logging.Logger
	sink          EventSink
	lookupTimeout time.Duration
	emitTimeout   time.Duration
}

// Option は Codec の設定を変更します。
type Option func(*Codec)

// WithClock は現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLogger はロガーを設定します。
func WithLogger(log logging.Logger) Option {
	return func(c *Codec) { c.log = log }
}

// WithEventSink は署名不一致を通知するイベント送信先を設定します。
func WithEventSink(sink EventSink) Option {
	return func(c *Codec) { c.sink = sink }
}

// WithLookupTimeout はユーザー検索のタイムアウトを設定します。
func WithLookupTimeout(d time.Duration) Option {
	return func(c *Codec) { c.lookupTimeout = d }
}

// WithEmitTimeout は診断イベント送信の待ち時間の上限を変更します。
func WithEmitTimeout(d time.Duration) Option {
	return func(c *Codec) { c.emitTimeout = d }
}

// NewCodec は Codec を作成します。secret はプロセス起動中は変更しない前提です。
func NewCodec(secret string, hasher *Hasher, finder users.Finder, opts ...Option) *Codec {
	c := &Codec{
		secret:        secret,
		hasher:        hasher,
		users:         finder,
		now:           time.Now,
		log:           logging.Nop(),
		lookupTimeout: defaultLookupTimeout,
		emitTimeout:   defaultEmitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue はユーザーに対するセッション Cookie の値を発行します。
func (c *Codec) Issue(u *users.User, ttl time.Duration) string {
	expiresAt := c.now().Unix() + int64(ttl/time.Second)
	expires := strconv.FormatInt(expiresAt, 10)
	return strings.Join([]string{u.ID, expires, c.sign(u.ID, u.PasswordHash, expires)}, "-")
}

// Validate は Cookie を検証し、有効なら Principal を返します。
// 形式不正、期限切れ、ユーザー不在、検索失敗、署名不一致はいずれも匿名扱い (false) です。
func (c *Codec) Validate(ctx context.Context, cookie string) (p Principal, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(ctx, "session validation panicked", "panic", r)
			p, ok = Principal{}, false
		}
	}()

	u, err := c.decode(ctx, cookie)
	if err != nil {
		c.report(ctx, cookie, err)
		return Principal{}, false
	}
	return NewPrincipal(u), true
}

func (c *Codec) decode(ctx context.Context, cookie string) (*users.User, error) {
	if cookie == "" {
		return nil, errMalformed
	}
	parts := strings.Split(cookie, "-")
	if len(parts) != 3 {
		return nil, errMalformed
	}
	id, expires, signature := parts[0], parts[1], parts[2]
	if id == "" {
		return nil, errMalformed
	}

	expiresAt, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return nil, errMalformed
	}
	if c.now().Unix() >= expiresAt {
		return nil, errExpired
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	u, err := c.users.FindByID(lookupCtx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, errUnknownUser
		}
		return nil, errors.Join(errLookup, err)
	}
	if u == nil {
		return nil, errUnknownUser
	}

	expected := c.sign(u.ID, u.PasswordHash, expires)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, errSignature
	}
	return u, nil
}

func (c *Codec) sign(id, passwordHash, expires string) string {
	return c.hasher.alg.HexDigest(strings.Join([]string{id, passwordHash, expires, c.secret}, "-"))
}

// report は検証失敗をログに残します。Cookie の署名部分は出力しません。
func (c *Codec) report(ctx context.Context, cookie string, err error) {
	userID := cookieUserID(cookie)
	switch {
	case errors.Is(err, errSignature):
		c.log.Warn(ctx, "session signature mismatch", "user_id", userID)
		if c.sink != nil {
			emitCtx, cancel := context.WithTimeout(ctx, c.emitTimeout)
			defer cancel()
			c.sink.Emit(emitCtx, events.Event{
				Kind:   events.KindSignatureMismatch,
				UserID: userID,
				Detail: "cookie signature did not match",
			})
		}
	case errors.Is(err, errLookup):
		c.log.Warn(ctx, "session user lookup failed", "user_id", userID, "error", err)
	case errors.Is(err, errMalformed):
		if cookie != "" {
			c.log.Debug(ctx, "malformed session cookie")
		}
	default:
		c.log.Debug(ctx, "session rejected", "user_id", userID, "reason", err.Error())
	}
}

func cookieUserID(cookie string) string {
	id, _, found := strings.Cut(cookie, "-")
	if !found {
		return ""
	}
	return id
}
