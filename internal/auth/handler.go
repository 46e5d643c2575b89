// Package auth は認証・認可機能を提供します。
//
// 中心はステートレスなセッション Cookie (Codec) で、サーバー側にセッションを保存しません。
// パスワードはクライアント側でダイジェスト化され、Hasher がユーザー ID で塩付けして保存します。
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/apierr"
	"github.com/yourusername/webblog/internal/events"
	"github.com/yourusername/webblog/internal/users"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register は POST /api/users のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, m.log, apierr.Invalid("body", "email, name, password を JSON で送ってください"))
		return
	}

	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)
	switch {
	case name == "":
		apierr.Respond(c, m.log, apierr.Invalid("name", "名前を入力してください"))
		return
	case !ValidEmail(email):
		apierr.Respond(c, m.log, apierr.Invalid("email", "メールアドレスの形式が正しくありません"))
		return
	case !ValidClientDigest(req.Password):
		apierr.Respond(c, m.log, apierr.Invalid("password", "パスワードの形式が正しくありません"))
		return
	}

	ctx := c.Request.Context()
	existing, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		apierr.Respond(c, m.log, err)
		return
	}
	if len(existing) > 0 {
		apierr.Respond(c, m.log, emailInUse())
		return
	}

	id := users.NextID()
	user := &users.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: m.hasher.RegisterHash(id, req.Password),
		Image:        users.GravatarURL(email),
		CreatedAt:    m.now().UTC(),
	}
	if err := m.users.Save(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			apierr.Respond(c, m.log, emailInUse())
			return
		}
		apierr.Respond(c, m.log, err)
		return
	}

	if !m.startSession(c, user) {
		return
	}
	m.log.Info(ctx, "user registered", "user_id", user.ID)
	c.JSON(http.StatusOK, NewPrincipal(user))
}

// Authenticate は POST /api/authenticate のハンドラーです。
func (m *Manager) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, m.log, apierr.Invalid("body", "email と password を JSON で送ってください"))
		return
	}

	email := NormalizeEmail(req.Email)
	switch {
	case email == "":
		apierr.Respond(c, m.log, apierr.Invalid("email", "メールアドレスを入力してください"))
		return
	case req.Password == "":
		apierr.Respond(c, m.log, apierr.Invalid("password", "パスワードを入力してください"))
		return
	case !ValidClientDigest(req.Password):
		apierr.Respond(c, m.log, apierr.Invalid("password", "パスワードの形式が正しくありません"))
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	if retryAfter := m.checkLock(ip); retryAfter > 0 {
		// Retry-After は秒数またはHTTP-Date形式が推奨されているため秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください",
		})
		return
	}

	found, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		apierr.Respond(c, m.log, err)
		return
	}

	var user *users.User
	if len(found) > 0 {
		user = &found[0]
	}
	if user == nil || !m.hasher.Verify(user.PasswordHash, user.ID, req.Password) {
		remaining, locked := m.recordFailure(ip)
		m.emit(c, events.KindLoginFailed, "")
		if locked {
			m.emit(c, events.KindLoginLocked, "")
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":              "INVALID_CREDENTIALS",
			"message":           "メールアドレスまたはパスワードが正しくありません",
			"remainingAttempts": remaining,
		})
		return
	}

	m.resetAttempts(ip)
	if !m.startSession(c, user) {
		return
	}
	m.log.Info(ctx, "user signed in", "user_id", user.ID)
	c.JSON(http.StatusOK, NewPrincipal(user))
}

// Signout は GET /signout のハンドラーです。
func (m *Manager) Signout(c *gin.Context) {
	ClearSessionCookie(c.Writer, m.cfg.IsRelease())

	session := sessions.DefaultMany(c, MetaSessionName)
	session.Clear()
	if err := session.Save(); err != nil {
		m.log.Warn(c.Request.Context(), "failed to clear meta session", "error", err)
	}

	target := c.GetHeader("Referer")
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

// Me は GET /api/me のハンドラーです。
func (m *Manager) Me(c *gin.Context) {
	p := CurrentPrincipal(c)
	if err := RequireSignedIn(p); err != nil {
		apierr.Respond(c, m.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// startSession はセッション Cookie と CSRF トークンを発行します。失敗時はレスポンスを書いて false を返します。
func (m *Manager) startSession(c *gin.Context, user *users.User) bool {
	token, err := generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "CSRF トークンの生成に失敗しました",
		})
		return false
	}

	session := sessions.DefaultMany(c, MetaSessionName)
	session.Set(sessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		m.log.Error(c.Request.Context(), "failed to save meta session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return false
	}

	ttl := m.cfg.SessionTTL()
	SetSessionCookie(c.Writer, m.codec.Issue(user, ttl), ttl, m.cfg.IsRelease())
	c.Header(csrfHeader, token)
	return true
}

func (m *Manager) emit(c *gin.Context, kind events.Kind, userID string) {
	if m.sink == nil {
		return
	}
	m.sink.Emit(c.Request.Context(), events.Event{
		Kind:     kind,
		UserID:   userID,
		ClientIP: c.ClientIP(),
	})
}

func emailInUse() error {
	return &apierr.ConflictError{
		Code:    "EMAIL_IN_USE",
		Field:   "email",
		Message: "このメールアドレスは既に使われています",
	}
}
