package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/apierr"
)

// LoadPrincipal はセッション Cookie を検証し、有効なら Principal をコンテキストに格納します。
// 無効な Cookie でもリクエストは匿名として続行します。
func (m *Manager) LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			if p, ok := m.codec.Validate(c.Request.Context(), cookie); ok {
				c.Set(ContextPrincipalKey, &p)
			}
		}
		c.Next()
	}
}

// CurrentPrincipal はコンテキストに格納された Principal を返します。未ログインなら nil です。
func CurrentPrincipal(c *gin.Context) *Principal {
	v, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

// RequireSignedIn はログイン済みでなければ 403 を返すミドルウェアです。
func (m *Manager) RequireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := RequireSignedIn(CurrentPrincipal(c)); err != nil {
			apierr.Respond(c, m.log, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin は管理者でなければ 403 を返すミドルウェアです。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := RequireAdmin(CurrentPrincipal(c)); err != nil {
			apierr.Respond(c, m.log, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// VerifyCSRF は X-CSRF-Token ヘッダーを検証するミドルウェアです。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		session := sessions.DefaultMany(c, MetaSessionName)
		expected, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_MISSING",
				"message": "CSRF トークンが設定されていません",
			})
			return
		}

		received := c.GetHeader(csrfHeader)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_INVALID",
				"message": "CSRF トークンが一致しません",
			})
			return
		}

		c.Next()
	}
}
