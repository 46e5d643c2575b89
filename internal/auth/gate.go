package auth

import "github.com/yourusername/webblog/internal/apierr"

// RequireAdmin は管理者以外を拒否します。未ログインも同じ種類のエラーです。
func RequireAdmin(p *Principal) error {
	if p == nil {
		return apierr.Denied("ログインが必要です")
	}
	if !p.Admin {
		return apierr.Denied("管理者権限が必要です")
	}
	return nil
}

// RequireSignedIn は未ログインを拒否します。
func RequireSignedIn(p *Principal) error {
	if p == nil {
		return apierr.Denied("ログインしてください")
	}
	return nil
}
