package apierr

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/logging"
)

// Respond はエラーを JSON レスポンスに変換します。
// 想定外のエラーは内容を返さず、ログにのみ記録します。
func Respond(c *gin.Context, log logging.Logger, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		permErr       *PermissionError
		conflictErr   *ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    conflictErr.Code,
			"field":   conflictErr.Field,
			"message": conflictErr.Message,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": notFoundErr.Message,
		})
	case errors.As(err, &permErr):
		c.JSON(http.StatusForbidden, gin.H{
			"code":    "PERMISSION_DENIED",
			"message": permErr.Message,
		})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		if log != nil {
			log.Error(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err.Error(),
			)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}
