package blog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/apierr"
	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/logging"
)

type commentRequest struct {
	Content string `json:"content"`
}

// Handler は記事・コメント API の gin ハンドラーをまとめます。
type Handler struct {
	svc *Service
	log logging.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(svc *Service, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{svc: svc, log: log}
}

// ListBlogs は GET /api/blogs のハンドラーです。
func (h *Handler) ListBlogs(c *gin.Context) {
	p, list, err := h.svc.ListBlogs(c.Request.Context(), c.Query("page"))
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": p, "blogs": list})
}

// GetBlog は GET /api/blogs/:id のハンドラーです。
func (h *Handler) GetBlog(c *gin.Context) {
	b, comments, err := h.svc.GetBlog(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": b, "comments": comments})
}

// CreateBlog は POST /api/blogs のハンドラーです。
func (h *Handler) CreateBlog(c *gin.Context) {
	var in BlogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, h.log, apierr.Invalid("body", "name, summary, content を JSON で送ってください"))
		return
	}
	b, err := h.svc.CreateBlog(c.Request.Context(), auth.CurrentPrincipal(c), in)
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateBlog は POST /api/blogs/:id のハンドラーです。
func (h *Handler) UpdateBlog(c *gin.Context) {
	var in BlogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, h.log, apierr.Invalid("body", "name, summary, content を JSON で送ってください"))
		return
	}
	b, err := h.svc.UpdateBlog(c.Request.Context(), auth.CurrentPrincipal(c), c.Param("id"), in)
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DeleteBlog は POST /api/blogs/:id/delete のハンドラーです。
func (h *Handler) DeleteBlog(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteBlog(c.Request.Context(), auth.CurrentPrincipal(c), id); err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListComments は GET /api/comments のハンドラーです。
func (h *Handler) ListComments(c *gin.Context) {
	p, list, err := h.svc.ListComments(c.Request.Context(), c.Query("page"))
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": p, "comments": list})
}

// CreateComment は POST /api/blogs/:id/comments のハンドラーです。
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.log, apierr.Invalid("body", "content を JSON で送ってください"))
		return
	}
	cm, err := h.svc.CreateComment(c.Request.Context(), auth.CurrentPrincipal(c), c.Param("id"), req.Content)
	if err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}

// DeleteComment は POST /api/comments/:id/delete のハンドラーです。
func (h *Handler) DeleteComment(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteComment(c.Request.Context(), auth.CurrentPrincipal(c), id); err != nil {
		apierr.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
