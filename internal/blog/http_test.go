package blog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/auth"
)

// withPrincipal は LoadPrincipal の代わりにテスト用の Principal を載せます。
func withPrincipal(p *auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(auth.ContextPrincipalKey, p)
		}
		c.Next()
	}
}

func newTestRouter(p *auth.Principal) (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepository(), 10, nil)
	h := NewHandler(svc, nil)

	r := gin.New()
	r.Use(withPrincipal(p))
	r.GET("/api/blogs", h.ListBlogs)
	r.GET("/api/blogs/:id", h.GetBlog)
	r.POST("/api/blogs", h.CreateBlog)
	r.POST("/api/blogs/:id", h.UpdateBlog)
	r.POST("/api/blogs/:id/delete", h.DeleteBlog)
	r.GET("/api/comments", h.ListComments)
	r.POST("/api/blogs/:id/comments", h.CreateComment)
	r.POST("/api/comments/:id/delete", h.DeleteComment)
	return r, svc
}

func perform(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateBlogHandler(t *testing.T) {
	r, _ := newTestRouter(admin)

	rec := perform(r, http.MethodPost, "/api/blogs", sampleInput(1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var b Blog
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("failed to decode blog: %v", err)
	}
	if b.ID == "" || b.Name != "post 1" {
		t.Fatalf("unexpected blog: %#v", b)
	}

	rec = perform(r, http.MethodGet, "/api/blogs/"+b.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestCreateBlogHandlerForbidden(t *testing.T) {
	r, _ := newTestRouter(member)

	rec := perform(r, http.MethodPost, "/api/blogs", sampleInput(1))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["code"] != "PERMISSION_DENIED" {
		t.Fatalf("unexpected code: %v", body["code"])
	}
}

func TestCreateBlogHandlerInvalidJSON(t *testing.T) {
	r, _ := newTestRouter(admin)

	req := httptest.NewRequest(http.MethodPost, "/api/blogs", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetBlogHandlerNotFound(t *testing.T) {
	r, _ := newTestRouter(nil)

	rec := perform(r, http.MethodGet, "/api/blogs/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListBlogsHandler(t *testing.T) {
	r, svc := newTestRouter(nil)
	for i := 1; i <= 3; i++ {
		if _, err := svc.CreateBlog(t.Context(), admin, sampleInput(i)); err != nil {
			t.Fatalf("CreateBlog: %v", err)
		}
	}

	rec := perform(r, http.MethodGet, "/api/blogs?page=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Page struct {
			ItemCount int `json:"item_count"`
			PageIndex int `json:"page_index"`
		} `json:"page"`
		Blogs []Blog `json:"blogs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Page.ItemCount != 3 || body.Page.PageIndex != 1 || len(body.Blogs) != 3 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCommentHandlers(t *testing.T) {
	r, svc := newTestRouter(member)
	b, err := svc.CreateBlog(t.Context(), admin, sampleInput(1))
	if err != nil {
		t.Fatalf("CreateBlog: %v", err)
	}

	rec := perform(r, http.MethodPost, "/api/blogs/"+b.ID+"/comments", map[string]string{"content": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create comment status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var cm Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &cm); err != nil {
		t.Fatalf("failed to decode comment: %v", err)
	}

	rec = perform(r, http.MethodPost, "/api/comments/"+cm.ID+"/delete", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete by member status = %d, want 403", rec.Code)
	}

	rec = perform(r, http.MethodGet, "/api/comments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
}
