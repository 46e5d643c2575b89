package blog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yourusername/webblog/internal/apierr"
	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/page"
	"github.com/yourusername/webblog/internal/users"
)

// BlogInput は記事の作成・更新で受け付ける値です。
type BlogInput struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// Service は記事とコメントの操作に認可と入力検証をかけます。
type Service struct {
	repo     Repository
	pageSize int
	log      logging.Logger
	now      func() time.Time
}

// NewService は Service を作成します。pageSize が 0 以下なら page.DefaultSize を使います。
func NewService(repo Repository, pageSize int, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{repo: repo, pageSize: pageSize, log: log, now: time.Now}
}

// ListBlogs は記事を新しい順にページ単位で返します。
func (s *Service) ListBlogs(ctx context.Context, rawPage string) (page.Page, []Blog, error) {
	total, err := s.repo.CountBlogs(ctx)
	if err != nil {
		return page.Page{}, nil, err
	}
	p := page.Compute(total, rawPage, s.pageSize)
	if total == 0 {
		return p, []Blog{}, nil
	}
	list, err := s.repo.ListBlogs(ctx, p.Offset, p.Limit)
	if err != nil {
		return page.Page{}, nil, err
	}
	return p, nonNil(list), nil
}

// GetBlog は記事とそのコメントを返します。
func (s *Service) GetBlog(ctx context.Context, id string) (*Blog, []Comment, error) {
	b, err := s.repo.FindBlog(ctx, id)
	if err != nil {
		return nil, nil, blogNotFound(err)
	}
	comments, err := s.repo.CommentsForBlog(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, nonNil(comments), nil
}

// CreateBlog は管理者として記事を作成します。
func (s *Service) CreateBlog(ctx context.Context, p *auth.Principal, in BlogInput) (*Blog, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	in, err := normalizeBlogInput(in)
	if err != nil {
		return nil, err
	}

	b := &Blog{
		ID:        users.NextID(),
		UserID:    p.ID,
		UserName:  p.Name,
		UserImage: p.Image,
		Name:      in.Name,
		Summary:   in.Summary,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveBlog(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "blog created", "blog_id", b.ID, "user_id", p.ID)
	return b, nil
}

// UpdateBlog は管理者として記事を更新します。
func (s *Service) UpdateBlog(ctx context.Context, p *auth.Principal, id string, in BlogInput) (*Blog, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	in, err := normalizeBlogInput(in)
	if err != nil {
		return nil, err
	}

	b, err := s.repo.FindBlog(ctx, id)
	if err != nil {
		return nil, blogNotFound(err)
	}
	b.Name, b.Summary, b.Content = in.Name, in.Summary, in.Content
	if err := s.repo.UpdateBlog(ctx, b); err != nil {
		return nil, blogNotFound(err)
	}
	return b, nil
}

// DeleteBlog は管理者として記事とそのコメントを削除します。
func (s *Service) DeleteBlog(ctx context.Context, p *auth.Principal, id string) error {
	if err := auth.RequireAdmin(p); err != nil {
		return err
	}
	if err := s.repo.DeleteBlog(ctx, id); err != nil {
		return blogNotFound(err)
	}
	s.log.Info(ctx, "blog deleted", "blog_id", id, "user_id", p.ID)
	return nil
}

// ListComments はコメントを新しい順にページ単位で返します。
func (s *Service) ListComments(ctx context.Context, rawPage string) (page.Page, []Comment, error) {
	total, err := s.repo.CountComments(ctx)
	if err != nil {
		return page.Page{}, nil, err
	}
	p := page.Compute(total, rawPage, s.pageSize)
	if total == 0 {
		return p, []Comment{}, nil
	}
	list, err := s.repo.ListComments(ctx, p.Offset, p.Limit)
	if err != nil {
		return page.Page{}, nil, err
	}
	return p, nonNil(list), nil
}

// CreateComment はログイン中のユーザーとして記事にコメントします。
func (s *Service) CreateComment(ctx context.Context, p *auth.Principal, blogID, content string) (*Comment, error) {
	if err := auth.RequireSignedIn(p); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.Invalid("content", "コメントを入力してください")
	}
	if _, err := s.repo.FindBlog(ctx, blogID); err != nil {
		return nil, blogNotFound(err)
	}

	cm := &Comment{
		ID:        users.NextID(),
		BlogID:    blogID,
		UserID:    p.ID,
		UserName:  p.Name,
		UserImage: p.Image,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveComment(ctx, cm); err != nil {
		return nil, blogNotFound(err)
	}
	return cm, nil
}

// DeleteComment は管理者としてコメントを削除します。
func (s *Service) DeleteComment(ctx context.Context, p *auth.Principal, id string) error {
	if err := auth.RequireAdmin(p); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("comment", "コメントが見つかりません")
		}
		return err
	}
	return nil
}

func normalizeBlogInput(in BlogInput) (BlogInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Content = strings.TrimSpace(in.Content)
	switch {
	case in.Name == "":
		return in, apierr.Invalid("name", "タイトルを入力してください")
	case in.Summary == "":
		return in, apierr.Invalid("summary", "概要を入力してください")
	case in.Content == "":
		return in, apierr.Invalid("content", "本文を入力してください")
	}
	return in, nil
}

func blogNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apierr.NotFound("blog", "記事が見つかりません")
	}
	return err
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
