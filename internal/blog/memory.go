package blog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository は開発用のインメモリ実装です。
type MemoryRepository struct {
	mu       sync.RWMutex
	blogs    map[string]Blog
	comments map[string]Comment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		blogs:    make(map[string]Blog),
		comments: make(map[string]Comment),
	}
}

func (r *MemoryRepository) CountBlogs(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blogs), nil
}

func (r *MemoryRepository) ListBlogs(ctx context.Context, offset, limit int) ([]Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	all := make([]Blog, 0, len(r.blogs))
	for _, b := range r.blogs {
		all = append(all, b)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newer(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })
	return window(all, offset, limit), nil
}

func (r *MemoryRepository) FindBlog(ctx context.Context, id string) (*Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) SaveBlog(ctx context.Context, b *Blog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blogs[b.ID] = *b
	return nil
}

func (r *MemoryRepository) UpdateBlog(ctx context.Context, b *Blog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.blogs[b.ID]
	if !ok {
		return ErrNotFound
	}
	current.Name = b.Name
	current.Summary = b.Summary
	current.Content = b.Content
	r.blogs[b.ID] = current
	return nil
}

func (r *MemoryRepository) DeleteBlog(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blogs[id]; !ok {
		return ErrNotFound
	}
	delete(r.blogs, id)
	for cid, cm := range r.comments {
		if cm.BlogID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r *MemoryRepository) CountComments(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.comments), nil
}

func (r *MemoryRepository) ListComments(ctx context.Context, offset, limit int) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return window(r.sortedComments(func(Comment) bool { return true }), offset, limit), nil
}

func (r *MemoryRepository) CommentsForBlog(ctx context.Context, blogID string) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.sortedComments(func(cm Comment) bool { return cm.BlogID == blogID }), nil
}

func (r *MemoryRepository) FindComment(ctx context.Context, id string) (*Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	cm, ok := r.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &cm, nil
}

func (r *MemoryRepository) SaveComment(ctx context.Context, cm *Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blogs[cm.BlogID]; !ok {
		return ErrNotFound
	}
	r.comments[cm.ID] = *cm
	return nil
}

func (r *MemoryRepository) DeleteComment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *MemoryRepository) sortedComments(keep func(Comment) bool) []Comment {
	r.mu.RLock()
	out := make([]Comment, 0, len(r.comments))
	for _, cm := range r.comments {
		if keep(cm) {
			out = append(out, cm)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

// newer は作成日時の降順、同時刻なら ID の降順で並べます。
func newer(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}

func window[T any](all []T, offset, limit int) []T {
	if offset < 0 || offset >= len(all) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
