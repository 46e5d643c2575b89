package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/webblog/internal/db"
)

const (
	blogColumns    = `id, user_id, user_name, user_image, name, summary, content, created_at`
	commentColumns = `id, blog_id, user_id, user_name, user_image, content, created_at`
)

// PostgresRepository は PostgreSQL 上の Repository 実装です。
type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) CountBlogs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(id) FROM blogs`)
}

func (r *PostgresRepository) ListBlogs(ctx context.Context, offset, limit int) ([]Blog, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []Blog
	for rows.Next() {
		var b Blog
		if err := rows.Scan(&b.ID, &b.UserID, &b.UserName, &b.UserImage, &b.Name, &b.Summary, &b.Content, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) FindBlog(ctx context.Context, id string) (*Blog, error) {
	var b Blog
	err := r.conn.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id).
		Scan(&b.ID, &b.UserID, &b.UserName, &b.UserImage, &b.Name, &b.Summary, &b.Content, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) SaveBlog(ctx context.Context, b *Blog) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO blogs (`+blogColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.UserID, b.UserName, b.UserImage, b.Name, b.Summary, b.Content, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateBlog(ctx context.Context, b *Blog) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE blogs SET name = $2, summary = $3, content = $4 WHERE id = $1`,
		b.ID, b.Name, b.Summary, b.Content)
	return affectedOne(res, err)
}

func (r *PostgresRepository) DeleteBlog(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *PostgresRepository) CountComments(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(id) FROM comments`)
}

func (r *PostgresRepository) ListComments(ctx context.Context, offset, limit int) ([]Comment, error) {
	return r.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *PostgresRepository) CommentsForBlog(ctx context.Context, blogID string) ([]Comment, error) {
	return r.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE blog_id = $1 ORDER BY created_at DESC`, blogID)
}

func (r *PostgresRepository) FindComment(ctx context.Context, id string) (*Comment, error) {
	var cm Comment
	err := r.conn.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id).
		Scan(&cm.ID, &cm.BlogID, &cm.UserID, &cm.UserName, &cm.UserImage, &cm.Content, &cm.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &cm, nil
}

func (r *PostgresRepository) SaveComment(ctx context.Context, cm *Comment) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cm.ID, cm.BlogID, cm.UserID, cm.UserName, cm.UserImage, cm.Content, cm.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.BlogID, &cm.UserID, &cm.UserName, &cm.UserImage, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
