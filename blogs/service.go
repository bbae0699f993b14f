package blogs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
	"github.com/user/kaliweb-go/db"
	"github.com/user/kaliweb-go/logging"
)

// Service implements blog operations over PostgreSQL.
type Service struct {
	db       *pgxpool.Pool
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the blogs service.
func NewService(pool *pgxpool.Pool, log logging.Logger) *Service {
	return &Service{db: pool, log: log, validate: validator.New()}
}

const postColumns = `id, title, slug, excerpt, content, author, created_by,
	author_image, tags, category, read_time, featured, image, status,
	views, likes, published_at, created_at`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Author, &p.CreatedBy,
		&p.AuthorImage, &p.Tags, &p.Category, &p.ReadTime, &p.Featured, &p.Image,
		&p.Status, &p.Views, &p.Likes, &p.PublishedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// List returns posts matching the filter, most recently published first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Post, *Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 50 {
		filter.Limit = 10
	}
	if filter.Status == "" {
		filter.Status = StatusPublished
	}

	var (
		where []string
		args  []interface{}
	)
	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	addFilter("status = $%d", filter.Status)
	if filter.Category != "" {
		addFilter("category ILIKE $%d", "%"+filter.Category+"%")
	}
	if filter.Tag != "" {
		addFilter("$%d = ANY (tags)", filter.Tag)
	}
	if filter.Featured {
		where = append(where, "featured")
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM blog_posts"+clause, args...).Scan(&total); err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch blog posts", err)
	}

	query := "SELECT " + postColumns + " FROM blog_posts" + clause +
		" ORDER BY published_at DESC NULLS LAST, created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) +
		" OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch blog posts", err)
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, nil, apperror.NewDatabaseError("failed to fetch blog posts", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch blog posts", err)
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return posts, &Pagination{
		Current:    filter.Page,
		Total:      pages,
		Count:      len(posts),
		TotalPosts: total,
	}, nil
}

// GetPublished returns one published post by slug and counts the view.
func (s *Service) GetPublished(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE blog_posts SET views = views + 1
		WHERE slug = $1 AND status = $2
		RETURNING `+postColumns,
		slug, StatusPublished,
	)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("blog post not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch blog post", err)
	}
	return p, nil
}

// Get returns one post by ID regardless of status.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("blog post not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch blog post", err)
	}
	return p, nil
}

// Like increments the like counter of a published post.
func (s *Service) Like(ctx context.Context, slug string) (int, error) {
	var likes int
	err := s.db.QueryRow(ctx, `
		UPDATE blog_posts SET likes = likes + 1
		WHERE slug = $1 AND status = $2
		RETURNING likes`,
		slug, StatusPublished,
	).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFoundError("blog post not found", err)
	}
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to like blog post", err)
	}
	return likes, nil
}

// Create writes a new post authored by the given user.
func (s *Service) Create(ctx context.Context, author *auth.User, req CreateRequest) (*Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("title, excerpt, content, and category are required", err)
	}

	slug, err := db.UniqueSlug(ctx, s.db, "blog_posts", req.Title)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create blog post", err)
	}

	p := &Post{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Author:      author.Profile.FirstName + " " + author.Profile.LastName,
		CreatedBy:   author.ID,
		AuthorImage: req.AuthorImage,
		Tags:        normalizeTags(req.Tags),
		Category:    req.Category,
		ReadTime:    req.ReadTime,
		Featured:    req.Featured,
		Image:       req.Image,
		Status:      req.Status,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.ReadTime <= 0 {
		p.ReadTime = estimateReadTime(p.Content)
	}
	if p.Status == StatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO blog_posts (
			id, title, slug, excerpt, content, author, created_by,
			author_image, tags, category, read_time, featured, image, status,
			published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Author, p.CreatedBy,
		p.AuthorImage, p.Tags, p.Category, p.ReadTime, p.Featured, p.Image, p.Status,
		p.PublishedAt,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create blog post", err)
	}

	s.log.Info(ctx, "blog post created", "post_id", p.ID, "slug", p.Slug, "status", p.Status)
	return s.Get(ctx, p.ID)
}

// Update applies a partial update. Moving a post to published for the first
// time stamps PublishedAt; a title change regenerates the slug.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("invalid blog post update", err)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if req.Title != nil {
		slug, err := db.UniqueSlug(ctx, s.db, "blog_posts", *req.Title)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to update blog post", err)
		}
		addSet("title", *req.Title)
		addSet("slug", slug)
	}
	if req.Excerpt != nil {
		addSet("excerpt", *req.Excerpt)
	}
	if req.Content != nil {
		addSet("content", *req.Content)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.Tags != nil {
		addSet("tags", normalizeTags(*req.Tags))
	}
	if req.ReadTime != nil {
		addSet("read_time", *req.ReadTime)
	}
	if req.Featured != nil {
		addSet("featured", *req.Featured)
	}
	if req.Image != nil {
		addSet("image", *req.Image)
	}
	if req.AuthorImage != nil {
		addSet("author_image", *req.AuthorImage)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
		if *req.Status == StatusPublished && current.PublishedAt == nil {
			addSet("published_at", time.Now())
		}
	}
	if len(sets) == 0 {
		return current, nil
	}
	addSet("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE blog_posts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), postColumns)

	p, err := scanPost(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("blog post not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update blog post", err)
	}
	return p, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete blog post", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("blog post not found", nil)
	}
	s.log.Info(ctx, "blog post deleted", "post_id", id)
	return nil
}

// Categories lists the distinct categories of published posts.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.distinctMeta(ctx,
		`SELECT DISTINCT category FROM blog_posts WHERE status = $1 ORDER BY category`)
}

// Tags lists the distinct tags of published posts.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.distinctMeta(ctx,
		`SELECT DISTINCT unnest(tags) AS tag FROM blog_posts WHERE status = $1 ORDER BY tag`)
}

// Authors lists the distinct authors of published posts.
func (s *Service) Authors(ctx context.Context) ([]string, error) {
	return s.distinctMeta(ctx,
		`SELECT DISTINCT author FROM blog_posts WHERE status = $1 ORDER BY author`)
}

func (s *Service) distinctMeta(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.Query(ctx, query, StatusPublished)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch blog metadata", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, apperror.NewDatabaseError("failed to fetch blog metadata", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch blog metadata", err)
	}
	return values, nil
}

func normalizeTags(tags []string) []string {
	cleaned := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

const wordsPerMinute = 200

func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / wordsPerMinute
	if words%wordsPerMinute != 0 || minutes == 0 {
		minutes++
	}
	return minutes
}
