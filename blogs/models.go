// Package blogs manages the club blog: published posts for visitors and a
// full editing surface for members.
package blogs

import (
	"time"

	"github.com/google/uuid"
)

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Post is one blog entry. Only published posts are visible to anonymous
// visitors; PublishedAt is stamped the first time a post reaches published.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	AuthorImage string     `json:"authorImage,omitempty"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	ReadTime    int        `json:"readTime"`
	Featured    bool       `json:"featured"`
	Image       string     `json:"image,omitempty"`
	Status      string     `json:"status"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreateRequest is the payload for writing a post.
type CreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Excerpt     string   `json:"excerpt" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags"`
	ReadTime    int      `json:"readTime"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image"`
	AuthorImage string   `json:"authorImage"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// UpdateRequest carries the updatable post fields. Absent fields are left
// unchanged.
type UpdateRequest struct {
	Title       *string   `json:"title"`
	Excerpt     *string   `json:"excerpt"`
	Content     *string   `json:"content"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	ReadTime    *int      `json:"readTime"`
	Featured    *bool     `json:"featured"`
	Image       *string   `json:"image"`
	AuthorImage *string   `json:"authorImage"`
	Status      *string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ListFilter selects posts.
type ListFilter struct {
	Category string
	Tag      string
	Featured bool
	Status   string
	Page     int
	Limit    int
}

// Pagination describes one page of a list response.
type Pagination struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Count      int `json:"count"`
	TotalPosts int `json:"totalPosts"`
}
