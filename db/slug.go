package db

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the text and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(text string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(text), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// UniqueSlug derives a slug from the title and appends a numeric suffix
// until it is free in the table's slug column. The table name must come
// from a compile-time constant, never from user input.
func UniqueSlug(ctx context.Context, pool *pgxpool.Pool, table, title string) (string, error) {
	base := Slugify(title)

	slug := base
	for counter := 1; ; counter++ {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM "+table+" WHERE slug = $1)", slug).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("checking slug uniqueness: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(counter)
	}
}
