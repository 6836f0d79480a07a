package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IncrementViews bumps the view counter for a slug and returns the new
// total. The first view creates the row.
func (s *Store) IncrementViews(ctx context.Context, slug string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, errors.New("slug is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO view_counts (slug, count, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(slug) DO UPDATE SET
			count = count + 1,
			updated_at = excluded.updated_at
		RETURNING count
	`, slug, time.Now().UTC().Unix())

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return count, nil
}

// Views returns the stored view count for a slug, zero when unseen.
func (s *Store) Views(ctx context.Context, slug string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, errors.New("slug is required")
	}

	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT count FROM view_counts WHERE slug = ?`, slug).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fetch views: %w", err)
	}
	return count, nil
}

// TopViewed returns the most viewed slugs, capped at limit.
func (s *Store) TopViewed(ctx context.Context, limit int) (map[string]int64, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT slug, count FROM view_counts
		ORDER BY count DESC, slug ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top viewed: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	counts := make(map[string]int64, limit)
	for rows.Next() {
		var slug string
		var count int64
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, fmt.Errorf("scan top viewed: %w", err)
		}
		counts[slug] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch top viewed: %w", err)
	}
	return counts, nil
}
