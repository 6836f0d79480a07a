package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAlreadySubscribed marks a duplicate subscription attempt.
var ErrAlreadySubscribed = errors.New("email is already subscribed")

// AddSubscriber stores a new subscriber. Emails are normalized to
// lowercase; duplicates return ErrAlreadySubscribed.
func (s *Store) AddSubscriber(ctx context.Context, email string, confirmed bool) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}

	confirmedFlag := 0
	if confirmed {
		confirmedFlag = 1
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO subscribers (email, subscribed_at, confirmed)
		VALUES (?, ?, ?)
	`, email, time.Now().UTC().Unix(), confirmedFlag)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("add subscriber: %w", err)
	}
	return nil
}
