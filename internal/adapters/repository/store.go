// Package repository keeps each user's ranked recommendation board.
package repository

import (
	"context"
	"time"
)

// Entry is one row of a user's board.
type Entry struct {
	Rank      int       `json:"rank"`
	UserID    string    `json:"user_id"`
	ServerID  string    `json:"server_id"`
	Score     float64   `json:"score"`
	Strategy  string    `json:"strategy"`
	JobID     string    `json:"job_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store provides read/write access to recommendation boards.
type Store interface {
	// Upsert files the entry on its user's board, replacing any previous entry
	// for the same server unless that entry is newer. Rank is ignored on input.
	Upsert(ctx context.Context, e Entry) error

	// Rank returns the entry and its 1-based position on the user's board.
	// Returns ErrNotFound if the user or server is unknown.
	Rank(ctx context.Context, userID, serverID string) (Entry, error)

	// TopN returns the best n entries of a board, score desc then server id asc.
	TopN(ctx context.Context, userID string, n int) ([]Entry, error)

	// Count returns the number of entries on a user's board.
	Count(ctx context.Context, userID string) int

	// Users returns the number of users holding a board.
	Users(ctx context.Context) int
}
