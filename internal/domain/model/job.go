// Package model contains payloads passed between the service layers.
package model

import (
	"time"

	"github.com/okian/affinity/internal/domain/recommend"
)

// Job asks the pipeline to score one server for one user and file the result
// on that user's recommendation board.
type Job struct {
	JobID       string             `json:"job_id" validate:"omitempty,max=128"`
	UserID      string             `json:"user_id" validate:"required,max=128"`
	Strategy    recommend.Strategy `json:"strategy,omitempty"`
	Profile     recommend.Profile  `json:"profile"`
	Server      recommend.Server   `json:"server"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// BoardKey identifies a board slot.
func (j *Job) BoardKey() (userID, serverID string) {
	return j.UserID, j.Server.ID
}
