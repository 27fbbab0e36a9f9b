// Package probe drives a running affinity service with synthetic
// recommendation jobs and checks that the boards it builds agree with
// synchronous scoring.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Users          int           // Number of synthetic users
	ServersPerUser int           // Servers scored for each user
	TopN           int           // Board entries fetched per user
	Workers        int           // Concurrent HTTP workers
	Timeout        time.Duration // HTTP request timeout
	Wait           time.Duration // Upper bound on waiting for jobs to be processed
	Seed           uint64        // Seed for the job generator; 0 picks one
	OutputFile     string        // Output file for generated jobs; empty skips saving
	Verbose        bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	JobsGenerated   int
	JobsSubmitted   int
	JobsAccepted    int
	JobsDuplicate   int
	JobsRejected    int
	JobsFailed      int
	BoardsRetrieved int
	EntriesChecked  int
	Mismatches      int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// jobAck mirrors the job submission response.
type jobAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id"`
}
