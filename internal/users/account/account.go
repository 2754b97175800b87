// Copyright (c) 2026 Pollhub. All rights reserved.

// Package account provides profile reads built on top of the auth domain's
// account rows: availability probes for the signup form, the caller's own
// summary and public profiles with participation stats.
package account

import "time"

// # Projections

// UserSummary is the caller's own identity summary.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// UserProfile is the public view of an account with participation counts.
type UserProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	JoinedAt  time.Time `json:"joinedAt"`
	PollCount int64     `json:"pollCount"`
	VoteCount int64     `json:"voteCount"`
}

// Availability is the response shape of the signup-form probes.
type Availability struct {
	Available bool `json:"available"`
}
