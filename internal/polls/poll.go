// Copyright (c) 2026 Pollhub. All rights reserved.

/*
Package polls implements the voting domain: poll creation, discovery and
vote casting.

Architecture:

  - Service: Orchestrates business rules (choice limits, expiry, one vote
    per account).
  - Repository: PostgreSQL persistence for polls, choices and votes.
  - TallyCache: Redis-backed read-through cache for per-choice vote counts.
*/
package polls

import "time"

// # Entities

// Choice is one selectable answer of a poll.
type Choice struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
}

// Poll is a question with its choices and aggregated vote counts.
type Poll struct {
	ID              int64     `json:"id"`
	Question        string    `json:"question"`
	Choices         []Choice  `json:"choices"`
	CreatedBy       int64     `json:"createdBy"`
	CreatedByName   string    `json:"createdByUsername"`
	TotalVotes      int64     `json:"totalVotes"`
	SelectedChoice  *int64    `json:"selectedChoice,omitempty"`
	ExpiresAt       time.Time `json:"expirationDateTime"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Expired reports whether the poll no longer accepts votes.
func (p *Poll) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// HasChoice reports whether the choice belongs to this poll.
func (p *Poll) HasChoice(choiceID int64) bool {
	for _, choice := range p.Choices {
		if choice.ID == choiceID {
			return true
		}
	}
	return false
}

// # Field Names

const (
	fieldQuestion = "question"
	fieldChoices  = "choices"
	fieldChoiceID = "choiceId"
	fieldDuration = "durationHours"
)

// # Domain Limits

const (
	questionMaxLen = 140
	choiceMaxLen   = 40
	minChoices     = 2
	maxChoices     = 6

	// maxDuration caps how far in the future a poll may expire.
	maxDuration     = 7 * 24 * time.Hour
	defaultDuration = 24 * time.Hour
)
