package models

import (
	"time"
)

// Vote records one ballot. VoterID is "user:<id>" for an authenticated
// account and "ip:<addr>" for the anonymous deployment profile, so the two
// namespaces can never collide.
//
// The composite unique index is the invariant: the database, not application
// logic, decides whether an identity already voted. Concurrent inserts for
// the same pair race on the index and exactly one wins.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IdeaID    uint      `gorm:"not null;uniqueIndex:idx_votes_idea_voter" json:"idea_id"`
	VoterID   string    `gorm:"size:64;not null;uniqueIndex:idx_votes_idea_voter" json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
}
