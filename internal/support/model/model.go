// Package model defines the records kept by the support bot.
package model

import (
	"time"
)

// Rating stars a user can give after an escalation
const (
	MinRating = 1
	MaxRating = 3
)

// Rating is one user feedback
type Rating struct {
	UserID    int64     `bson:"user_id" json:"user_id"`
	Rating    int       `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Valid reports whether the rating is within the star range
func (r Rating) Valid() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating
}

// RatingStats summary of all ratings
type RatingStats struct {
	Total    int         `json:"total"`
	ByRating map[int]int `json:"by_rating"`
}

// NewRatingStats returns stats with every star present
func NewRatingStats() *RatingStats {
	st := &RatingStats{ByRating: make(map[int]int, MaxRating)}
	for i := MinRating; i <= MaxRating; i++ {
		st.ByRating[i] = 0
	}

	return st
}

// Add counts one rating, ratings out of range are ignored
func (st *RatingStats) Add(rating, n int) {
	if rating < MinRating || rating > MaxRating || n <= 0 {
		return
	}

	st.ByRating[rating] += n
	st.Total += n
}

// EscalationKind where the request came from
type EscalationKind string

const (
	// EscalationInstall user asked the tracker admins to check the installation
	EscalationInstall EscalationKind = "install"
	// EscalationHelp user asked the admins for help with a problem
	EscalationHelp EscalationKind = "help"
)

// Escalation is a request forwarded to an admin chat
type Escalation struct {
	ID        string         `bson:"_id" json:"id"`
	Kind      EscalationKind `bson:"kind" json:"kind"`
	Ticket    int64          `bson:"ticket,omitempty" json:"ticket,omitempty"`
	UserID    int64          `bson:"user_id" json:"user_id"`
	Username  string         `bson:"username" json:"username"`
	Message   string         `bson:"message,omitempty" json:"message,omitempty"`
	ChatID    int64          `bson:"chat_id" json:"chat_id"`
	Delivered bool           `bson:"delivered" json:"delivered"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}
