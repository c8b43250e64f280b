// Package dao persists tickets, ratings and escalations of the support bot.
package dao

import (
	"context"

	"github.com/Laisky/laisky-support-bot/internal/support/model"
)

// TicketCounter hands out ticket numbers, the first one is 1
type TicketCounter interface {
	Next(ctx context.Context) (int64, error)
}

// RatingStore keeps user ratings
type RatingStore interface {
	Save(ctx context.Context, rating model.Rating) error
	Stats(ctx context.Context) (*model.RatingStats, error)
}

// EscalationLog records every request forwarded to admins
type EscalationLog interface {
	Record(ctx context.Context, esc *model.Escalation) error
}

// NopEscalationLog drops every record
type NopEscalationLog struct{}

// Record do nothing
func (NopEscalationLog) Record(context.Context, *model.Escalation) error {
	return nil
}
