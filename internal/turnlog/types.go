package turnlog

import (
	"context"
	"time"
)

// TurnRecord stores the outcome of one dispatched turn for diagnostics.
type TurnRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Intent    string    `json:"intent"`
	Stop      string    `json:"stop,omitempty"`
	Outcome   string    `json:"outcome"`
	Speech    string    `json:"speech,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves turn history.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	RecentTurns(ctx context.Context, limit int) ([]TurnRecord, error)
	Close() error
}
