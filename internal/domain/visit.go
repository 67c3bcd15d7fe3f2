package domain

import (
	"context"
	"time"
)

// Visit is one page view. The client address is only ever stored hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	VisitedAt time.Time `json:"visited_at"`
}

type VisitStats struct {
	Total    int64   `json:"total_visitors"`
	Unique   int64   `json:"unique_visitors"`
	Today    int64   `json:"visitors_today"`
	ThisWeek int64   `json:"visitors_this_week"`
	Recent   []Visit `json:"recent_visitors"`
}

type VisitRepository interface {
	Record(ctx context.Context, v *Visit) error
	// Stats counts "today" from midnight UTC of now and "this week" as the seven days
	// before now. Recent holds the latest visits, newest first.
	Stats(ctx context.Context, now time.Time, recent int) (*VisitStats, error)
	// DeleteBefore removes visits older than t and reports how many went.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}
