package periods

import "time"

// PeriodStatus enumerates valid fiscal period states.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
	PeriodStatusLocked PeriodStatus = "locked"
)

// Period represents a fiscal period window.
type Period struct {
	ID         int64
	BusinessID int64
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Status     PeriodStatus
	ClosedBy   *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
