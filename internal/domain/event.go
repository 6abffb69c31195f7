package domain

import "time"

// Confraternizacao is a fellowship event used as the deadline anchor for
// criticality. EventDate carries a calendar date; its clock is ignored.
type Confraternizacao struct {
	ID             string
	CongregationID string
	Title          string
	EventDate      time.Time
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
