package domain

import "time"

// Member is the person a case follows. Origem is free text typed by the
// welcome team and is only ever read through ClassifyOrigin.
type Member struct {
	ID             string
	CongregationID string
	Name           string
	Phone          string
	Origem         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
