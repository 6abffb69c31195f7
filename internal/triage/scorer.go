package triage

import (
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// Tier thresholds. mediumDays doubles as the "≤ 7 dias" badge.
const (
	criticalContacts = 3 // negative contacts that alone force CRITICA
	highContacts     = 2
	mediumContacts   = 1
	highDays         = 3 // days to confra that force at least ALTA
	mediumDays       = 7 // "near confra" badge
)

// Score maps a case's negative-contact count and days to the confraternização
// into a criticality tier. Rules are checked in order; first match wins.
func Score(negativeContactCount int, daysToConfra *int) domain.Criticality {
	hasDeadline := daysToConfra != nil

	switch {
	case hasDeadline && *daysToConfra <= 0:
		if negativeContactCount >= highContacts {
			return domain.CriticalityCritica
		}
		return domain.CriticalityAlta
	case negativeContactCount >= criticalContacts:
		return domain.CriticalityCritica
	case negativeContactCount == highContacts || (hasDeadline && *daysToConfra <= highDays):
		return domain.CriticalityAlta
	case negativeContactCount == mediumContacts || (hasDeadline && *daysToConfra <= mediumDays):
		return domain.CriticalityMedia
	default:
		return domain.CriticalityBaixa
	}
}

// NearConfra reports whether the event is today or within the badge window.
func NearConfra(daysToConfra *int) bool {
	return daysToConfra != nil && *daysToConfra >= 0 && *daysToConfra <= mediumDays
}

// Rank totally orders tiers: BAIXA < MEDIA < ALTA < CRITICA.
// Unknown values rank below BAIXA.
func Rank(c domain.Criticality) int {
	switch c {
	case domain.CriticalityCritica:
		return 3
	case domain.CriticalityAlta:
		return 2
	case domain.CriticalityMedia:
		return 1
	case domain.CriticalityBaixa:
		return 0
	default:
		return -1
	}
}

// Escalated reports whether moving from prev to next raised the tier.
func Escalated(prev, next domain.Criticality) bool {
	return Rank(next) > Rank(prev)
}

// Recompute derives (days_to_confra, criticality) for c. event is the
// confraternização linked to the case, or nil. Every writer path and the
// queue read path go through here so the thresholds live in one place.
func Recompute(c *domain.Case, event *domain.Confraternizacao, now time.Time, loc *time.Location) domain.Derived {
	var days *int
	if event != nil {
		d := DaysUntil(event.EventDate, now, loc)
		days = &d
	}
	return domain.Derived{
		DaysToConfra: days,
		Criticality:  Score(c.NegativeContactCount, days),
	}
}
