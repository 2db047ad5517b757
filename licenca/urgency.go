/*
urgency.go - Urgency classification

PURPOSE:
  Derives a discrete urgency level from how soon an employee's leave
  entitlement needs attention. Recomputed on demand; never stored.

CANONICAL SCALE (days until the next scheduled leave, or days remaining in
the current cycle when no date is scheduled):

  CRITICAL  <= 7
  HIGH      <= 30
  MODERATE  <= 90
  LOW       >  90
  NONE      no data / not eligible

The legacy 3-level scale (URGENTE/MEDIO/BAIXO) survives only as a display
projection, see Urgency.Coarse.
*/
package licenca

import "fmt"

// =============================================================================
// THRESHOLDS
// =============================================================================

// UrgencyThresholds holds the upper bound (inclusive) of each level.
type UrgencyThresholds struct {
	Critical int
	High     int
	Moderate int
}

func DefaultUrgencyThresholds() UrgencyThresholds {
	return UrgencyThresholds{Critical: 7, High: 30, Moderate: 90}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

type UrgencyClassifier struct {
	thresholds UrgencyThresholds
}

func NewUrgencyClassifier(t UrgencyThresholds) *UrgencyClassifier {
	if t.Critical <= 0 || t.High <= t.Critical || t.Moderate <= t.High {
		t = DefaultUrgencyThresholds()
	}
	return &UrgencyClassifier{thresholds: t}
}

// Classify derives the urgency level for one employee.
//
// When a next scheduled leave date is known, the classified quantity is the
// number of days until that date (counted from hoje). Otherwise the raw
// days-remaining figure is classified directly. With neither, the level is
// NONE - absence of data is not an error.
func (c *UrgencyClassifier) Classify(diasRestantes *int, proximaLicenca *Date, hoje Date) Urgency {
	var days int
	var subject string

	switch {
	case proximaLicenca != nil:
		days = DaysBetween(hoje, *proximaLicenca)
		subject = fmt.Sprintf("licença agendada para %s", proximaLicenca)
	case diasRestantes != nil:
		days = *diasRestantes
		subject = fmt.Sprintf("%d dias restantes no ciclo", days)
	default:
		return Urgency{Level: UrgencyNone, Message: "sem dados de licença"}
	}

	level := c.levelFor(days)
	return Urgency{Level: level, Message: fmt.Sprintf("%s: %s", level, subject)}
}

func (c *UrgencyClassifier) levelFor(days int) UrgencyLevel {
	switch {
	case days <= c.thresholds.Critical:
		return UrgencyCritical
	case days <= c.thresholds.High:
		return UrgencyHigh
	case days <= c.thresholds.Moderate:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}
