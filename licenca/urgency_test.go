package licenca_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sigrh/licenca-engine/licenca"
)

func TestUrgencyClassifier_CanonicalScale(t *testing.T) {
	// The canonical 5-level scale: CRITICAL <=7, HIGH <=30, MODERATE <=90,
	// LOW >90, NONE when there is no data.

	c := licenca.NewUrgencyClassifier(licenca.DefaultUrgencyThresholds())
	hoje := licenca.NewDate(2025, time.June, 1)

	tests := []struct {
		name string
		dias *int
		want licenca.UrgencyLevel
	}{
		{"5 days is critical", intPtr(5), licenca.UrgencyCritical},
		{"7 days is still critical", intPtr(7), licenca.UrgencyCritical},
		{"8 days is high", intPtr(8), licenca.UrgencyHigh},
		{"20 days is high", intPtr(20), licenca.UrgencyHigh},
		{"60 days is moderate", intPtr(60), licenca.UrgencyModerate},
		{"200 days is low", intPtr(200), licenca.UrgencyLow},
		{"zero days is critical", intPtr(0), licenca.UrgencyCritical},
		{"no data is none", nil, licenca.UrgencyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.dias, nil, hoje)
			assert.Equal(t, tt.want, got.Level)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestUrgencyClassifier_ScheduledDateWinsOverBalance(t *testing.T) {
	// GIVEN: A large remaining balance but a leave scheduled in 3 days
	// THEN: The scheduled date drives the classification

	c := licenca.NewUrgencyClassifier(licenca.DefaultUrgencyThresholds())
	hoje := licenca.NewDate(2025, time.June, 1)
	proxima := licenca.NewDate(2025, time.June, 4)

	got := c.Classify(intPtr(200), &proxima, hoje)
	assert.Equal(t, licenca.UrgencyCritical, got.Level)
}

func TestUrgencyClassifier_NoDataNeverErrors(t *testing.T) {
	c := licenca.NewUrgencyClassifier(licenca.DefaultUrgencyThresholds())

	got := c.Classify(nil, nil, licenca.Today())
	assert.Equal(t, licenca.UrgencyNone, got.Level)
}

func TestUrgency_CoarseProjection(t *testing.T) {
	// The legacy 3-level scale is display-only.
	assert.Equal(t, "URGENTE", licenca.Urgency{Level: licenca.UrgencyCritical}.Coarse())
	assert.Equal(t, "URGENTE", licenca.Urgency{Level: licenca.UrgencyHigh}.Coarse())
	assert.Equal(t, "MEDIO", licenca.Urgency{Level: licenca.UrgencyModerate}.Coarse())
	assert.Equal(t, "BAIXO", licenca.Urgency{Level: licenca.UrgencyLow}.Coarse())
	assert.Equal(t, "SEM DADOS", licenca.Urgency{Level: licenca.UrgencyNone}.Coarse())
}

func intPtr(n int) *int { return &n }
