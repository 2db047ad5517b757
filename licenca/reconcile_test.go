package licenca_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigrh/licenca-engine/licenca"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) *licenca.Date {
	d := licenca.NewDate(year, month, day)
	return &d
}

func row(inicio, fim *licenca.Date, gozados int) licenca.RawLeaveRecord {
	return licenca.RawLeaveRecord{
		Matricula:        "X",
		AquisitivoInicio: inicio,
		AquisitivoFim:    fim,
		DiasGozados:      gozados,
	}
}

func newReconciler(t *testing.T) *licenca.Reconciler {
	t.Helper()
	return licenca.NewReconciler(licenca.DefaultReconcilerConfig())
}

// =============================================================================
// DUPLICATE MERGING
// =============================================================================

func TestReconcile_DuplicateRows_MergeWithoutDoubleCountingEarned(t *testing.T) {
	// GIVEN: Two rows for the same employee with identical acquisition
	//        windows (duplicate re-entries from different sheet tabs)
	// WHEN: Reconciling
	// THEN: One merged period; used days sum, earned days do not

	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2022, time.January, 1), date(2022, time.March, 31), 10),
		row(date(2022, time.January, 1), date(2022, time.March, 31), 5),
	})

	require.Len(t, balance.Periodos, 1, "identical windows must merge")
	p := balance.Periodos[0]
	assert.Equal(t, 90, p.DiasDireito)
	assert.Equal(t, 15, p.DiasGozados)
	assert.Equal(t, 75, p.DiasRestantes)
	assert.Equal(t, 2, p.SourceRows)

	assert.Equal(t, 90, balance.TotalDireito)
	assert.Equal(t, 15, balance.TotalGozado)
	assert.Equal(t, 75, balance.TotalRestante)
}

func TestReconcile_DistinctWindows_StayDistinct(t *testing.T) {
	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2017, time.January, 1), date(2021, time.December, 31), 30),
		row(date(2022, time.January, 1), date(2026, time.December, 31), 0),
	})

	require.Len(t, balance.Periodos, 2)
	assert.Equal(t, 180, balance.TotalDireito)
	assert.Equal(t, 30, balance.TotalGozado)
	assert.Equal(t, 150, balance.TotalRestante)
}

func TestReconcile_PeriodsAreChronological(t *testing.T) {
	// GIVEN: Rows arriving in reverse order (sheet tabs are unordered)
	// THEN: Periods come out sorted by start date

	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2022, time.January, 1), date(2026, time.December, 31), 0),
		row(date(2012, time.January, 1), date(2016, time.December, 31), 90),
		row(date(2017, time.January, 1), date(2021, time.December, 31), 45),
	})

	require.Len(t, balance.Periodos, 3)
	assert.Equal(t, 2012, balance.Periodos[0].Inicio.Year())
	assert.Equal(t, 2017, balance.Periodos[1].Inicio.Year())
	assert.Equal(t, 2022, balance.Periodos[2].Inicio.Year())
}

// =============================================================================
// TOTALS INVARIANTS
// =============================================================================

func TestReconcile_RemainingNeverNegative(t *testing.T) {
	// GIVEN: A row reporting more usage than the entitlement
	// THEN: Remaining floors at 0 and the inconsistency is reported

	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2022, time.January, 1), date(2022, time.March, 31), 120),
	})

	require.Len(t, balance.Periodos, 1)
	assert.Equal(t, 0, balance.Periodos[0].DiasRestantes)
	assert.Equal(t, 0, balance.TotalRestante)
	assert.NotEmpty(t, balance.Warnings, "over-consumption must be surfaced")
}

func TestReconcile_UsedDaysTieBackToMatchedRows(t *testing.T) {
	// Total used must equal the sum of matched rows' usage - no double
	// counting, no loss.

	rc := newReconciler(t)

	rows := []licenca.RawLeaveRecord{
		row(date(2012, time.January, 1), date(2016, time.December, 31), 30),
		row(date(2012, time.January, 1), date(2016, time.December, 31), 15),
		row(date(2017, time.January, 1), date(2021, time.December, 31), 20),
	}
	balance := rc.Reconcile("X", rows)

	sum := 0
	for _, p := range balance.Periodos {
		sum += p.DiasGozados
	}
	assert.Equal(t, 30+15+20, sum)
	assert.Equal(t, sum, balance.TotalGozado)
}

func TestReconcile_EntitlementOverride(t *testing.T) {
	// GIVEN: A row carrying an explicit DIAS_DIREITO value
	// THEN: The override replaces the configured default for that period only

	rc := newReconciler(t)
	direito := 60

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		{
			Matricula:        "X",
			AquisitivoInicio: date(2012, time.January, 1),
			AquisitivoFim:    date(2016, time.December, 31),
			DiasGozados:      10,
			DiasDireito:      &direito,
		},
		row(date(2017, time.January, 1), date(2021, time.December, 31), 0),
	})

	require.Len(t, balance.Periodos, 2)
	assert.Equal(t, 60, balance.Periodos[0].DiasDireito)
	assert.Equal(t, 50, balance.Periodos[0].DiasRestantes)
	assert.Equal(t, 90, balance.Periodos[1].DiasDireito)
}

// =============================================================================
// MALFORMED INPUT
// =============================================================================

func TestReconcile_UsageWithoutWindow_GoesToUnmatched(t *testing.T) {
	// GIVEN: A usage row whose acquisition window is missing
	// THEN: It is retained in Unmatched, not silently dropped

	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2022, time.January, 1), date(2022, time.March, 31), 10),
		row(nil, nil, 7),
	})

	require.Len(t, balance.Periodos, 1)
	require.Len(t, balance.Unmatched, 1)
	assert.Equal(t, 7, balance.Unmatched[0].DiasGozados)
	// Unmatched usage does not enter the totals.
	assert.Equal(t, 10, balance.TotalGozado)
}

func TestReconcile_EmptyRowsAreCountedNotErrored(t *testing.T) {
	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(nil, nil, 0),
		row(date(2022, time.January, 1), date(2022, time.March, 31), 0),
	})

	assert.Equal(t, 1, balance.SkippedRows)
	assert.Empty(t, balance.Unmatched)
}

func TestReconcile_NoRecords_YieldsZeroBalance(t *testing.T) {
	// An employee with zero valid records yields an all-zero balance with an
	// empty period list, not an error.

	rc := newReconciler(t)

	balance := rc.Reconcile("X", nil)

	assert.Equal(t, 0, balance.TotalDireito)
	assert.Equal(t, 0, balance.TotalGozado)
	assert.Equal(t, 0, balance.TotalRestante)
	assert.Empty(t, balance.Periodos)
	assert.Empty(t, balance.Unmatched)
}

func TestReconcile_OverlappingWindows_ReportedNotMerged(t *testing.T) {
	// GIVEN: Two windows that intersect without being identical
	// THEN: Both survive as periods and a warning is raised

	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2020, time.January, 1), date(2024, time.December, 31), 0),
		row(date(2022, time.January, 1), date(2026, time.December, 31), 0),
	})

	require.Len(t, balance.Periodos, 2)
	assert.NotEmpty(t, balance.Warnings)
}

func TestNextOpenPeriod(t *testing.T) {
	rc := newReconciler(t)

	balance := rc.Reconcile("X", []licenca.RawLeaveRecord{
		row(date(2012, time.January, 1), date(2016, time.December, 31), 90), // exhausted
		row(date(2017, time.January, 1), date(2021, time.December, 31), 30),
	})

	open := licenca.NextOpenPeriod(balance)
	require.NotNil(t, open)
	assert.Equal(t, 2017, open.Inicio.Year())
	assert.Equal(t, 60, open.DiasRestantes)

	empty := licenca.NextOpenPeriod(licenca.LeaveBalance{})
	assert.Nil(t, empty)
}
