/*
reconcile.go - Period reconciliation: raw rows to a consistent balance ledger

PURPOSE:
  Given all of one employee's raw rows (multiple acquisition periods, usage
  records, duplicate re-entries from different sheet tabs), rebuild a
  consistent ledger: non-overlapping acquisition periods with earned / used /
  remaining days, plus totals.

ALGORITHM:
  1. Split rows into those with a usable acquisition window and those without.
     Windowless rows that still carry usage go to Unmatched (data-quality
     signal); windowless rows with no usage are only counted as skipped.
  2. Sort windowed rows by start date (stable; nulls were already split off).
  3. Merge rows sharing an identical (start, end) pair - duplicate re-entries
     of the same period. Used days SUM across merged rows; earned days do NOT
     (one period earns once).
  4. Earned days per period = configured constant (default 90 per 5-year
     cycle) unless a row carries an explicit entitlement override.
  5. Remaining = max(0, earned - used). Never negative.
  6. Non-identical windows that still intersect are reported as warnings.

FAILURE SEMANTICS:
  Zero valid rows yield an all-zero balance with empty period list, not an
  error. Reconciliation is a pure function of its input and never mutates it.
*/
package licenca

import (
	"fmt"
	"sort"
)

// =============================================================================
// RECONCILER CONFIG
// =============================================================================

// ReconcilerConfig carries the policy constants for period reconciliation.
type ReconcilerConfig struct {
	// DiasPorPeriodo is the entitlement earned by one full acquisition
	// period. Fixed by statute, not derived from the window length.
	DiasPorPeriodo int
}

// DefaultReconcilerConfig returns the statutory default: 90 days earned per
// completed 5-year cycle.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{DiasPorPeriodo: 90}
}

// Reconciler builds LeaveBalance values from raw records.
type Reconciler struct {
	cfg ReconcilerConfig
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.DiasPorPeriodo <= 0 {
		cfg.DiasPorPeriodo = DefaultReconcilerConfig().DiasPorPeriodo
	}
	return &Reconciler{cfg: cfg}
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// windowKey identifies one acquisition period for duplicate merging.
type windowKey struct {
	inicio string
	fim    string
}

// Reconcile rebuilds the balance ledger for one employee's rows.
// The input slice is not modified.
func (rc *Reconciler) Reconcile(matricula Matricula, records []RawLeaveRecord) LeaveBalance {
	balance := LeaveBalance{Matricula: matricula}

	var windowed []RawLeaveRecord
	for _, r := range records {
		if r.HasWindow() {
			windowed = append(windowed, r)
			continue
		}
		// No usable window. Usage with a dangling reference is retained for
		// operator review; empty rows are merely counted.
		if r.DiasGozados > 0 {
			balance.Unmatched = append(balance.Unmatched, r)
		} else {
			balance.SkippedRows++
		}
	}

	// Sort by acquisition start, then end, for deterministic output
	// regardless of sheet-tab order.
	sort.SliceStable(windowed, func(i, j int) bool {
		a, b := windowed[i], windowed[j]
		if !a.AquisitivoInicio.Equal(*b.AquisitivoInicio) {
			return a.AquisitivoInicio.Before(*b.AquisitivoInicio)
		}
		return a.AquisitivoFim.Before(*b.AquisitivoFim)
	})

	// Merge identical (start, end) pairs.
	merged := make(map[windowKey]*AcquisitionPeriod)
	var order []windowKey
	for _, r := range windowed {
		k := windowKey{inicio: r.AquisitivoInicio.String(), fim: r.AquisitivoFim.String()}
		p, ok := merged[k]
		if !ok {
			p = &AcquisitionPeriod{
				Inicio:      *r.AquisitivoInicio,
				Fim:         *r.AquisitivoFim,
				DiasDireito: rc.cfg.DiasPorPeriodo,
			}
			merged[k] = p
			order = append(order, k)
		}
		p.DiasGozados += r.DiasGozados
		p.SourceRows++
		// First explicit override wins; duplicate rows re-state the same
		// entitlement, they do not stack it.
		if r.DiasDireito != nil && p.DiasDireito == rc.cfg.DiasPorPeriodo {
			p.DiasDireito = *r.DiasDireito
		}
	}

	for _, k := range order {
		p := merged[k]
		p.DiasRestantes = p.DiasDireito - p.DiasGozados
		if p.DiasRestantes < 0 {
			balance.Warnings = append(balance.Warnings, fmt.Sprintf(
				"periodo %s a %s: %d dias gozados excedem o direito de %d",
				p.Inicio, p.Fim, p.DiasGozados, p.DiasDireito))
			p.DiasRestantes = 0
		}
		balance.Periodos = append(balance.Periodos, *p)
	}

	// Detect non-identical overlapping windows; report, never merge.
	for i := 0; i < len(balance.Periodos); i++ {
		for j := i + 1; j < len(balance.Periodos); j++ {
			if balance.Periodos[i].Overlaps(balance.Periodos[j]) {
				balance.Warnings = append(balance.Warnings, fmt.Sprintf(
					"periodos sobrepostos: %s a %s e %s a %s",
					balance.Periodos[i].Inicio, balance.Periodos[i].Fim,
					balance.Periodos[j].Inicio, balance.Periodos[j].Fim))
			}
		}
	}

	for _, p := range balance.Periodos {
		balance.TotalDireito += p.DiasDireito
		balance.TotalGozado += p.DiasGozados
		balance.TotalRestante += p.DiasRestantes
	}

	return balance
}

// NextOpenPeriod returns the chronologically first period that still has
// remaining days, or nil when the employee has none.
func NextOpenPeriod(b LeaveBalance) *AcquisitionPeriod {
	for i := range b.Periodos {
		if b.Periodos[i].DiasRestantes > 0 {
			return &b.Periodos[i]
		}
	}
	return nil
}
