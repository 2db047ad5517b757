/*
Package licenca provides the core licença-prêmio computation engine.

PURPOSE:
  This package contains the domain types and algorithms for reconstructing a
  consistent leave ledger from noisy spreadsheet rows: acquisition periods,
  earned/used/remaining balances, and urgency classification.

KEY CONCEPTS IN THIS FILE (types.go):
  - RawLeaveRecord: One normalized spreadsheet row (optional fields tolerated)
  - AcquisitionPeriod: One earned-leave window with its consumption
  - LeaveBalance: Per-employee aggregate over all periods
  - Urgency: Discrete classification of how soon action is needed

DESIGN PRINCIPLES:
  1. Derived values are recomputed from raw input on every load, never mutated
  2. Malformed rows degrade to partially-null records, they never abort a run
  3. Data-quality problems (unmatched usage, overlaps) are reported, not dropped

SEE ALSO:
  - reconcile.go: Builds LeaveBalance from raw records
  - urgency.go: Urgency classification thresholds
  - errors.go: Sentinel and structured errors
*/
package licenca

// =============================================================================
// IDENTIFIERS AND ENUMS
// =============================================================================

// Matricula is the civil-servant registration number, the employee key.
type Matricula string

type Sex string

const (
	SexFemale  Sex = "F"
	SexMale    Sex = "M"
	SexUnknown Sex = ""
)

// =============================================================================
// RAW LEAVE RECORD - One spreadsheet row after field normalization
// =============================================================================

// RawLeaveRecord is one row of the source sheet in canonical shape.
// Any field may be absent: pointers are nil and day counts are zero when the
// source cell was blank or unparsable. A record never carries an error; parse
// problems are listed in Flags for diagnostics.
type RawLeaveRecord struct {
	Matricula Matricula `json:"matricula"`
	Nome      string    `json:"nome"`

	// Acquisition window for this row's entitlement.
	AquisitivoInicio *Date `json:"aquisitivoInicio,omitempty"`
	AquisitivoFim    *Date `json:"aquisitivoFim,omitempty"`

	// Leave days actually used within this row's window.
	DiasGozados int `json:"diasGozados"`

	// Remaining balance as stated in the sheet. May be stale or contradict
	// the computed value; kept for reporting, never trusted for arithmetic.
	SaldoInformado *int `json:"saldoInformado,omitempty"`

	// Explicit entitlement override for this period, when the sheet carries
	// a DIAS_DIREITO-style column. Nil means "use the configured default".
	DiasDireito *int `json:"diasDireito,omitempty"`

	LotacaoRaw  string `json:"lotacaoRaw,omitempty"`
	Lotacao     string `json:"lotacao,omitempty"` // canonical, filled by the lotação normalizer
	Admissao    *Date  `json:"admissao,omitempty"`
	Nascimento  *Date  `json:"nascimento,omitempty"`
	Sexo        Sex    `json:"sexo,omitempty"`
	Cargo       string `json:"cargo,omitempty"`
	TipoLicenca string `json:"tipoLicenca,omitempty"`
	Situacao    string `json:"situacao,omitempty"`

	// Next scheduled/approved leave start, when the sheet carries one.
	ProximaLicenca *Date `json:"proximaLicenca,omitempty"`

	// Parse diagnostics accumulated while normalizing this row.
	Flags []string `json:"flags,omitempty"`
}

// HasWindow reports whether the row carries a usable acquisition window.
func (r *RawLeaveRecord) HasWindow() bool {
	return r.AquisitivoInicio != nil && r.AquisitivoFim != nil &&
		!r.AquisitivoInicio.After(*r.AquisitivoFim)
}

// =============================================================================
// ACQUISITION PERIOD - One earned-leave window
// =============================================================================

// AcquisitionPeriod is a derived, immutable value: one employee's earned
// window with the usage matched against it. DiasDireito is a policy constant
// (default 90 per 5-year cycle), not derived from the window length.
type AcquisitionPeriod struct {
	Inicio Date `json:"inicio"`
	Fim    Date `json:"fim"`

	DiasDireito   int `json:"diasDireito"`   // earned
	DiasGozados   int `json:"diasGozados"`   // used (summed across merged duplicate rows)
	DiasRestantes int `json:"diasRestantes"` // max(0, earned - used)

	// How many source rows were merged into this period.
	SourceRows int `json:"sourceRows"`
}

// Overlaps reports whether two periods intersect without being identical.
func (p AcquisitionPeriod) Overlaps(other AcquisitionPeriod) bool {
	if p.Inicio.Equal(other.Inicio) && p.Fim.Equal(other.Fim) {
		return false
	}
	return p.Inicio.BeforeOrEqual(other.Fim) && other.Inicio.BeforeOrEqual(p.Fim)
}

// =============================================================================
// LEAVE BALANCE - Per-employee aggregate
// =============================================================================

// LeaveBalance aggregates all of one employee's acquisition periods.
// Periodos is chronological. Unmatched holds usage rows whose acquisition
// window could not be matched to any period; they are surfaced, not discarded.
type LeaveBalance struct {
	Matricula Matricula `json:"matricula"`

	TotalDireito  int                 `json:"totalDireito"`
	TotalGozado   int                 `json:"totalGozado"`
	TotalRestante int                 `json:"totalRestante"`
	Periodos      []AcquisitionPeriod `json:"periodos"`
	Unmatched     []RawLeaveRecord    `json:"unmatched,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
	SkippedRows   int                 `json:"skippedRows,omitempty"`
}

// =============================================================================
// URGENCY
// =============================================================================

type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "CRITICAL"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyModerate UrgencyLevel = "MODERATE"
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyNone     UrgencyLevel = "NONE"
)

// Urgency is derived on demand, never stored independently.
type Urgency struct {
	Level   UrgencyLevel `json:"level"`
	Message string       `json:"message"`
}

// Coarse maps the canonical 5-level scale onto the legacy 3-level display
// scale (URGENTE/MEDIO/BAIXO). Display only; classification always uses the
// 5-level scale.
func (u Urgency) Coarse() string {
	switch u.Level {
	case UrgencyCritical, UrgencyHigh:
		return "URGENTE"
	case UrgencyModerate:
		return "MEDIO"
	case UrgencyLow:
		return "BAIXO"
	default:
		return "SEM DADOS"
	}
}
