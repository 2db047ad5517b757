/*
Package dashboard composes the normalization, reconciliation, urgency and
retirement engines into per-employee enriched records and exposes the query
surface consumed by the presentation layer.

PURPOSE:
  The UI (tables, calendars, reports - out of scope here) depends on exactly
  one contract: the enriched record shape returned by this package. Raw rows
  go in via Load; everything else is a pure query over the resulting
  in-memory collection.

LIFECYCLE:
  Every Load recomputes all derived entities from scratch. There is no
  incremental mutation: filter/group/search/stats read an immutable snapshot.
  The only mutable state is the lotação override table (owned by the
  normalizer) and the short-lived stats cache (owned here, invalidated on
  Load, last-writer-wins).

ERROR SEMANTICS:
  Empty dataset: queries return empty collections, never errors.
  Unknown matrícula: NotFoundError.
  Unknown group-by field: GroupFieldError (caller misuse, loud and early).
*/
package dashboard

import (
	"strings"

	"github.com/sigrh/licenca-engine/licenca"
	"github.com/sigrh/licenca-engine/normalize"
	"github.com/sigrh/licenca-engine/retirement"
)

// =============================================================================
// ENRICHED RECORD - The sole contract with the presentation layer
// =============================================================================

// Employee is one servant's enriched record: merged raw fields plus the
// computed balance, urgency, and retirement analysis. Field names are part
// of the external contract; keep them stable.
type Employee struct {
	Matricula licenca.Matricula `json:"matricula"`
	Nome      string            `json:"nome"`
	Lotacao   string            `json:"lotacao"`
	Cargo     string            `json:"cargo"`
	Sexo      licenca.Sex       `json:"sexo"`

	TipoLicenca string `json:"tipoLicenca,omitempty"`
	Situacao    string `json:"situacao,omitempty"`

	Admissao       *licenca.Date `json:"admissao,omitempty"`
	Nascimento     *licenca.Date `json:"nascimento,omitempty"`
	ProximaLicenca *licenca.Date `json:"proximaLicenca,omitempty"`

	Calculated    licenca.LeaveBalance `json:"calculated"`
	Urgency       licenca.Urgency      `json:"urgency"`
	Aposentadoria *retirement.Analysis `json:"aposentadoria,omitempty"`
}

// =============================================================================
// FACADE
// =============================================================================

// Facade owns the in-memory record set and its query operations. Construct
// one at startup with explicit dependencies; there is no ambient global.
type Facade struct {
	records    *normalize.RecordNormalizer
	lotacoes   *normalize.LotacaoNormalizer
	reconciler *licenca.Reconciler
	urgencia   *licenca.UrgencyClassifier
	aposenta   *retirement.Engine

	// Clock indirection so tests pin "today".
	hoje func() licenca.Date

	employees []Employee
	raw       []licenca.RawLeaveRecord

	cache *statsCache
}

// Deps are the facade's collaborators. Nil fields get defaults.
type Deps struct {
	Records    *normalize.RecordNormalizer
	Lotacoes   *normalize.LotacaoNormalizer
	Reconciler *licenca.Reconciler
	Urgencia   *licenca.UrgencyClassifier
	Aposenta   *retirement.Engine
	Hoje       func() licenca.Date
}

func New(deps Deps) *Facade {
	if deps.Records == nil {
		deps.Records = normalize.NewRecordNormalizer()
	}
	if deps.Lotacoes == nil {
		deps.Lotacoes = normalize.NewLotacaoNormalizer()
	}
	if deps.Reconciler == nil {
		deps.Reconciler = licenca.NewReconciler(licenca.DefaultReconcilerConfig())
	}
	if deps.Urgencia == nil {
		deps.Urgencia = licenca.NewUrgencyClassifier(licenca.DefaultUrgencyThresholds())
	}
	if deps.Aposenta == nil {
		deps.Aposenta = retirement.NewEngine(retirement.DefaultConfig())
	}
	if deps.Hoje == nil {
		deps.Hoje = licenca.Today
	}
	return &Facade{
		records:    deps.Records,
		lotacoes:   deps.Lotacoes,
		reconciler: deps.Reconciler,
		urgencia:   deps.Urgencia,
		aposenta:   deps.Aposenta,
		hoje:       deps.Hoje,
		cache:      newStatsCache(defaultStatsTTL),
	}
}

// Lotacoes exposes the shared lotação normalizer (rule management surface).
func (f *Facade) Lotacoes() *normalize.LotacaoNormalizer { return f.lotacoes }

// RawRecords returns the normalized rows from the last Load.
func (f *Facade) RawRecords() []licenca.RawLeaveRecord { return f.raw }

// =============================================================================
// LOAD - Raw rows to enriched records
// =============================================================================

// Load replaces the in-memory record set with the enrichment of the given
// raw rows and invalidates the stats cache. Malformed rows degrade to
// partially-null records; they never abort the load.
func (f *Facade) Load(rows []map[string]any) []Employee {
	hoje := f.hoje()

	normalized := make([]licenca.RawLeaveRecord, 0, len(rows))
	for _, row := range rows {
		rec := f.records.Normalize(row)
		rec.Lotacao = f.lotacoes.Normalize(rec.LotacaoRaw)
		normalized = append(normalized, rec)
	}

	// Group by matrícula, preserving first-seen order.
	grouped := make(map[licenca.Matricula][]licenca.RawLeaveRecord)
	var order []licenca.Matricula
	for _, rec := range normalized {
		if rec.Matricula == "" {
			continue
		}
		if _, seen := grouped[rec.Matricula]; !seen {
			order = append(order, rec.Matricula)
		}
		grouped[rec.Matricula] = append(grouped[rec.Matricula], rec)
	}

	employees := make([]Employee, 0, len(order))
	for _, mat := range order {
		employees = append(employees, f.enrich(mat, grouped[mat], hoje))
	}

	f.employees = employees
	f.raw = normalized
	f.cache.invalidate()
	return f.snapshot()
}

// enrich merges one employee's rows into a single record and annotates it.
func (f *Facade) enrich(mat licenca.Matricula, rows []licenca.RawLeaveRecord, hoje licenca.Date) Employee {
	emp := Employee{Matricula: mat}

	for _, r := range rows {
		if emp.Nome == "" {
			emp.Nome = r.Nome
		}
		if emp.Lotacao == "" {
			emp.Lotacao = r.Lotacao
		}
		if emp.Cargo == "" {
			emp.Cargo = r.Cargo
		}
		if emp.Sexo == licenca.SexUnknown {
			emp.Sexo = r.Sexo
		}
		if emp.TipoLicenca == "" {
			emp.TipoLicenca = r.TipoLicenca
		}
		if emp.Situacao == "" {
			emp.Situacao = r.Situacao
		}
		if emp.Admissao == nil {
			emp.Admissao = r.Admissao
		}
		if emp.Nascimento == nil {
			emp.Nascimento = r.Nascimento
		}
		if r.ProximaLicenca != nil && r.ProximaLicenca.AfterOrEqual(hoje) {
			if emp.ProximaLicenca == nil || r.ProximaLicenca.Before(*emp.ProximaLicenca) {
				emp.ProximaLicenca = r.ProximaLicenca
			}
		}
	}

	emp.Calculated = f.reconciler.Reconcile(mat, rows)

	var restantes *int
	if len(emp.Calculated.Periodos) > 0 {
		r := emp.Calculated.TotalRestante
		restantes = &r
	}
	emp.Urgency = f.urgencia.Classify(restantes, emp.ProximaLicenca, hoje)

	if emp.Nascimento != nil {
		idade := float64(licenca.DaysBetween(*emp.Nascimento, hoje)) / 365.25
		var servico float64
		if emp.Admissao != nil {
			servico = float64(licenca.DaysBetween(*emp.Admissao, hoje)) / 365.25
			if servico < 0 {
				servico = 0
			}
		}
		analysis := f.aposenta.Evaluate(emp.Sexo, idade, servico, hoje)
		emp.Aposentadoria = &analysis
	}

	return emp
}

// =============================================================================
// QUERIES
// =============================================================================

// All returns the full enriched record set.
func (f *Facade) All() []Employee { return f.snapshot() }

// Criteria are AND-combined filters; zero values impose no constraint.
type Criteria struct {
	Lotacao          string
	Cargo            string
	TipoLicenca      string
	Situacao         string
	Urgencia         licenca.UrgencyLevel
	MinDiasRestantes *int
	MaxDiasRestantes *int
}

func (c Criteria) matches(e Employee, fold func(string) string) bool {
	if c.Lotacao != "" && fold(e.Lotacao) != fold(c.Lotacao) {
		return false
	}
	if c.Cargo != "" && fold(e.Cargo) != fold(c.Cargo) {
		return false
	}
	if c.TipoLicenca != "" && fold(e.TipoLicenca) != fold(c.TipoLicenca) {
		return false
	}
	if c.Situacao != "" && fold(e.Situacao) != fold(c.Situacao) {
		return false
	}
	if c.Urgencia != "" && e.Urgency.Level != c.Urgencia {
		return false
	}
	if c.MinDiasRestantes != nil && e.Calculated.TotalRestante < *c.MinDiasRestantes {
		return false
	}
	if c.MaxDiasRestantes != nil && e.Calculated.TotalRestante > *c.MaxDiasRestantes {
		return false
	}
	return true
}

// Filter returns the employees matching all set criteria. Empty dataset or
// no matches return an empty slice, never an error.
func (f *Facade) Filter(c Criteria) []Employee {
	var out []Employee
	for _, e := range f.employees {
		if c.matches(e, normalize.FoldKey) {
			out = append(out, e)
		}
	}
	return out
}

// GroupFields lists the fields GroupBy accepts.
var GroupFields = []string{"lotacao", "cargo", "urgencia", "situacao", "tipoLicenca"}

// GroupBy partitions the record set by the given field. An unknown field is
// caller misuse and returns a descriptive error.
func (f *Facade) GroupBy(field string) (map[string][]Employee, error) {
	keyFn, ok := map[string]func(Employee) string{
		"lotacao":     func(e Employee) string { return e.Lotacao },
		"cargo":       func(e Employee) string { return e.Cargo },
		"urgencia":    func(e Employee) string { return string(e.Urgency.Level) },
		"situacao":    func(e Employee) string { return e.Situacao },
		"tipoLicenca": func(e Employee) string { return e.TipoLicenca },
	}[field]
	if !ok {
		return nil, &licenca.GroupFieldError{Field: field, Valid: GroupFields}
	}

	groups := make(map[string][]Employee)
	for _, e := range f.employees {
		key := keyFn(e)
		if key == "" {
			key = "(sem valor)"
		}
		groups[key] = append(groups[key], e)
	}
	return groups, nil
}

// Search matches a case- and diacritic-insensitive substring against name
// or matrícula.
func (f *Facade) Search(text string) []Employee {
	needle := normalize.FoldKey(text)
	if needle == "" {
		return f.snapshot()
	}
	var out []Employee
	for _, e := range f.employees {
		if strings.Contains(normalize.FoldKey(e.Nome), needle) ||
			strings.Contains(normalize.FoldKey(string(e.Matricula)), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Summary returns one employee's enriched record.
func (f *Facade) Summary(mat licenca.Matricula) (Employee, error) {
	for _, e := range f.employees {
		if e.Matricula == mat {
			return e, nil
		}
	}
	return Employee{}, &licenca.NotFoundError{Matricula: mat}
}

func (f *Facade) snapshot() []Employee {
	out := make([]Employee, len(f.employees))
	copy(out, f.employees)
	return out
}
