/*
Package retirement evaluates the three pension rules applicable to civil
servants and projects the earliest qualifying date.

RULES (Emenda Constitucional 103/2019 transition tables):
  By age:            minimum age 62 (F) / 65 (M) AND 15 years of service.
  By points:         age + service >= required points. The requirement rises
                     1 point per year from a configured base year until it
                     caps at 100 (F) / 105 (M).
  By progressive age: minimum age rises 0.5 year per year from the base year,
                     capped at 62 (F) / 65 (M); also requires 30 years of
                     service.

ARITHMETIC:
  Date projection adds WHOLE YEARS only. Fractional gaps round up (you only
  qualify once the full year has elapsed). The half-point progressive-age
  steps use decimal.Decimal; floats would drift across the 0.5 increments.

ELIGIBILITY:
  eligible == (yearsToGo == 0): the gap-derived projected date has already
  arrived. The analysis always carries all three projected dates so callers
  can display time-remaining even when nothing qualifies today.
*/
package retirement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sigrh/licenca-engine/licenca"
)

// =============================================================================
// RULE TABLES
// =============================================================================

// RuleTable holds the per-sex constants of the three rules.
type RuleTable struct {
	MinAge        int // by-age rule
	MinServiceAge int // by-age rule service floor

	PointsBase int // required points at BaseYear
	PointsCap  int

	ProgressiveBase       decimal.Decimal // required age at BaseYear
	ProgressiveCap        decimal.Decimal
	ProgressiveMinService int
}

// Config fixes the base year the tables are anchored to.
type Config struct {
	BaseYear int
	Female   RuleTable
	Male     RuleTable
}

// DefaultConfig returns the transition tables anchored at 2025.
func DefaultConfig() Config {
	return Config{
		BaseYear: 2025,
		Female: RuleTable{
			MinAge:                62,
			MinServiceAge:         15,
			PointsBase:            92,
			PointsCap:             100,
			ProgressiveBase:       decimal.NewFromInt(59),
			ProgressiveCap:        decimal.NewFromInt(62),
			ProgressiveMinService: 30,
		},
		Male: RuleTable{
			MinAge:                65,
			MinServiceAge:         15,
			PointsBase:            102,
			PointsCap:             105,
			ProgressiveBase:       decimal.NewFromInt(64),
			ProgressiveCap:        decimal.NewFromInt(65),
			ProgressiveMinService: 30,
		},
	}
}

// =============================================================================
// RESULTS
// =============================================================================

type Rule string

const (
	RuleByAge            Rule = "idade"
	RuleByPoints         Rule = "pontos"
	RuleByProgressiveAge Rule = "idade_progressiva"
)

// Option is one rule's evaluation: whether it is satisfied today, the
// projected qualifying date, and a human-readable description.
type Option struct {
	Rule      Rule         `json:"regra"`
	Eligible  bool         `json:"elegivel"`
	YearsToGo int          `json:"anosRestantes"`
	Date      licenca.Date `json:"dataProjetada"`
	Descricao string       `json:"descricao"`
}

// Analysis aggregates the three options. Best is the eligible option with
// the earliest projected date, nil when nothing qualifies today.
type Analysis struct {
	ByAge            Option  `json:"porIdade"`
	ByPoints         Option  `json:"porPontos"`
	ByProgressiveAge Option  `json:"porIdadeProgressiva"`
	Eligible         bool    `json:"elegivel"`
	Best             *Option `json:"melhorOpcao,omitempty"`
}

// Options returns the three evaluations in rule order.
func (a *Analysis) Options() []Option {
	return []Option{a.ByAge, a.ByPoints, a.ByProgressiveAge}
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.BaseYear == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs the three rules for one servant. Age and service years may
// be fractional; projections round the gap UP to whole years. Unknown sex
// falls back to the male table (the stricter thresholds).
func (e *Engine) Evaluate(sex licenca.Sex, age, serviceYears float64, ref licenca.Date) Analysis {
	table := e.cfg.Male
	if sex == licenca.SexFemale {
		table = e.cfg.Female
	}

	a := Analysis{
		ByAge:            e.byAge(table, age, serviceYears, ref),
		ByPoints:         e.byPoints(table, age, serviceYears, ref),
		ByProgressiveAge: e.byProgressiveAge(table, age, serviceYears, ref),
	}

	for _, opt := range a.Options() {
		if !opt.Eligible {
			continue
		}
		a.Eligible = true
		if a.Best == nil || opt.Date.Before(a.Best.Date) {
			best := opt
			a.Best = &best
		}
	}
	return a
}

// byAge: fixed minimum age and service floor. Years-to-go is the larger of
// the two gaps (age and service advance together while waiting).
func (e *Engine) byAge(t RuleTable, age, service float64, ref licenca.Date) Option {
	gap := maxInt(ceilGap(float64(t.MinAge)-age), ceilGap(float64(t.MinServiceAge)-service))
	return Option{
		Rule:      RuleByAge,
		Eligible:  gap == 0,
		YearsToGo: gap,
		Date:      ref.AddYears(gap),
		Descricao: fmt.Sprintf("Aposentadoria por idade: %d anos de idade e %d de contribuição",
			t.MinAge, t.MinServiceAge),
	}
}

// byPoints: required points rise 1/year from the base year, capped. A point
// deficit closes at 2 points per year because age and service both advance.
func (e *Engine) byPoints(t RuleTable, age, service float64, ref licenca.Date) Option {
	required := t.PointsBase + (ref.Year() - e.cfg.BaseYear)
	if required > t.PointsCap {
		required = t.PointsCap
	}
	if required < t.PointsBase {
		required = t.PointsBase
	}

	points := age + service
	gap := ceilGap((float64(required) - points) / 2)
	return Option{
		Rule:      RuleByPoints,
		Eligible:  gap == 0,
		YearsToGo: gap,
		Date:      ref.AddYears(gap),
		Descricao: fmt.Sprintf("Regra de pontos: %d pontos (idade + contribuição) exigidos em %d",
			required, ref.Year()),
	}
}

// byProgressiveAge: required age rises 0.5/year from the base year, capped;
// plus a 30-year service floor.
func (e *Engine) byProgressiveAge(t RuleTable, age, service float64, ref licenca.Date) Option {
	elapsed := decimal.NewFromInt(int64(ref.Year() - e.cfg.BaseYear))
	required := t.ProgressiveBase.Add(elapsed.Mul(decimal.NewFromFloat(0.5)))
	if required.GreaterThan(t.ProgressiveCap) {
		required = t.ProgressiveCap
	}
	if required.LessThan(t.ProgressiveBase) {
		required = t.ProgressiveBase
	}

	ageGap := required.Sub(decimal.NewFromFloat(age))
	serviceGap := decimal.NewFromInt(int64(t.ProgressiveMinService)).Sub(decimal.NewFromFloat(service))
	gap := maxInt(ceilDecimal(ageGap), ceilDecimal(serviceGap))

	reqF, _ := required.Float64()
	return Option{
		Rule:      RuleByProgressiveAge,
		Eligible:  gap == 0,
		YearsToGo: gap,
		Date:      ref.AddYears(gap),
		Descricao: fmt.Sprintf("Idade progressiva: %.1f anos de idade e %d de contribuição em %d",
			reqF, t.ProgressiveMinService, ref.Year()),
	}
}

// =============================================================================
// WHOLE-YEAR ROUNDING
// =============================================================================
// Gaps round UP and floor at zero: a servant 0.2 years short still waits a
// full projected year. Do not refine this to day/month precision; projected
// years are the contract.

func ceilGap(gap float64) int {
	if gap <= 0 {
		return 0
	}
	n := int(gap)
	if gap > float64(n) {
		n++
	}
	return n
}

func ceilDecimal(d decimal.Decimal) int {
	if !d.IsPositive() {
		return 0
	}
	return int(d.Ceil().IntPart())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
