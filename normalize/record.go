/*
Package normalize converts noisy spreadsheet input into the canonical domain
shapes consumed by the licenca engine.

PURPOSE:
  Source sheets arrive with free-form column names ("AQUISITIVO_INICIO",
  "Início Aquisitivo", "Inicio do Periodo Aquisitivo"...), mixed date formats
  (DD/MM/YYYY, ISO, Excel serials), and numeric cells holding anything from
  blanks to "15 dias". This package is the ONLY boundary that deals with that
  mess; core logic never sees an untyped bag of fields.

FAILURE SEMANTICS:
  Normalization never fails for a single row. Unparsable dates become nil,
  unparsable numbers become 0, and every degradation is recorded in the
  record's Flags so data-quality reports can surface it.

KEY COMPONENTS:
  - RecordNormalizer (this file): row -> licenca.RawLeaveRecord
  - LotacaoNormalizer (lotacao.go): free-text org-unit name -> canonical key
*/
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sigrh/licenca-engine/licenca"
)

// =============================================================================
// HEADER SYNONYMS
// =============================================================================

// Canonical field identifiers used as synonym-table targets.
const (
	fieldMatricula      = "matricula"
	fieldNome           = "nome"
	fieldAquisInicio    = "aquisitivo_inicio"
	fieldAquisFim       = "aquisitivo_fim"
	fieldDiasGozados    = "dias_gozados"
	fieldSaldo          = "saldo"
	fieldDiasDireito    = "dias_direito"
	fieldLotacao        = "lotacao"
	fieldAdmissao       = "admissao"
	fieldNascimento     = "nascimento"
	fieldSexo           = "sexo"
	fieldCargo          = "cargo"
	fieldTipo           = "tipo_licenca"
	fieldSituacao       = "situacao"
	fieldProximaLicenca = "proxima_licenca"
)

// headerSynonyms maps folded spreadsheet header variants to canonical fields.
// Keys are matched after FoldKey: uppercase, diacritics stripped, separators
// collapsed to single spaces.
var headerSynonyms = map[string]string{
	"MATRICULA":                    fieldMatricula,
	"MAT":                          fieldMatricula,
	"REGISTRO":                     fieldMatricula,
	"NOME":                         fieldNome,
	"SERVIDOR":                     fieldNome,
	"NOME DO SERVIDOR":             fieldNome,
	"NOME SERVIDOR":                fieldNome,
	"AQUISITIVO INICIO":            fieldAquisInicio,
	"INICIO AQUISITIVO":            fieldAquisInicio,
	"INICIO DO PERIODO AQUISITIVO": fieldAquisInicio,
	"INICIO PERIODO AQUISITIVO":    fieldAquisInicio,
	"PERIODO AQUISITIVO INICIO":    fieldAquisInicio,
	"AQUISITIVO FIM":               fieldAquisFim,
	"FIM AQUISITIVO":               fieldAquisFim,
	"FIM DO PERIODO AQUISITIVO":    fieldAquisFim,
	"FIM PERIODO AQUISITIVO":       fieldAquisFim,
	"PERIODO AQUISITIVO FIM":       fieldAquisFim,
	"TERMINO AQUISITIVO":           fieldAquisFim,
	"DIAS GOZADOS":                 fieldDiasGozados,
	"GOZADOS":                      fieldDiasGozados,
	"DIAS USUFRUIDOS":              fieldDiasGozados,
	"DIAS UTILIZADOS":              fieldDiasGozados,
	"SALDO":                        fieldSaldo,
	"SALDO DIAS":                   fieldSaldo,
	"SALDO DE DIAS":                fieldSaldo,
	"DIAS RESTANTES":               fieldSaldo,
	"DIAS DIREITO":                 fieldDiasDireito,
	"DIAS DE DIREITO":              fieldDiasDireito,
	"DIREITO":                      fieldDiasDireito,
	"LOTACAO":                      fieldLotacao,
	"UNIDADE":                      fieldLotacao,
	"SETOR":                        fieldLotacao,
	"ORGAO":                        fieldLotacao,
	"ADMISSAO":                     fieldAdmissao,
	"DATA ADMISSAO":                fieldAdmissao,
	"DATA DE ADMISSAO":             fieldAdmissao,
	"DT ADMISSAO":                  fieldAdmissao,
	"NASCIMENTO":                   fieldNascimento,
	"DATA NASCIMENTO":              fieldNascimento,
	"DATA DE NASCIMENTO":           fieldNascimento,
	"DT NASC":                      fieldNascimento,
	"SEXO":                         fieldSexo,
	"GENERO":                       fieldSexo,
	"CARGO":                        fieldCargo,
	"FUNCAO":                       fieldCargo,
	"TIPO":                         fieldTipo,
	"TIPO LICENCA":                 fieldTipo,
	"TIPO DE LICENCA":              fieldTipo,
	"SITUACAO":                     fieldSituacao,
	"STATUS":                       fieldSituacao,
	"PROXIMA LICENCA":              fieldProximaLicenca,
	"DATA PROXIMA LICENCA":         fieldProximaLicenca,
	"LICENCA AGENDADA":             fieldProximaLicenca,
}

var headerSeparators = regexp.MustCompile(`[_\-./]+`)
var multiSpace = regexp.MustCompile(`\s{2,}`)

// FoldKey normalizes a header or search string: uppercase, diacritics
// stripped, separators collapsed to single spaces, trimmed.
func FoldKey(s string) string {
	s = StripDiacritics(strings.ToUpper(strings.TrimSpace(s)))
	s = headerSeparators.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripDiacritics removes combining marks (é -> e) via NFD decomposition.
func StripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// =============================================================================
// RECORD NORMALIZER
// =============================================================================

// RecordNormalizer converts one loosely-shaped row into a typed record.
type RecordNormalizer struct{}

func NewRecordNormalizer() *RecordNormalizer {
	return &RecordNormalizer{}
}

// Normalize maps a raw row (column name -> cell value) onto a RawLeaveRecord.
// It never fails: unknown columns are ignored, unparsable cells degrade to
// nil/zero and are flagged. The caller decides whether to drop degraded rows.
func (n *RecordNormalizer) Normalize(row map[string]any) licenca.RawLeaveRecord {
	var rec licenca.RawLeaveRecord

	for col, val := range row {
		field, ok := headerSynonyms[FoldKey(col)]
		if !ok {
			continue
		}
		switch field {
		case fieldMatricula:
			rec.Matricula = licenca.Matricula(strings.TrimSpace(toString(val)))
		case fieldNome:
			rec.Nome = strings.TrimSpace(toString(val))
		case fieldAquisInicio:
			rec.AquisitivoInicio = n.parseDateFlagged(val, col, &rec)
		case fieldAquisFim:
			rec.AquisitivoFim = n.parseDateFlagged(val, col, &rec)
		case fieldDiasGozados:
			rec.DiasGozados = n.parseDaysFlagged(val, col, &rec)
		case fieldSaldo:
			if d, ok := ParseDays(val); ok && !isBlank(val) {
				saldo := d
				rec.SaldoInformado = &saldo
			} else if !isBlank(val) {
				rec.Flags = append(rec.Flags, flagUnparsable(col, val))
			}
		case fieldDiasDireito:
			if d, ok := ParseDays(val); ok && !isBlank(val) {
				direito := d
				rec.DiasDireito = &direito
			} else if !isBlank(val) {
				rec.Flags = append(rec.Flags, flagUnparsable(col, val))
			}
		case fieldLotacao:
			rec.LotacaoRaw = strings.TrimSpace(toString(val))
		case fieldAdmissao:
			rec.Admissao = n.parseDateFlagged(val, col, &rec)
		case fieldNascimento:
			rec.Nascimento = n.parseDateFlagged(val, col, &rec)
		case fieldSexo:
			rec.Sexo = ParseSex(toString(val))
		case fieldCargo:
			rec.Cargo = strings.TrimSpace(toString(val))
		case fieldTipo:
			rec.TipoLicenca = strings.TrimSpace(toString(val))
		case fieldSituacao:
			rec.Situacao = strings.TrimSpace(toString(val))
		case fieldProximaLicenca:
			rec.ProximaLicenca = n.parseDateFlagged(val, col, &rec)
		}
	}

	// Swapped window bounds are a malformation, not a fatal condition.
	if rec.AquisitivoInicio != nil && rec.AquisitivoFim != nil &&
		rec.AquisitivoInicio.After(*rec.AquisitivoFim) {
		rec.Flags = append(rec.Flags, fmt.Sprintf(
			"janela aquisitiva invertida: %s > %s", rec.AquisitivoInicio, rec.AquisitivoFim))
		rec.AquisitivoInicio, rec.AquisitivoFim = rec.AquisitivoFim, rec.AquisitivoInicio
	}

	return rec
}

func (n *RecordNormalizer) parseDateFlagged(val any, col string, rec *licenca.RawLeaveRecord) *licenca.Date {
	d, ok := ParseDate(val)
	if !ok {
		if !isBlank(val) {
			rec.Flags = append(rec.Flags, flagUnparsable(col, val))
		}
		return nil
	}
	return &d
}

func (n *RecordNormalizer) parseDaysFlagged(val any, col string, rec *licenca.RawLeaveRecord) int {
	d, ok := ParseDays(val)
	if !ok && !isBlank(val) {
		rec.Flags = append(rec.Flags, flagUnparsable(col, val))
	}
	return d
}

func flagUnparsable(col string, val any) string {
	return fmt.Sprintf("valor ilegível em %q: %v", col, val)
}

// =============================================================================
// CELL PARSERS
// =============================================================================

// Excel serial day 0 is 1899-12-30 (the 1900 leap-year bug is baked into the
// epoch, matching what SheetJS and Excel itself produce).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"2/1/2006",
	"02/01/06",
	time.RFC3339,
}

// ParseDate accepts time.Time values, the usual Brazilian and ISO layouts,
// and spreadsheet serial numbers. Returns ok=false for anything else.
func ParseDate(val any) (licenca.Date, bool) {
	switch v := val.(type) {
	case nil:
		return licenca.Date{}, false
	case time.Time:
		if v.IsZero() {
			return licenca.Date{}, false
		}
		return licenca.DateOf(v), true
	case licenca.Date:
		return v, true
	case float64:
		return fromSerial(v)
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return licenca.Date{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return licenca.DateOf(t), true
			}
		}
		// A bare number in a date column is a spreadsheet serial.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromSerial(f)
		}
		return licenca.Date{}, false
	default:
		return licenca.Date{}, false
	}
}

func fromSerial(serial float64) (licenca.Date, bool) {
	// Serials below ~1000 would be 19th-century dates; treat as garbage.
	if serial < 1000 || serial > 200000 {
		return licenca.Date{}, false
	}
	return licenca.DateOf(excelEpoch.AddDate(0, 0, int(serial))), true
}

// ParseDays coerces a cell into a non-negative day count. Blank cells are 0
// and ok; garbage is 0 and not ok so the caller can flag it.
func ParseDays(val any) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, true
	case int:
		return clampDays(v), true
	case int64:
		return clampDays(int(v)), true
	case float64:
		return clampDays(int(math.Round(v))), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true
		}
		if i, err := strconv.Atoi(s); err == nil {
			return clampDays(i), true
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return clampDays(int(math.Round(f))), true
		}
		// "15 dias" and friends: take a leading integer when present.
		if m := leadingInt.FindString(s); m != "" {
			i, _ := strconv.Atoi(m)
			return clampDays(i), true
		}
		return 0, false
	default:
		return 0, false
	}
}

var leadingInt = regexp.MustCompile(`^\d+`)

func clampDays(d int) int {
	if d < 0 {
		return 0
	}
	return d
}

// ParseSex maps the usual sheet variants onto the Sex enum.
func ParseSex(s string) licenca.Sex {
	switch FoldKey(s) {
	case "M", "MASC", "MASCULINO":
		return licenca.SexMale
	case "F", "FEM", "FEMININO":
		return licenca.SexFemale
	default:
		return licenca.SexUnknown
	}
}

func toString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isBlank(val any) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
