package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigrh/licenca-engine/licenca"
	"github.com/sigrh/licenca-engine/normalize"
)

// =============================================================================
// HEADER MATCHING
// =============================================================================

func TestRecordNormalizer_HeaderSynonyms_CaseAndAccentInsensitive(t *testing.T) {
	// GIVEN: The same row under three header spellings found in real sheets
	// THEN: All map onto the same canonical record

	n := normalize.NewRecordNormalizer()

	variants := []map[string]any{
		{"MATRICULA": "123", "AQUISITIVO_INICIO": "01/01/2022", "AQUISITIVO_FIM": "31/03/2022"},
		{"Matrícula": "123", "Início Aquisitivo": "01/01/2022", "Fim Aquisitivo": "31/03/2022"},
		{"matricula": "123", "inicio do periodo aquisitivo": "01/01/2022", "fim do periodo aquisitivo": "31/03/2022"},
	}

	for _, row := range variants {
		rec := n.Normalize(row)
		assert.Equal(t, licenca.Matricula("123"), rec.Matricula)
		require.NotNil(t, rec.AquisitivoInicio)
		require.NotNil(t, rec.AquisitivoFim)
		assert.Equal(t, "2022-01-01", rec.AquisitivoInicio.String())
		assert.Equal(t, "2022-03-31", rec.AquisitivoFim.String())
	}
}

func TestRecordNormalizer_UnknownColumnsIgnored(t *testing.T) {
	n := normalize.NewRecordNormalizer()

	rec := n.Normalize(map[string]any{
		"MATRICULA":        "9",
		"COLUNA_INVENTADA": "whatever",
	})

	assert.Equal(t, licenca.Matricula("9"), rec.Matricula)
	assert.Empty(t, rec.Flags)
}

// =============================================================================
// DATE PARSING
// =============================================================================

func TestParseDate_MultipleFormats(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"brazilian", "15/03/2022", "2022-03-15"},
		{"iso", "2022-03-15", "2022-03-15"},
		{"dashes", "15-03-2022", "2022-03-15"},
		{"single digit", "5/3/2022", "2022-03-05"},
		{"time value", time.Date(2022, time.March, 15, 10, 30, 0, 0, time.UTC), "2022-03-15"},
		{"excel serial", 44635.0, "2022-03-15"},
		{"excel serial as string", "44635", "2022-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := normalize.ParseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseDate_GarbageBecomesNil(t *testing.T) {
	for _, in := range []any{"not a date", "", nil, "99/99/9999", 12.0, true} {
		_, ok := normalize.ParseDate(in)
		assert.False(t, ok, "input %v should not parse", in)
	}
}

func TestRecordNormalizer_UnparsableDateFlaggedNotFatal(t *testing.T) {
	// Malformed rows degrade to partially-null records; normalization never
	// fails for a single row.

	n := normalize.NewRecordNormalizer()

	rec := n.Normalize(map[string]any{
		"MATRICULA":         "7",
		"AQUISITIVO_INICIO": "amanhã",
	})

	assert.Nil(t, rec.AquisitivoInicio)
	assert.NotEmpty(t, rec.Flags)
}

func TestRecordNormalizer_SwappedWindowBoundsAreRepaired(t *testing.T) {
	n := normalize.NewRecordNormalizer()

	rec := n.Normalize(map[string]any{
		"MATRICULA":         "7",
		"AQUISITIVO_INICIO": "31/03/2022",
		"AQUISITIVO_FIM":    "01/01/2022",
	})

	require.True(t, rec.HasWindow())
	assert.Equal(t, "2022-01-01", rec.AquisitivoInicio.String())
	assert.NotEmpty(t, rec.Flags)
}

// =============================================================================
// NUMERIC PARSING
// =============================================================================

func TestRecordNormalizer_NumericDefaults(t *testing.T) {
	n := normalize.NewRecordNormalizer()

	// Blank is 0 without a flag; garbage is 0 with a flag.
	rec := n.Normalize(map[string]any{"MATRICULA": "1", "DIAS GOZADOS": ""})
	assert.Equal(t, 0, rec.DiasGozados)
	assert.Empty(t, rec.Flags)

	rec = n.Normalize(map[string]any{"MATRICULA": "1", "DIAS GOZADOS": "muitos"})
	assert.Equal(t, 0, rec.DiasGozados)
	assert.NotEmpty(t, rec.Flags)
}

func TestParseDays_Coercions(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{"15", 15, true},
		{15, 15, true},
		{15.0, 15, true},
		{"15 dias", 15, true},
		{"7,5", 8, true},
		{"", 0, true},
		{nil, 0, true},
		{-3, 0, true}, // negatives clamp
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := normalize.ParseDays(tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
	}
}

func TestRecordNormalizer_SaldoBlankStaysNil(t *testing.T) {
	n := normalize.NewRecordNormalizer()

	rec := n.Normalize(map[string]any{"MATRICULA": "1", "SALDO": ""})
	assert.Nil(t, rec.SaldoInformado)

	rec = n.Normalize(map[string]any{"MATRICULA": "1", "SALDO": "45"})
	require.NotNil(t, rec.SaldoInformado)
	assert.Equal(t, 45, *rec.SaldoInformado)
}

func TestParseSex(t *testing.T) {
	assert.Equal(t, licenca.SexMale, normalize.ParseSex("M"))
	assert.Equal(t, licenca.SexMale, normalize.ParseSex("masculino"))
	assert.Equal(t, licenca.SexFemale, normalize.ParseSex("F"))
	assert.Equal(t, licenca.SexFemale, normalize.ParseSex("Feminino"))
	assert.Equal(t, licenca.SexUnknown, normalize.ParseSex("?"))
}
