package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigrh/licenca-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// LOTACAO OVERRIDE RULES
// =============================================================================

func TestLotacaoRules_EmptyBeforeFirstSave(t *testing.T) {
	store := newTestStore(t)

	rules, err := store.LoadLotacaoRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.NotNil(t, rules, "absent table loads as an empty map, not nil")
}

func TestLotacaoRules_RoundTrip(t *testing.T) {
	// GIVEN: An override table saved wholesale
	// THEN: It loads back byte-for-byte equal

	store := newTestStore(t)
	ctx := context.Background()

	rules := map[string]string{
		"CEAC SHOPPING": "CEAC ARACAJU",
		"SEC. FAZENDA":  "SECRETARIA FAZENDA",
	}
	require.NoError(t, store.SaveLotacaoRules(ctx, rules))

	got, err := store.LoadLotacaoRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules, got)
}

func TestLotacaoRules_LastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLotacaoRules(ctx, map[string]string{"A": "B"}))
	require.NoError(t, store.SaveLotacaoRules(ctx, map[string]string{"C": "D"}))

	got, err := store.LoadLotacaoRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"C": "D"}, got)
}

func TestLotacaoRules_SaveEmptyClearsTable(t *testing.T) {
	// Deleting the last rule persists an empty object, not a missing key.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLotacaoRules(ctx, map[string]string{"A": "B"}))
	require.NoError(t, store.SaveLotacaoRules(ctx, map[string]string{}))

	got, err := store.LoadLotacaoRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// =============================================================================
// IMPORT AUDIT LOG
// =============================================================================

func TestImports_RecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordImport(ctx, 120, 3, 45))
	require.NoError(t, store.RecordImport(ctx, 130, 0, 46))

	entries, err := store.ListImports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, 130, entries[0].RowCount)
	assert.Equal(t, 0, entries[0].FlaggedRows)
	assert.Equal(t, 46, entries[0].EmployeeCount)
	assert.Equal(t, 120, entries[1].RowCount)
	assert.False(t, entries[0].LoadedAt.IsZero())
}

func TestImports_LimitApplies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordImport(ctx, i, 0, i))
	}

	entries, err := store.ListImports(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Non-positive limit falls back to the default window.
	entries, err = store.ListImports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestImports_EmptyLog(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.ListImports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
