/*
lotacao.go - Canonicalization of organizational-unit names

PURPOSE:
  The same lotação appears under many spellings across sheets ("CEAC -
  ARACAJU", "CEAC ARACAJU", "CEAC_ARACAJU"). This normalizer collapses
  variants onto one canonical key so grouping and filtering see a single
  department, and lets operators register override rules for cases the
  mechanical pipeline cannot decide.

PIPELINE (fixed order, applied exactly once per call):
  1. uppercase
  2. strip diacritics
  3. collapse -/_/ multiple spaces to a single space
  4. strip trailing punctuation
  5. override-table lookup on the partially-normalized key
     (hit: return the override verbatim)
  6. ordered regex substitutions (directional expansions, preposition drops)
  7. trim

The regex table is ORDER-SENSITIVE and single-pass: earlier rules may
re-create text matched by later ones; we deliberately do not iterate to a
fixpoint so the behavior stays deterministic and reproducible.

CONCURRENCY:
  The override table is the one piece of mutable state in the engine.
  Last-writer-wins under an RWMutex; rules take effect on the next Normalize
  call without re-normalizing anything already processed.
*/
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sigrh/licenca-engine/licenca"
)

// =============================================================================
// SUBSTITUTION RULES
// =============================================================================

type substitution struct {
	pattern *regexp.Regexp
	repl    string
}

// Ordered rule table. Directional expansions run before preposition drops so
// that e.g. "ZONA N" becomes "ZONA NORTE" before "DE"-stripping reshapes the
// phrase around it.
var substitutions = []substitution{
	{regexp.MustCompile(`\bN\b`), "NORTE"},
	{regexp.MustCompile(`\bS\b`), "SUL"},
	{regexp.MustCompile(`\bL\b`), "LESTE"},
	{regexp.MustCompile(`\bO\b`), "OESTE"},
	{regexp.MustCompile(`\b(DA|DE|DO|DOS|DAS|E)\b`), " "},
	{regexp.MustCompile(`\s{2,}`), " "},
}

var (
	separatorRuns = regexp.MustCompile(`[-_\s]+`)
	trailingPunct = regexp.MustCompile(`[\s.,;:\-_/]+$`)
)

// =============================================================================
// LOTACAO NORMALIZER
// =============================================================================

// LotacaoNormalizer canonicalizes free-text lotação names. Construct one at
// startup and share it; there is no ambient global instance.
type LotacaoNormalizer struct {
	mu        sync.RWMutex
	overrides map[string]string
}

func NewLotacaoNormalizer() *LotacaoNormalizer {
	return &LotacaoNormalizer{overrides: make(map[string]string)}
}

// Normalize returns the canonical key for a lotação name. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func (ln *LotacaoNormalizer) Normalize(name string) string {
	key := ln.prefold(name)

	ln.mu.RLock()
	override, ok := ln.overrides[key]
	ln.mu.RUnlock()
	if ok {
		return override
	}

	for _, sub := range substitutions {
		key = sub.pattern.ReplaceAllString(key, sub.repl)
	}
	return strings.TrimSpace(key)
}

// prefold applies pipeline steps 1-4 (everything before the override lookup).
func (ln *LotacaoNormalizer) prefold(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = StripDiacritics(s)
	s = separatorRuns.ReplaceAllString(s, " ")
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// =============================================================================
// OVERRIDE RULES
// =============================================================================

// AddCustomRule registers an override: any name whose partially-normalized
// form equals the rule key maps to the replacement verbatim. The replacement
// is case-normalized on the way in so the mapping round-trips cleanly.
func (ln *LotacaoNormalizer) AddCustomRule(original, replacement string) error {
	key := ln.prefold(original)
	if key == "" {
		return licenca.ErrEmptyRuleKey
	}
	ln.mu.Lock()
	ln.overrides[key] = strings.ToUpper(strings.TrimSpace(replacement))
	ln.mu.Unlock()
	return nil
}

// RemoveCustomRule deletes the override for the given original spelling.
// Removing an absent rule is a no-op.
func (ln *LotacaoNormalizer) RemoveCustomRule(original string) {
	key := ln.prefold(original)
	ln.mu.Lock()
	delete(ln.overrides, key)
	ln.mu.Unlock()
}

// Rules returns a copy of the override table, keyed by partially-normalized
// original. The shape round-trips via JSON for external persistence.
func (ln *LotacaoNormalizer) Rules() map[string]string {
	ln.mu.RLock()
	defer ln.mu.RUnlock()
	out := make(map[string]string, len(ln.overrides))
	for k, v := range ln.overrides {
		out[k] = v
	}
	return out
}

// LoadRules replaces the override table wholesale (startup / reload path).
func (ln *LotacaoNormalizer) LoadRules(rules map[string]string) {
	next := make(map[string]string, len(rules))
	for k, v := range rules {
		key := ln.prefold(k)
		if key == "" {
			continue
		}
		next[key] = strings.ToUpper(strings.TrimSpace(v))
	}
	ln.mu.Lock()
	ln.overrides = next
	ln.mu.Unlock()
}

// =============================================================================
// DUPLICATE ANALYSIS
// =============================================================================

// DuplicateGroup is a set of distinct raw spellings that collapse onto the
// same canonical key. Only groups with more than one spelling are reported;
// they exist for operator review, not automatic correction.
type DuplicateGroup struct {
	Canonical string
	Spellings []string
	Rows      int
}

// AnalyzeDuplicates groups records by canonical lotação and returns the
// groups whose distinct raw spellings number more than one.
func (ln *LotacaoNormalizer) AnalyzeDuplicates(records []licenca.RawLeaveRecord) []DuplicateGroup {
	type bucket struct {
		spellings map[string]struct{}
		rows      int
	}
	buckets := make(map[string]*bucket)

	for _, r := range records {
		raw := strings.TrimSpace(r.LotacaoRaw)
		if raw == "" {
			continue
		}
		canonical := ln.Normalize(raw)
		b, ok := buckets[canonical]
		if !ok {
			b = &bucket{spellings: make(map[string]struct{})}
			buckets[canonical] = b
		}
		b.spellings[raw] = struct{}{}
		b.rows++
	}

	var groups []DuplicateGroup
	for canonical, b := range buckets {
		if len(b.spellings) < 2 {
			continue
		}
		g := DuplicateGroup{Canonical: canonical, Rows: b.rows}
		for s := range b.spellings {
			g.Spellings = append(g.Spellings, s)
		}
		sort.Strings(g.Spellings)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Canonical < groups[j].Canonical })
	return groups
}
