/*
stats.go - Aggregate statistics with a short-lived cache

PURPOSE:
  Statistics drive the dashboard's summary cards and charts. They are pure
  functions of the current record set plus filter criteria, so results are
  cached briefly (default 5 minutes) keyed by the criteria, and the cache is
  dropped wholesale whenever Load replaces the record set.

CACHE SEMANTICS:
  Last-writer-wins, no concurrent-writer protection required in a
  single-threaded host; the RWMutex only keeps the map safe if a caller does
  fan out reads across goroutines.
*/
package dashboard

import (
	"fmt"
	"sync"
	"time"
)

const defaultStatsTTL = 5 * time.Minute

// =============================================================================
// STATS
// =============================================================================

// Stats summarizes a (filtered) record set.
type Stats struct {
	Servidores    int            `json:"servidores"`
	TotalDireito  int            `json:"totalDireito"`
	TotalGozado   int            `json:"totalGozado"`
	TotalRestante int            `json:"totalRestante"`
	MediaRestante float64        `json:"mediaRestante"`
	PorUrgencia   map[string]int `json:"porUrgencia"`
	PorLotacao    map[string]int `json:"porLotacao"`
	ComPendencias int            `json:"comPendencias"` // unmatched rows or warnings
}

// Stats computes aggregate statistics for the employees matching the
// criteria, serving from cache within the TTL.
func (f *Facade) Stats(c Criteria) Stats {
	key := c.cacheKey()
	if s, ok := f.cache.get(key); ok {
		return s
	}

	matched := f.Filter(c)
	s := Stats{
		Servidores:  len(matched),
		PorUrgencia: make(map[string]int),
		PorLotacao:  make(map[string]int),
	}
	for _, e := range matched {
		s.TotalDireito += e.Calculated.TotalDireito
		s.TotalGozado += e.Calculated.TotalGozado
		s.TotalRestante += e.Calculated.TotalRestante
		s.PorUrgencia[string(e.Urgency.Level)]++
		if e.Lotacao != "" {
			s.PorLotacao[e.Lotacao]++
		}
		if len(e.Calculated.Unmatched) > 0 || len(e.Calculated.Warnings) > 0 {
			s.ComPendencias++
		}
	}
	if s.Servidores > 0 {
		s.MediaRestante = float64(s.TotalRestante) / float64(s.Servidores)
	}

	f.cache.put(key, s)
	return s
}

func (c Criteria) cacheKey() string {
	min, max := "", ""
	if c.MinDiasRestantes != nil {
		min = fmt.Sprint(*c.MinDiasRestantes)
	}
	if c.MaxDiasRestantes != nil {
		max = fmt.Sprint(*c.MaxDiasRestantes)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		c.Lotacao, c.Cargo, c.TipoLicenca, c.Situacao, c.Urgencia, min, max)
}

// =============================================================================
// STATS CACHE
// =============================================================================

type statsEntry struct {
	stats   Stats
	expires time.Time
}

type statsCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]statsEntry
}

func newStatsCache(ttl time.Duration) *statsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &statsCache{ttl: ttl, entries: make(map[string]statsEntry)}
}

func (sc *statsCache) get(key string) (Stats, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	e, ok := sc.entries[key]
	if !ok || time.Now().After(e.expires) {
		return Stats{}, false
	}
	return e.stats, true
}

func (sc *statsCache) put(key string, s Stats) {
	sc.mu.Lock()
	sc.entries[key] = statsEntry{stats: s, expires: time.Now().Add(sc.ttl)}
	sc.mu.Unlock()
}

// invalidate drops every entry. Called on Load.
func (sc *statsCache) invalidate() {
	sc.mu.Lock()
	sc.entries = make(map[string]statsEntry)
	sc.mu.Unlock()
}
