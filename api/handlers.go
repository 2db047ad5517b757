/*
handlers.go - HTTP handlers for the licença-prêmio engine

PURPOSE:
  Exposes the aggregation facade via REST. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Import:
    POST   /api/import                     Load raw spreadsheet rows

  Servidores:
    GET    /api/servidores                 Enriched records (query filters)
    GET    /api/servidores/{matricula}     Single enriched summary
    GET    /api/servidores/{matricula}/aposentadoria  Retirement analysis

  Queries:
    GET    /api/stats                      Aggregate statistics (cached)
    GET    /api/agrupar?campo=lotacao      Grouped records
    GET    /api/buscar?q=texto             Name/matrícula search

  Lotações:
    GET    /api/lotacoes/duplicadas        Duplicate-spelling review
    GET    /api/lotacoes/regras            List override rules
    PUT    /api/lotacoes/regras            Add override rule
    DELETE /api/lotacoes/regras/{chave}    Remove override rule

  Audit:
    GET    /api/imports                    Recent import audit entries

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Caller misuse (bad body, unknown group-by field, empty rule key)
  - 404: Unknown matrícula
  - 500: Internal errors
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sigrh/licenca-engine/dashboard"
	"github.com/sigrh/licenca-engine/licenca"
	"github.com/sigrh/licenca-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Facade *dashboard.Facade
	Store  *sqlite.Store
}

// NewHandler creates a handler around the facade and store.
func NewHandler(facade *dashboard.Facade, store *sqlite.Store) *Handler {
	return &Handler{Facade: facade, Store: store}
}

// =============================================================================
// IMPORT
// =============================================================================

// Import loads raw rows into the facade, replacing the current record set.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees := h.Facade.Load(req.Rows)

	flagged, semJanela := 0, 0
	for _, rec := range h.Facade.RawRecords() {
		if len(rec.Flags) > 0 {
			flagged++
		}
		if !rec.HasWindow() {
			semJanela++
		}
	}

	if h.Store != nil {
		if err := h.Store.RecordImport(r.Context(), len(req.Rows), flagged, len(employees)); err != nil {
			log.Printf("Warning: failed to record import audit entry: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Servidores: len(employees),
		Linhas:     len(req.Rows),
		ComFlags:   flagged,
		SemJanela:  semJanela,
	})
}

// ListImports returns recent import audit entries.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListImports(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list imports", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// SERVIDORES
// =============================================================================

// ListServidores returns enriched records, filtered by query parameters.
func (h *Handler) ListServidores(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Facade.Filter(criteria))
}

// GetServidor returns one employee's enriched summary.
func (h *Handler) GetServidor(w http.ResponseWriter, r *http.Request) {
	mat := licenca.Matricula(chi.URLParam(r, "matricula"))

	emp, err := h.Facade.Summary(mat)
	if err != nil {
		if licenca.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Servidor not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get servidor", err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// GetAposentadoria returns one employee's retirement analysis.
func (h *Handler) GetAposentadoria(w http.ResponseWriter, r *http.Request) {
	mat := licenca.Matricula(chi.URLParam(r, "matricula"))

	emp, err := h.Facade.Summary(mat)
	if err != nil {
		if licenca.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Servidor not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get servidor", err)
		return
	}
	if emp.Aposentadoria == nil {
		writeError(w, http.StatusNotFound, "No birth date on record; retirement analysis unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, emp.Aposentadoria)
}

// =============================================================================
// QUERIES
// =============================================================================

// GetStats returns aggregate statistics for the filtered record set.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Facade.Stats(criteria))
}

// GroupBy partitions the record set by ?campo=.
func (h *Handler) GroupBy(w http.ResponseWriter, r *http.Request) {
	campo := r.URL.Query().Get("campo")
	groups, err := h.Facade.GroupBy(campo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group-by field", err)
		return
	}
	writeJSON(w, http.StatusOK, GroupResponse{Campo: campo, Grupos: groups})
}

// Search matches ?q= against name or matrícula.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Facade.Search(r.URL.Query().Get("q")))
}

// =============================================================================
// LOTACOES
// =============================================================================

// ListDuplicates returns lotação spellings that collapse onto one key.
func (h *Handler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	groups := h.Facade.Lotacoes().AnalyzeDuplicates(h.Facade.RawRecords())
	writeJSON(w, http.StatusOK, DuplicatesResponse{Grupos: groups})
}

// ListRules returns the current override table.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RulesResponse{Regras: h.Facade.Lotacoes().Rules()})
}

// PutRule adds an override rule and persists the table.
func (h *Handler) PutRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Facade.Lotacoes().AddCustomRule(req.De, req.Para); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule", err)
		return
	}
	if err := h.persistRules(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist rules", err)
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{Regras: h.Facade.Lotacoes().Rules()})
}

// DeleteRule removes an override rule and persists the table.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	chave := chi.URLParam(r, "chave")
	h.Facade.Lotacoes().RemoveCustomRule(chave)

	if err := h.persistRules(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist rules", err)
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{Regras: h.Facade.Lotacoes().Rules()})
}

func (h *Handler) persistRules(r *http.Request) error {
	if h.Store == nil {
		return nil
	}
	return h.Store.SaveLotacaoRules(r.Context(), h.Facade.Lotacoes().Rules())
}

// =============================================================================
// QUERY PARSING
// =============================================================================

func criteriaFromQuery(r *http.Request) (dashboard.Criteria, error) {
	q := r.URL.Query()
	c := dashboard.Criteria{
		Lotacao:     q.Get("lotacao"),
		Cargo:       q.Get("cargo"),
		TipoLicenca: q.Get("tipo"),
		Situacao:    q.Get("situacao"),
		Urgencia:    licenca.UrgencyLevel(q.Get("urgencia")),
	}

	if v := q.Get("minDiasRestantes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, err
		}
		c.MinDiasRestantes = &n
	}
	if v := q.Get("maxDiasRestantes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, err
		}
		c.MaxDiasRestantes = &n
	}
	return c, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
