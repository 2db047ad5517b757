/*
dto.go - Request/response types for the HTTP API

PURPOSE:
  Decouples the wire contract from the domain model. Responses reuse the
  dashboard's enriched record shape directly (it IS the external contract
  per the engine's design); the types here cover requests and thin wrappers.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers where a bare domain type is not enough
*/
package api

import (
	"github.com/sigrh/licenca-engine/dashboard"
	"github.com/sigrh/licenca-engine/normalize"
)

// ImportRequest carries raw spreadsheet rows: one object per row, free-form
// column names. Parsing of CSV/XLSX into these objects happens client-side.
type ImportRequest struct {
	Rows []map[string]any `json:"rows"`
}

// ImportResponse summarizes a completed load.
type ImportResponse struct {
	Servidores int `json:"servidores"`
	Linhas     int `json:"linhas"`
	ComFlags   int `json:"comFlags"`
	SemJanela  int `json:"semJanela"`
}

// RuleRequest adds one lotação override rule.
type RuleRequest struct {
	De   string `json:"de"`
	Para string `json:"para"`
}

// RulesResponse lists the current override table.
type RulesResponse struct {
	Regras map[string]string `json:"regras"`
}

// DuplicatesResponse wraps the duplicate-spelling review groups.
type DuplicatesResponse struct {
	Grupos []normalize.DuplicateGroup `json:"grupos"`
}

// GroupResponse wraps GroupBy output with the field that produced it.
type GroupResponse struct {
	Campo  string                          `json:"campo"`
	Grupos map[string][]dashboard.Employee `json:"grupos"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
