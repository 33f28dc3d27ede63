// Package paging is the pagination and filter protocol shared by every
// query path: raw transactions, total rewards, and monthly rewards all
// normalize, clamp, and slice through the same helpers, so the three
// endpoints cannot drift apart.
package paging

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	// DefaultListLimit caps unpaginated responses for unscoped queries.
	DefaultListLimit = 5000

	// DefaultCustomerListLimit caps unpaginated responses for
	// single-customer queries.
	DefaultCustomerListLimit = 100
)

// Params holds normalized pagination inputs. A zero value means the
// parameter was not supplied.
type Params struct {
	Page     int
	PageSize int
}

// Explicit reports whether both page and pageSize were supplied. Only then
// does a query produce a paginated envelope; otherwise it returns a flat
// capped list.
func (p Params) Explicit() bool {
	return p.Page > 0 && p.PageSize > 0
}

// Normalize parses raw page/pageSize/limit query values into Params.
// Values <= 0 are clamped up to 1; the legacy "limit" alias feeds pageSize
// when pageSize itself is absent. Unparsable values count as absent.
func Normalize(rawPage, rawPageSize, rawLimit string) Params {
	var p Params

	if n, ok := parsePositive(rawPage); ok {
		p.Page = n
	}
	if n, ok := parsePositive(rawPageSize); ok {
		p.PageSize = n
	} else if n, ok := parsePositive(rawLimit); ok {
		p.PageSize = n
	}

	return p
}

func parsePositive(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	return n, true
}

// Kind discriminates the two response shapes.
type Kind int

const (
	// Unbounded marshals as a bare JSON array capped at a default limit.
	Unbounded Kind = iota

	// Paginated marshals as {rows, total, page, pageSize}.
	Paginated
)

// Result is the discriminated query result. Callers switch on Kind instead
// of duck-typing on the presence of a rows field.
type Result[T any] struct {
	Kind     Kind
	Rows     []T
	Total    int
	Page     int
	PageSize int
}

type paginatedEnvelope[T any] struct {
	Rows     []T `json:"rows"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// MarshalJSON emits the wire shape for the result's kind: a flat array for
// Unbounded, the pagination envelope for Paginated. Empty rows marshal as
// [] rather than null.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	rows := r.Rows
	if rows == nil {
		rows = []T{}
	}
	if r.Kind == Paginated {
		return json.Marshal(paginatedEnvelope[T]{
			Rows:     rows,
			Total:    r.Total,
			Page:     r.Page,
			PageSize: r.PageSize,
		})
	}
	return json.Marshal(rows)
}

// Apply slices an already filtered and sorted row set according to the
// params. With explicit page+pageSize it returns a Paginated result whose
// Total counts the full filtered set; otherwise it returns an Unbounded
// result capped at pageSize (when given alone) or defaultLimit.
func Apply[T any](rows []T, p Params, defaultLimit int) Result[T] {
	if p.Explicit() {
		total := len(rows)
		offset := (p.Page - 1) * p.PageSize
		if offset > len(rows) {
			offset = len(rows)
		}
		end := offset + p.PageSize
		if end > len(rows) {
			end = len(rows)
		}
		return Result[T]{
			Kind:     Paginated,
			Rows:     rows[offset:end],
			Total:    total,
			Page:     p.Page,
			PageSize: p.PageSize,
		}
	}

	limit := defaultLimit
	if p.PageSize > 0 {
		limit = p.PageSize
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return Result[T]{Kind: Unbounded, Rows: rows}
}

// MatchName reports whether a customer name matches a filter:
// case-insensitive substring, with surrounding whitespace on the filter
// ignored. An empty filter matches everything.
func MatchName(name, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}
