package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	sheettable "github.com/ideamans/go-sheettable"
)

// Handler serves the rows of one table.
type Handler struct {
	table *sheettable.Table
	log   *log.Entry
}

type errorResponse struct {
	Error      string                           `json:"error"`
	Violations []sheettable.ConstraintViolation `json:"violations,omitempty"`
	Data       interface{}                      `json:"data,omitempty"`
}

type countResponse struct {
	Count int `json:"count"`
}

type columnsResponse struct {
	Columns []string `json:"columns"`
}

func (h *Handler) getColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := h.table.Columns(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columnsResponse{Columns: columns})
}

func (h *Handler) countRows(w http.ResponseWriter, r *http.Request) {
	count, err := h.table.CountRows(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// listRows returns the rows matching every where parameter (e.g.
// where=age>=25), ordered by the optional sort parameter and paged with
// offset and limit. sort is a comma separated list of columns, each
// prefixed with '-' for descending.
func (h *Handler) listRows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sorting := parseSort(query.Get("sort"))

	conditions := make([]sheettable.Condition, 0, len(query["where"]))
	for _, expr := range query["where"] {
		c, err := parseCondition(expr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		conditions = append(conditions, c)
	}

	offset, err1 := intParam(query.Get("offset"))
	limit, err2 := intParam(query.Get("limit"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "offset and limit must be non-negative integers"})
		return
	}

	rows, err := h.table.FindRows(r.Context(), sheettable.Where(conditions...), sorting)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheettable.Page(rows, offset, limit))
}

func (h *Handler) getRow(w http.ResponseWriter, r *http.Request) {
	number, ok := h.rowNumber(w, r)
	if !ok {
		return
	}

	row, err := h.table.FindRow(r.Context(), atRow(number))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if row == nil {
		h.fail(w, r, &sheettable.NotFoundError{Msg: "Row not found"})
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) insertRow(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeRow(w, r)
	if !ok {
		return
	}

	row, err := h.table.InsertRow(r.Context(), data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/rows/%d", row.Number))
	writeJSON(w, http.StatusCreated, row)
}

func (h *Handler) updateRow(w http.ResponseWriter, r *http.Request) {
	number, ok := h.rowNumber(w, r)
	if !ok {
		return
	}
	data, ok := h.decodeRow(w, r)
	if !ok {
		return
	}

	row, err := h.table.UpdateRow(r.Context(), atRow(number), data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) deleteRow(w http.ResponseWriter, r *http.Request) {
	number, ok := h.rowNumber(w, r)
	if !ok {
		return
	}

	if err := h.table.DeleteRow(r.Context(), atRow(number)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// atRow matches the row at a sheet row number as of the snapshot the
// operation reads.
func atRow(number int) sheettable.Predicate {
	return func(row *sheettable.Row, _ int, _ []*sheettable.Row) bool {
		return row.Number == number
	}
}

func parseSort(param string) []sheettable.ColumnSort {
	var sorting []sheettable.ColumnSort
	for _, key := range strings.Split(param, ",") {
		key = strings.TrimSpace(key)
		switch {
		case key == "" || key == "-":
			continue
		case strings.HasPrefix(key, "-"):
			sorting = append(sorting, sheettable.Desc(key[1:]))
		default:
			sorting = append(sorting, sheettable.Asc(strings.TrimPrefix(key, "+")))
		}
	}
	return sorting
}

// queryOperators is ordered so that two character operators are tried first.
var queryOperators = []string{
	sheettable.OpEqual, sheettable.OpNotEqual,
	sheettable.OpGreaterEqual, sheettable.OpLessEqual,
	sheettable.OpGreater, sheettable.OpLess,
}

// parseCondition reads "<column><op><value>". Values that parse as numbers
// or booleans compare as such, anything else as a string.
func parseCondition(expr string) (sheettable.Condition, error) {
	for _, op := range queryOperators {
		column, raw, found := strings.Cut(expr, op)
		if !found {
			continue
		}
		c := sheettable.Condition{Column: strings.TrimSpace(column), Operator: op, Value: queryValue(raw)}
		if err := sheettable.ValidateConditions([]sheettable.Condition{c}); err != nil {
			return c, err
		}
		return c, nil
	}
	return sheettable.Condition{}, fmt.Errorf("invalid where expression: %q", expr)
}

func queryValue(raw string) interface{} {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

func (h *Handler) rowNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 2 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row number must be an integer of 2 or more"})
		return 0, false
	}
	return number, true
}

func (h *Handler) decodeRow(w http.ResponseWriter, r *http.Request) (sheettable.RowData, bool) {
	var data sheettable.RowData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid row: " + err.Error()})
		return nil, false
	}
	if data == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid row: expected a JSON object"})
		return nil, false
	}
	return data, true
}

// fail maps table errors onto HTTP statuses. Anything that is not one of
// the table's own errors came from the spreadsheet service.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusBadGateway

	var (
		constraintErr *sheettable.ConstraintError
		dataErr       *sheettable.DataError
	)
	switch {
	case errors.As(err, &constraintErr):
		status = http.StatusConflict
		resp.Violations = constraintErr.Violations
	case errors.As(err, &dataErr):
		resp.Error = dataErr.Msg
		resp.Data = dataErr.Data
	case errors.Is(err, sheettable.ErrSchema), errors.Is(err, sheettable.ErrFormat), errors.Is(err, sheettable.ErrNilPredicate):
		status = http.StatusBadRequest
	case errors.Is(err, sheettable.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	entry := h.log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Warn("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
