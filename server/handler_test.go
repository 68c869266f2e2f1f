package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, excel.New().CreateTable(context.Background(), path, "people", []string{"id", "name", "age"}))

	table, err := excel.Open(&excel.Config{
		FilePath:    path,
		SheetName:   "people",
		Constraints: sheettable.ColumnConstraints{Uniques: []string{"id"}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(table))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func seed(t *testing.T, srv *httptest.Server) {
	t.Helper()

	for _, body := range []string{
		`{"id": 1, "name": "jim", "age": 42}`,
		`{"id": 2, "name": "bob", "age": 24}`,
		`{"id": 3, "name": "mary", "age": 32}`,
	} {
		resp, _ := do(t, http.MethodPost, srv.URL+"/rows", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestInsertRow(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/rows", `{"id": 1, "name": "jim"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/rows/2", resp.Header.Get("Location"))
	assert.JSONEq(t, `{"_rowNumber": 2, "id": 1, "name": "jim"}`, string(body))

	resp, body = do(t, http.MethodPost, srv.URL+"/rows", `{"id": 1, "name": "bob"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{
		"error": "constraint violations: A row already exists with id = 1",
		"violations": [{"kind": "unique", "column": "id", "description": "A row already exists with id = 1"}]
	}`, string(body))

	resp, _ = do(t, http.MethodPost, srv.URL+"/rows", `{"id": 2, "height": 180}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/rows", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/rows", `null`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListRows(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"jim", "bob", "mary"}},
		{"?sort=age", []string{"bob", "mary", "jim"}},
		{"?sort=-name", []string{"mary", "jim", "bob"}},
		{"?sort=-age,name", []string{"jim", "mary", "bob"}},
		{"?" + url.Values{"where": {"age>=30"}}.Encode(), []string{"jim", "mary"}},
		{"?" + url.Values{"where": {"age>=30", "name!=jim"}}.Encode(), []string{"mary"}},
		{"?" + url.Values{"where": {"name==bob"}}.Encode(), []string{"bob"}},
		{"?" + url.Values{"where": {"age<20"}}.Encode(), nil},
		{"?sort=age&offset=1&limit=1", []string{"mary"}},
		{"?sort=age&offset=5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, srv.URL+"/rows"+tt.query, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var rows []map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &rows))
			var names []string
			for _, r := range rows {
				names = append(names, r["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}

	resp, body := do(t, http.MethodGet, srv.URL+"/rows?sort=height", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Sort column does not exist: height"}`, string(body))

	resp, _ = do(t, http.MethodGet, srv.URL+"/rows?"+url.Values{"where": {"age"}}.Encode(), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/rows?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCountAndColumns(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	resp, body := do(t, http.MethodGet, srv.URL+"/rows/count", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count": 3}`, string(body))

	resp, body = do(t, http.MethodGet, srv.URL+"/columns", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"columns": ["id", "name", "age"]}`, string(body))
}

func TestGetRow(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	resp, body := do(t, http.MethodGet, srv.URL+"/rows/3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"_rowNumber": 3, "id": 2, "name": "bob", "age": 24}`, string(body))

	resp, _ = do(t, http.MethodGet, srv.URL+"/rows/9", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, bad := range []string{"1", "abc", "-4"} {
		resp, _ = do(t, http.MethodGet, srv.URL+"/rows/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestUpdateRow(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	resp, body := do(t, http.MethodPatch, srv.URL+"/rows/4", `{"age": 33}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"_rowNumber": 4, "id": 3, "name": "mary", "age": 33}`, string(body))

	resp, _ = do(t, http.MethodPatch, srv.URL+"/rows/4", `{"id": 1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, http.MethodPatch, srv.URL+"/rows/10", `{"age": 1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Row not found"}`, string(body))
}

func TestDeleteRow(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	resp, _ := do(t, http.MethodDelete, srv.URL+"/rows/2", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/rows/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"_rowNumber": 2, "id": 2, "name": "bob", "age": 24}`, string(body))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/rows/4", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type brokenRemote struct {
	sheettable.Remote
	err error
}

func (b brokenRemote) GetValues(context.Context, string, string, *sheettable.RenderOptions) (*sheettable.ValueRange, error) {
	return nil, b.err
}

func TestServiceErrors(t *testing.T) {
	table, err := sheettable.New(brokenRemote{err: errors.New("quota exceeded")}, &sheettable.Config{
		SpreadsheetID: "broken",
		SheetName:     "people",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(table))
	defer srv.Close()

	resp, body := do(t, http.MethodGet, srv.URL+"/rows", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error": "quota exceeded"}`, string(body))
}

func TestFail_DataError(t *testing.T) {
	h := &Handler{log: log.NewEntry(log.New())}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rows", nil)

	h.fail(rec, req, &sheettable.DataError{
		Msg:  "One or more updated row values don't match corresponding submitted values",
		Data: []interface{}{true, sheettable.ValueMismatch{Submitted: "a", Updated: "b"}},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{
		"error": "One or more updated row values don't match corresponding submitted values",
		"data": [true, {"submitted": "a", "updated": "b"}]
	}`, rec.Body.String())
}

func TestParseSort(t *testing.T) {
	assert.Nil(t, parseSort(""))
	assert.Equal(t, []sheettable.ColumnSort{
		sheettable.Asc("age"),
		sheettable.Desc("name"),
		sheettable.Asc("id"),
	}, parseSort("age, -name,,+id,-"))
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr    string
		want    sheettable.Condition
		wantErr bool
	}{
		{expr: "age>=25", want: sheettable.Condition{Column: "age", Operator: sheettable.OpGreaterEqual, Value: float64(25)}},
		{expr: "name==bob", want: sheettable.Condition{Column: "name", Operator: sheettable.OpEqual, Value: "bob"}},
		{expr: "active!=true", want: sheettable.Condition{Column: "active", Operator: sheettable.OpNotEqual, Value: true}},
		{expr: "age<3.5", want: sheettable.Condition{Column: "age", Operator: sheettable.OpLess, Value: 3.5}},
		{expr: "age", wantErr: true},
		{expr: ">=3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseCondition(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
