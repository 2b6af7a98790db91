package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"powertrack/internal/modules/records/service"
	"powertrack/internal/modules/records/store"
	"powertrack/internal/modules/records/types"
	"powertrack/internal/modules/records/validator"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	fs, err := store.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	mux := http.NewServeMux()
	NewRecordsController(service.NewService(fs, validator.New(false))).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, path
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func mustDecode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestRoutes_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	res := do(t, http.MethodPost, srv.URL+"/records", `{"date":"2024-01-15","reading":12.5}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d; want 201", res.StatusCode)
	}
	loc := res.Header.Get("Location")
	if !strings.HasPrefix(loc, srv.URL+"/records/") {
		t.Fatalf("Location = %q; want prefix %s/records/", loc, srv.URL)
	}

	res = do(t, http.MethodGet, loc, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET location status = %d; want 200", res.StatusCode)
	}
	got := mustDecode[types.Record](t, res)
	if got.Date != "2024-01-15" || got.Reading != 12.5 || got.ID == "" {
		t.Fatalf("GET location = %+v", got)
	}
	if !strings.HasSuffix(loc, "/"+got.ID) {
		t.Errorf("Location %q does not end in id %q", loc, got.ID)
	}

	list := mustDecode[types.ListResponse](t, do(t, http.MethodGet, srv.URL+"/records", ""))
	if len(list.Items) != 1 || list.Items[0] != got {
		t.Fatalf("list = %+v", list.Items)
	}

	if res := do(t, http.MethodDelete, loc, ""); res.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d; want 204", res.StatusCode)
	}
	if res := do(t, http.MethodGet, loc, ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d; want 404", res.StatusCode)
	}
	if res := do(t, http.MethodDelete, loc, ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("second DELETE status = %d; want 404", res.StatusCode)
	}
}

func TestRoutes_CreateRejections(t *testing.T) {
	srv, path := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid month", body: `{"date":"2024-13-01","reading":1}`},
		{name: "zero reading", body: `{"date":"2024-01-01","reading":0}`},
		{name: "missing reading", body: `{"date":"2024-01-01"}`},
		{name: "missing date", body: `{"reading":5}`},
		{name: "string reading", body: `{"date":"2024-01-01","reading":"5"}`},
		{name: "array body", body: `[1,2]`},
		{name: "malformed", body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, http.MethodPost, srv.URL+"/records", tt.body)
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d; want 400", res.StatusCode)
			}
		})
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("rejected creates wrote the data file: %v", err)
	}
}

func TestRoutes_DeleteAll(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, d := range []string{"2024-01-01", "2024-01-02"} {
		if res := do(t, http.MethodPost, srv.URL+"/records", `{"date":"`+d+`","reading":1}`); res.StatusCode != http.StatusCreated {
			t.Fatalf("POST status = %d", res.StatusCode)
		}
	}

	for i := 0; i < 2; i++ {
		if res := do(t, http.MethodDelete, srv.URL+"/records", ""); res.StatusCode != http.StatusNoContent {
			t.Fatalf("DELETE /records #%d status = %d; want 204", i+1, res.StatusCode)
		}
	}

	res := do(t, http.MethodGet, srv.URL+"/records", "")
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(body)) != `{"items":[]}` {
		t.Errorf("body = %s; want {\"items\":[]}", body)
	}
}

func TestRoutes_CorruptFile(t *testing.T) {
	srv, path := newTestServer(t)
	if err := os.WriteFile(path, []byte(`[{"id":`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if res := do(t, http.MethodGet, srv.URL+"/records", ""); res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("GET /records status = %d; want 500", res.StatusCode)
	}
	if res := do(t, http.MethodPost, srv.URL+"/records", `{"date":"2024-01-01","reading":1}`); res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("POST status = %d; want 500", res.StatusCode)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != `[{"id":` {
		t.Errorf("corrupt file was overwritten: %q", b)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	if res := do(t, http.MethodPut, srv.URL+"/records", `{}`); res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /records status = %d; want 405", res.StatusCode)
	}
}
