package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stackpip/pkg/errors"
)

const taskfileTOML = `
[environment]
python = "3.12"
platform = "linux"

[[task]]
name = "setup"
install = ["requests"]
default = true

[[task]]
name = "tests"
python = ["3.11", "3.12"]
requires = ["setup"]
tags = ["ci"]
`

const lockTOML = `
[[package]]
name = "requests"
version = "2.31.0"

[package.dependencies]
idna = ">=2.5"

[[package]]
name = "idna"
version = "3.6"
`

func newTestServer() *Server {
	return NewServer(log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.FatalLevel}))
}

func post(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestSort(t *testing.T) {
	req := SortRequest{
		Dependencies: map[string][]string{
			"root": {"a", "d"},
			"a":    {"c", "b"},
			"b":    {},
			"c":    {},
			"d":    {"e"},
			"e":    {"c"},
		},
		Root: "root",
	}
	rec := post(t, newTestServer(), "/v1/sort", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decodeBody[SortResponse](t, rec).Order
	if want := []string{"c", "b", "a", "e", "d"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	req.KeepRoot = true
	got = decodeBody[SortResponse](t, post(t, newTestServer(), "/v1/sort", req)).Order
	if got[len(got)-1] != "root" {
		t.Errorf("order = %v, want root last", got)
	}
}

func TestSort_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		status  int
		code    errs.Code
		cycle   []string
		missing []string
	}{
		{
			name:   "cycle",
			body:   SortRequest{Dependencies: map[string][]string{"a": {"b"}, "b": {"a"}}, Root: "a"},
			status: http.StatusUnprocessableEntity,
			code:   errs.ErrCodeDependencyCycle,
			cycle:  []string{"a", "b", "a"},
		},
		{
			name:    "missing node",
			body:    SortRequest{Dependencies: map[string][]string{"a": {"ghost"}}, Root: "a"},
			status:  http.StatusUnprocessableEntity,
			code:    errs.ErrCodePackageNotFound,
			missing: []string{"ghost"},
		},
		{
			name:   "no root",
			body:   SortRequest{Dependencies: map[string][]string{"a": nil}},
			status: http.StatusBadRequest,
			code:   errs.ErrCodeInvalidInput,
		},
		{
			name:   "unknown field",
			body:   map[string]any{"deps": map[string][]string{}, "root": "a"},
			status: http.StatusBadRequest,
			code:   errs.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(), "/v1/sort", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
			if !slices.Equal(resp.Cycle, tt.cycle) {
				t.Errorf("cycle = %v, want %v", resp.Cycle, tt.cycle)
			}
			if !slices.Equal(resp.Missing, tt.missing) {
				t.Errorf("missing = %v, want %v", resp.Missing, tt.missing)
			}
		})
	}
}

func TestSort_ContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/sort", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestPlan(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/plan", PlanRequest{
		Taskfile: taskfileTOML,
		Lock:     lockTOML,
		Tags:     []string{"ci"},
		Python:   []string{"3.12"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeBody[PlanResponse](t, rec)
	if want := []string{"setup", "tests-3.12"}; !slices.Equal(resp.Order, want) {
		t.Errorf("order = %v, want %v", resp.Order, want)
	}
	if got := resp.Tasks[0].Packages; !slices.Equal(got, []string{"idna==3.6", "requests==2.31.0"}) {
		t.Errorf("setup packages = %v", got)
	}
	if got := resp.Tasks[1].Requires; !slices.Equal(got, []string{"setup"}) {
		t.Errorf("tests-3.12 requires = %v", got)
	}
}

func TestPlan_Defaults(t *testing.T) {
	rec := post(t, newTestServer(), "/v1/plan", PlanRequest{Taskfile: taskfileTOML})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[PlanResponse](t, rec).Order; !slices.Equal(got, []string{"setup"}) {
		t.Errorf("order = %v, want [setup]", got)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    PlanRequest
		status int
		code   errs.Code
	}{
		{"unknown task", PlanRequest{Taskfile: taskfileTOML, Tasks: []string{"nope"}}, http.StatusNotFound, errs.ErrCodeTaskNotFound},
		{"bad taskfile", PlanRequest{Taskfile: "[[task]]\nnam = 1"}, http.StatusBadRequest, errs.ErrCodeInvalidManifest},
		{"cycle", PlanRequest{Taskfile: "[[task]]\nname = \"a\"\nrequires = [\"b\"]\n[[task]]\nname = \"b\"\nrequires = [\"a\"]", Tasks: []string{"a"}}, http.StatusUnprocessableEntity, errs.ErrCodeDependencyCycle},
		{"missing dep", PlanRequest{Taskfile: "[[task]]\nname = \"a\"\nrequires = [\"ghost\"]", Tasks: []string{"a"}}, http.StatusUnprocessableEntity, errs.ErrCodeDependencyNotFound},
		{"requirements file", PlanRequest{Taskfile: "[[task]]\nname = \"a\"\nrequirements = \"/etc/passwd\""}, http.StatusBadRequest, errs.ErrCodeUnsupported},
		{"unlocked package", PlanRequest{Taskfile: "[[task]]\nname = \"a\"\ninstall = [\"flask\"]", Lock: lockTOML}, http.StatusUnprocessableEntity, errs.ErrCodePackageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(), "/v1/plan", tt.req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if resp := decodeBody[ErrorResponse](t, rec); resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}
}
