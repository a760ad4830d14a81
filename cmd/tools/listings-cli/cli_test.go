package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

const catalogBody = `{"status":"success","data":{"listings":[
	{"id":"1","title":"Sango Suites","category":"stay.hotel","location":"Sango"},
	{"id":"2","title":"Dugbe Diner","category":"food.restaurant","location":{"area":"Dugbe","address":"Dugbe Market"}},
	{"id":"3","title":"Ring Road Rooms","category":"stay.hotel","area":"Sango","city":"Ibadan"},
	{"id":"4","title":"Bodija Bites","category":"food.restaurant","location":"Bodija, Ibadan"},
	{"id":"5","name":"Sango Events Hall","category":"events.hall","location":{"address":"3 Sango Road"}}
]}}`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newCatalog(t *testing.T, body string, code int) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.RequestURI())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

// ==========================
// classify / build-request
// ==========================

func TestClassify(t *testing.T) {
	out, err := runCLI(t, "", "classify", "Sango")
	require.NoError(t, err)
	assert.Contains(t, out, "location (short_query)")

	out, err = runCLI(t, "", "--json", "classify", "hotels with a pool near the market")
	require.NoError(t, err)
	var c map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, true, c["isLocation"])
	assert.Equal(t, "indicator", c["reason"])
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"keyword with category", []string{"build-request", "hotel", "--category", "services"}, "/listings?q=hotel&categories=services"},
		{"location query drops q", []string{"build-request", "sango"}, "/listings"},
		{"no query", []string{"build-request"}, "/listings"},
		{"custom base", []string{"build-request", "events", "--path", "/api/v2/listings"}, "/api/v2/listings?q=events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestBuildRequest_InvalidFilters(t *testing.T) {
	_, err := runCLI(t, "", "build-request", "hotel", "--sort", "distance")
	assert.ErrorContains(t, err, "invalid --sort")

	_, err = runCLI(t, "", "build-request", "hotel", "--min-price", "500", "--max-price", "100")
	assert.ErrorContains(t, err, "above --max-price")
}

// ==========================
// search / interactive
// ==========================

func TestSearch_LocationQueryFiltersLocally(t *testing.T) {
	srv, requests := newCatalog(t, catalogBody, http.StatusOK)

	out, err := runCLI(t, "", "search", "sango", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "3 of 5 listings")
	assert.Contains(t, out, "Sango Suites")
	assert.NotContains(t, out, "Dugbe Diner")
	assert.Equal(t, []string{"/listings"}, requests())
}

func TestSearch_JSON(t *testing.T) {
	srv, requests := newCatalog(t, catalogBody, http.StatusOK)

	out, err := runCLI(t, "", "--json", "search", "hotel", "--base-url", srv.URL)
	require.NoError(t, err)

	var res struct {
		IsLocation   bool          `json:"isLocation"`
		Path         string        `json:"path"`
		BackendCount int           `json:"backendCount"`
		Listings     []interface{} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.IsLocation)
	assert.Equal(t, "/listings?q=hotel", res.Path)
	assert.Equal(t, 5, res.BackendCount)
	assert.Len(t, res.Listings, 5)
	assert.Equal(t, []string{"/listings?q=hotel"}, requests())
}

func TestSearch_BackendFailure(t *testing.T) {
	srv, _ := newCatalog(t, `{"status":"error","message":"DB down"}`, http.StatusInternalServerError)

	out, err := runCLI(t, "", "search", "sango", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, out, "error: DB down")
}

func TestInteractive_ReportsLatest(t *testing.T) {
	srv, requests := newCatalog(t, catalogBody, http.StatusOK)

	out, err := runCLI(t, "sango\n\nhotel\n", "interactive", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `latest: "hotel"`)
	assert.Contains(t, out, "2 searches issued")
	assert.LessOrEqual(t, len(requests()), 2)
}

// ==========================
// registry
// ==========================

func TestRegistryValidate(t *testing.T) {
	out, err := runCLI(t, "", "registry", "validate", "--path", "../../../configs/activity-registry.json")
	require.NoError(t, err)
	assert.Contains(t, out, "registry valid: 7 activities")

	_, err = runCLI(t, "", "registry", "validate", "--path", "does-not-exist.json")
	assert.Error(t, err)
}
