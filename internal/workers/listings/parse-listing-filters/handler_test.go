// internal/workers/listings/parse-listing-filters/handler_test.go
package parselistingfilters

import (
	"context"
	"errors"
	"testing"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig()
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), &testLogger{t: t})
}

func createInput(rawFilters map[string]interface{}) *Input {
	return &Input{RawFilters: rawFilters}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "complete valid filters",
			input: createInput(map[string]interface{}{
				"locations":  []string{"Lekki", "Sangotedo"},
				"categories": []string{"hotels", "restaurants"},
				"priceRange": map[string]interface{}{"min": 5000, "max": 20000},
				"ratings":    []interface{}{4, 4.5},
				"sortBy":     "price_asc",
			}),
			validateOutput: func(t *testing.T, output *Output) {
				f := output.Filters
				assert.Equal(t, []string{"Lekki", "Sangotedo"}, f.Locations)
				assert.Equal(t, []string{"hotels", "restaurants"}, f.Categories)
				assert.Equal(t, 5000.0, f.PriceRange.Min)
				assert.Equal(t, 20000.0, f.PriceRange.Max)
				assert.Equal(t, []float64{4, 4.5}, f.Ratings)
				assert.Equal(t, models.SortPriceAsc, f.SortBy)
			},
		},
		{
			name:  "nil filters give defaults",
			input: createInput(nil),
			validateOutput: func(t *testing.T, output *Output) {
				f := output.Filters
				assert.NotNil(t, f.Locations)
				assert.Empty(t, f.Locations)
				assert.NotNil(t, f.Categories)
				assert.NotNil(t, f.Ratings)
				assert.Equal(t, models.SortRelevance, f.SortBy)
				assert.True(t, f.IsEmpty())
			},
		},
		{
			name: "comma separated strings",
			input: createInput(map[string]interface{}{
				"locations":  "Ajah, Lekki ,,Ajah",
				"categories": "services",
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"Ajah", "Lekki"}, output.Filters.Locations)
				assert.Equal(t, []string{"services"}, output.Filters.Categories)
			},
		},
		{
			name: "currency formatted prices",
			input: createInput(map[string]interface{}{
				"priceRange": map[string]interface{}{"min": "₦15,000", "max": "NGN 40,000.50"},
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 15000.0, output.Filters.PriceRange.Min)
				assert.Equal(t, 40000.5, output.Filters.PriceRange.Max)
			},
		},
		{
			name: "open ended max",
			input: createInput(map[string]interface{}{
				"priceRange": map[string]interface{}{"min": 10000},
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 10000.0, output.Filters.PriceRange.Min)
				assert.Zero(t, output.Filters.PriceRange.Max)
			},
		},
		{
			name: "single rating and uppercase sort",
			input: createInput(map[string]interface{}{
				"ratings": 3,
				"sortBy":  " RATING ",
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []float64{3}, output.Filters.Ratings)
				assert.Equal(t, models.SortRating, output.Filters.SortBy)
				min, ok := output.Filters.MinRating()
				assert.True(t, ok)
				assert.Equal(t, 3.0, min)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t)
			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_InvalidFilters(t *testing.T) {
	tests := []struct {
		name       string
		rawFilters map[string]interface{}
		errorMsg   string
	}{
		{
			name:       "min greater than max",
			rawFilters: map[string]interface{}{"priceRange": map[string]interface{}{"min": 50000, "max": 1000}},
			errorMsg:   "price min",
		},
		{
			name:       "negative price",
			rawFilters: map[string]interface{}{"priceRange": map[string]interface{}{"min": -5}},
			errorMsg:   "negative value",
		},
		{
			name:       "non numeric price string",
			rawFilters: map[string]interface{}{"priceRange": map[string]interface{}{"max": "cheap"}},
			errorMsg:   "not a number",
		},
		{
			name:       "rating above five",
			rawFilters: map[string]interface{}{"ratings": []interface{}{6}},
			errorMsg:   "exceeds",
		},
		{
			name:       "unknown sort",
			rawFilters: map[string]interface{}{"sortBy": "distance"},
			errorMsg:   "invalid sortBy",
		},
		{
			name:       "wrong locations type",
			rawFilters: map[string]interface{}{"locations": 42},
			errorMsg:   "locations",
		},
		{
			name:       "price range not an object",
			rawFilters: map[string]interface{}{"priceRange": "1000-2000"},
			errorMsg:   "priceRange",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t)
			output, err := handler.Execute(context.Background(), createInput(tt.rawFilters))
			require.Error(t, err)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, ErrInvalidFilterFormat))
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

// ==========================
// Helper Function Tests
// ==========================

func TestParseStringArray(t *testing.T) {
	assert.Equal(t, []string{}, parseStringArray(nil))
	assert.Equal(t, []string{}, parseStringArray(12))
	assert.Equal(t, []string{"a", "b"}, parseStringArray([]interface{}{"a", 1, " b ", "a"}))
	assert.Equal(t, []string{"x"}, parseStringArray([]string{"x", "", "x"}))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     interface{}
		want    float64
		wantErr bool
	}{
		{nil, 0, false},
		{"", 0, false},
		{12.5, 12.5, false},
		{7, 7, false},
		{"1,250", 1250, false},
		{"-3", 0, true},
		{"abc", 0, true},
		{true, 0, true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.raw)
			continue
		}
		assert.NoError(t, err, "%v", tt.raw)
		assert.Equal(t, tt.want, got, "%v", tt.raw)
	}
}
