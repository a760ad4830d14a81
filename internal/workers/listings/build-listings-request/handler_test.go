// internal/workers/listings/build-listings-request/handler_test.go
package buildlistingsrequest

import (
	"context"
	"testing"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T, base string) *Handler {
	cfg := LoadConfig()
	if base != "" {
		cfg.ListingsPath = base
	}
	return NewHandler(cfg, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantPath    string
		wantKeyword bool
	}{
		{
			name:     "nothing to send",
			input:    &Input{},
			wantPath: "/listings",
		},
		{
			name:     "location query is never sent",
			input:    &Input{SearchQuery: "Sango"},
			wantPath: "/listings",
		},
		{
			name:        "keyword with mapped category",
			input:       &Input{SearchQuery: "hotel", Filters: models.Filters{Categories: []string{"vendor"}}},
			wantPath:    "/listings?q=hotel&categories=services",
			wantKeyword: true,
		},
		{
			name: "all filters in order",
			input: &Input{
				SearchQuery: "wedding photographers near me",
				Filters: models.Filters{
					Locations:  []string{"Bodija"},
					PriceRange: models.PriceRange{Min: 5000, Max: 20000},
					Ratings:    []float64{4.5, 4},
					SortBy:     models.SortPriceDesc,
				},
			},
			wantPath:    "/listings?q=wedding+photographers+near+me&locations=Bodija&minPrice=5000&maxPrice=20000&minRating=4&sort=price_desc",
			wantKeyword: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t, "").Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, output.Path)
			assert.Equal(t, tt.wantKeyword, output.IncludesKeyword)
			assert.NotNil(t, output.QueryParams)
		})
	}
}

func TestHandler_Execute_CustomBasePath(t *testing.T) {
	output, err := createTestHandler(t, "/api/v2/listings").Execute(context.Background(), &Input{SearchQuery: "events"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/listings?q=events", output.Path)
	assert.Equal(t, []string{"q=events"}, output.QueryParams)
}
