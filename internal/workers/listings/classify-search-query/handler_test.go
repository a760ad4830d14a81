// internal/workers/listings/classify-search-query/handler_test.go
package classifysearchquery

import (
	"context"
	"testing"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		wantLocation   bool
		wantReason     string
		wantNormalized string
	}{
		{"known area", "Sango", true, search.ReasonIndicator, "sango"},
		{"address suffix", "Ring Road, Ibadan", true, search.ReasonIndicator, "ring road ibadan"},
		{"short unknown place", "Sangotedo", true, search.ReasonIndicator, "sangotedo"},
		{"short generic word", "xyz", true, search.ReasonShortQuery, "xyz"},
		{"category term", "hotel", false, search.ReasonKeyword, "hotel"},
		{"long keyword query", "affordable wedding photographers", false, search.ReasonKeyword, "affordable wedding photographers"},
		{"empty", "   ", false, search.ReasonEmpty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t)
			output, err := handler.Execute(context.Background(), &Input{SearchQuery: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLocation, output.IsLocation)
			assert.Equal(t, tt.wantReason, output.Reason)
			assert.Equal(t, tt.wantNormalized, output.NormalizedQuery)
		})
	}
}

func TestHandler_Execute_MatchesIsLocationQuery(t *testing.T) {
	handler := createTestHandler(t)
	for _, q := range []string{"Bodija", "cheap", "best jollof rice in town", "restaurants"} {
		output, err := handler.Execute(context.Background(), &Input{SearchQuery: q})
		require.NoError(t, err)
		assert.Equal(t, search.IsLocationQuery(q), output.IsLocation, q)
	}
}
