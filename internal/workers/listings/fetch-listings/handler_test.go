// internal/workers/listings/fetch-listings/handler_test.go
package fetchlistings

import (
	"context"
	"testing"

	apperrors "listings-workers/internal/common/errors"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/listings"
	"listings-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Fetcher
// ==========================

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchListings(ctx context.Context, path string) ([]models.Listing, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func createTestHandler(t *testing.T, fetcher listings.Fetcher) *Handler {
	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), listings.NewService(fetcher, "", log), log)
}

func sampleListings() []models.Listing {
	return []models.Listing{
		{ID: "1", Title: "Sango Suites", Location: models.Location{Raw: "Sango, Ibadan"}},
		{ID: "2", Title: "Bodija Grill", Location: models.Location{Area: "Bodija"}},
		{ID: "3", Title: "Mokola Lounge", Location: models.Location{NestedArea: "Sango Ota"}},
	}
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_LocationQueryFiltersLocally(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchListings", mock.Anything, "/listings").Return(sampleListings(), nil)

	output, err := createTestHandler(t, fetcher).Execute(context.Background(), &Input{SearchQuery: "sango"})
	require.NoError(t, err)

	assert.True(t, output.IsLocation)
	assert.Equal(t, "/listings", output.Path)
	assert.Equal(t, 3, output.BackendCount)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "1", output.Listings[0].ID)
	assert.Equal(t, "3", output.Listings[1].ID)
	assert.False(t, output.HasError)
	assert.Empty(t, output.Error)
	fetcher.AssertExpectations(t)
}

func TestHandler_Execute_KeywordQueryUsesBackend(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchListings", mock.Anything, "/listings?q=restaurant&sort=rating").Return(sampleListings(), nil)

	output, err := createTestHandler(t, fetcher).Execute(context.Background(), &Input{
		SearchQuery: "restaurant",
		Filters:     models.Filters{SortBy: models.SortRating},
	})
	require.NoError(t, err)

	assert.False(t, output.IsLocation)
	assert.Equal(t, 3, output.Count)
	assert.Equal(t, output.BackendCount, output.Count)
	fetcher.AssertExpectations(t)
}

func TestHandler_Execute_BackendErrorIsData(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "server message",
			err:     apperrors.NewListingsFetchFailedError("Database connection failed", nil),
			wantMsg: "Database connection failed",
		},
		{
			name:    "no message",
			err:     apperrors.NewListingsFetchFailedError("", nil),
			wantMsg: apperrors.DefaultListingsMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			fetcher.On("FetchListings", mock.Anything, mock.Anything).Return(nil, tt.err)

			output, err := createTestHandler(t, fetcher).Execute(context.Background(), &Input{SearchQuery: "hotel"})
			require.NoError(t, err)

			assert.True(t, output.HasError)
			assert.Equal(t, tt.wantMsg, output.Error)
			assert.NotNil(t, output.Listings)
			assert.Empty(t, output.Listings)
			assert.Zero(t, output.Count)
		})
	}
}
