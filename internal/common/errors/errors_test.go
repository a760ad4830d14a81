package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingsErrors_DefaultMessage(t *testing.T) {
	err := NewListingsResponseInvalidError("", "status=error")
	assert.Equal(t, DefaultListingsMessage, err.Message)
	assert.False(t, err.Retryable)

	err = NewListingsResponseInvalidError("DB down", "status=error")
	assert.Equal(t, "DB down", err.Message)

	fetchErr := NewListingsFetchFailedError("", fmt.Errorf("connection refused"))
	assert.Equal(t, DefaultListingsMessage, fetchErr.Message)
	assert.Equal(t, "connection refused", fetchErr.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewSearchQueryFailedError("listings", fmt.Errorf("shard failure"))
	bpmn := ConvertToBPMNError(stdErr)

	assert.Equal(t, "SEARCH_QUERY_FAILED", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "SEARCH_QUERY_FAILED", vars["originalErrorCode"])
	assert.Equal(t, true, vars["retryable"])

	nonRetry := ConvertToBPMNError(NewInvalidFilterFormatError("bad"))
	assert.Equal(t, 0, nonRetry.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrCodeListingsFetchFailed:     "LISTINGS",
		ErrCodeListingsResponseInvalid: "LISTINGS",
		ErrCodeDatabaseInsertFailed:    "DATABASE",
		ErrCodeSearchTimeout:           "SEARCH",
		ErrCodeIndexNotFound:           "SEARCH",
		ErrCodeCacheUnavailable:        "CACHE",
		ErrCodeInvalidFilterFormat:     "VALIDATION",
		ErrCodeInternal:                "OTHER",
	}
	for code, want := range cases {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestAsStandardError_Wrapped(t *testing.T) {
	inner := NewListingsTimeoutError("/listings")
	wrapped := fmt.Errorf("fetch: %w", inner)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeListingsTimeout, got.Code)

	_, ok = AsStandardError(fmt.Errorf("plain"))
	assert.False(t, ok)

	assert.True(t, IsTimeout(fmt.Errorf("x: %w", context.DeadlineExceeded)))
}

func TestNormalizeError(t *testing.T) {
	std := NormalizeError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.Equal(t, "boom", std.Details)

	same := NewDatabaseInsertFailedError(fmt.Errorf("x"))
	assert.Same(t, same, NormalizeError(same))
}

func TestRetriesLeft(t *testing.T) {
	assert.Equal(t, int32(2), retriesLeft(entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 3}}, 3))
	assert.Equal(t, int32(0), retriesLeft(entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 1}}, 3))
	assert.Equal(t, int32(2), retriesLeft(entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 10}}, 2))
}
