package result_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promoping/promoping-client/internal/result"
)

func TestResultStatesAreMutuallyExclusive(t *testing.T) {
	success := result.Success(7)
	assert.True(t, success.IsSuccess())
	assert.False(t, success.IsError())
	assert.False(t, success.IsLoading())
	assert.Equal(t, 7, success.Value())

	failure := result.Failure[int]("boom", 500)
	assert.True(t, failure.IsError())
	assert.False(t, failure.IsSuccess())
	assert.Equal(t, "boom", failure.Message())
	assert.Equal(t, 500, failure.StatusCode())
	assert.Zero(t, failure.Value())

	loading := result.Loading[int]()
	assert.True(t, loading.IsLoading())
	assert.False(t, loading.IsSuccess())
	assert.False(t, loading.IsError())
}

func TestFailureWithoutStatus(t *testing.T) {
	r := result.Failure[string]("network failure", 0)

	assert.Equal(t, 0, r.StatusCode(), "0 means no HTTP status was obtained")
}
