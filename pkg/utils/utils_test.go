package utils

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationNormalizes(t *testing.T) {
	p := NewPagination(0, 1000)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	assert.Equal(t, DefaultPageSize, NewPagination(1, 0).PageSize)

	p = NewPagination(3, 10)
	p.SetTotal(21)
	assert.Equal(t, 20, p.Offset())
	res := Result(p, []string{"a"})
	assert.Equal(t, 3, res.TotalPages)
	assert.False(t, res.HasMore)
	assert.Equal(t, int64(21), res.Total)
}

func TestPaginationClampsHugePage(t *testing.T) {
	p := NewPagination(math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPage, p.Page)
	assert.Positive(t, p.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageSize, p.Offset())
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 5, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		return Permanent(errors.New("bad payload"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffEventuallySucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 5, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 2, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRandHelpers(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), RandUpperAlnum(6))

	tok, err := RandToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)

	assert.Equal(t, uint(0), DerefUint(nil))
	assert.Equal(t, uint(7), DerefUint(UintPtr(7)))
}
