package draw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed picks, wrapping each into [0, n)
type sequenceSource struct {
	picks []int
	calls int
}

func (s *sequenceSource) Intn(n int) int {
	v := s.picks[s.calls%len(s.picks)] % n
	s.calls++
	return v
}

func seq(picks ...int) *sequenceSource {
	return &sequenceSource{picks: picks}
}

func TestDraw_ReturnsFreeValueInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for bound := 1; bound <= 12; bound++ {
		for size := 0; size < bound; size++ {
			history := rng.Perm(bound)[:size]
			for i := range history {
				history[i]++
			}

			v, err := Draw(rng, history, bound, DefaultMaxAttempts)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, bound)
			assert.NotContains(t, history, v)
		}
	}
}

func TestDraw_ExhaustedWhenHistoryCoversRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for bound := 1; bound <= 8; bound++ {
		history := rng.Perm(bound)
		for i := range history {
			history[i]++
		}
		_, err := Draw(rng, history, bound, DefaultMaxAttempts)
		assert.ErrorIs(t, err, ErrExhausted)

		// a fresh pool always has room
		v, err := Draw(rng, nil, bound, DefaultMaxAttempts)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, bound)
	}
}

func TestDraw_EmptyPool(t *testing.T) {
	_, err := Draw(seq(0), nil, 0, DefaultMaxAttempts)
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = Draw(seq(0), nil, -3, DefaultMaxAttempts)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestDraw_RetriesBeforeScanning(t *testing.T) {
	// picks map to 1, 1, 5: the third random pick is free
	src := seq(0, 0, 4)
	v, err := Draw(src, []int{1, 2}, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, 3, src.calls)
}

func TestDraw_ScansAfterAttemptsCollide(t *testing.T) {
	src := seq(0)
	v, err := Draw(src, []int{1, 2}, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, v, "smallest free value")
	assert.Equal(t, 4, src.calls)
}

func TestDraw_NonPositiveAttemptsStillPicksOnce(t *testing.T) {
	src := seq(2)
	v, err := Draw(src, nil, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, src.calls)
}

func TestDrawWithReset_OnlyRemainingValue(t *testing.T) {
	res, err := DrawWithReset(rand.New(rand.NewSource(1)), SplitHistory("1,3"), 3, DefaultMaxAttempts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Value)
	assert.False(t, res.Reset)
	assert.Equal(t, "1,3,2", JoinHistory(res.History))
}

func TestDrawWithReset_ExhaustedPoolResets(t *testing.T) {
	res, err := DrawWithReset(rand.New(rand.NewSource(1)), SplitHistory("1,2,3"), 3, DefaultMaxAttempts)
	require.NoError(t, err)
	assert.True(t, res.Reset)
	require.Len(t, res.History, 1)
	assert.GreaterOrEqual(t, res.Value, 1)
	assert.LessOrEqual(t, res.Value, 3)
}

func TestDrawWithReset_KeepsUnparseableEntries(t *testing.T) {
	res, err := DrawWithReset(seq(0), []string{"abc", "1"}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, []string{"abc", "1", "2"}, res.History)
}

func TestDrawWithReset_EmptyPool(t *testing.T) {
	_, err := DrawWithReset(seq(0), []string{"1"}, 0, DefaultMaxAttempts)
	assert.ErrorIs(t, err, ErrEmptyPool)
}
