// Package draw picks non-repeating values from a bounded pool.
package draw

import (
	"errors"
	"strconv"
)

// DefaultMaxAttempts is the number of random picks tried before falling back to a scan
const DefaultMaxAttempts = 10

var (
	// ErrExhausted is returned when every value in [1, bound] is already in the history
	ErrExhausted = errors.New("draw: every value in range has been issued")
	// ErrEmptyPool is returned when bound is below 1 and no value can ever be issued
	ErrEmptyPool = errors.New("draw: bound must be at least 1")
)

// Source is the random number source used by Draw. *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Draw returns a value in [1, bound] that is not present in history.
//
// Up to maxAttempts uniform picks are tried. Only when all of them collide does Draw fall
// back to returning the smallest free value, so the result is random whenever the pool
// still has room for a lucky pick. Draw has no state beyond its arguments.
func Draw(src Source, history []int, bound, maxAttempts int) (int, error) {
	if bound < 1 {
		return 0, ErrEmptyPool
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	issued := make(map[int]struct{}, len(history))
	for _, v := range history {
		issued[v] = struct{}{}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		v := src.Intn(bound) + 1
		if _, taken := issued[v]; !taken {
			return v, nil
		}
	}

	for v := 1; v <= bound; v++ {
		if _, taken := issued[v]; !taken {
			return v, nil
		}
	}
	return 0, ErrExhausted
}

// Result is the outcome of DrawWithReset
type Result struct {
	Value   int
	History []string // stored entries plus Value, or just Value after a reset
	Reset   bool
}

// DrawWithReset draws against a stored history and applies the exhaustion policy: when the
// pool is exhausted the history is cleared and the draw is repeated once on the fresh pool.
// Stored entries are kept verbatim in the returned history; unparseable ones count as 0.
func DrawWithReset(src Source, history []string, bound, maxAttempts int) (Result, error) {
	value, err := Draw(src, NormalizeHistory(history), bound, maxAttempts)
	reset := false
	if errors.Is(err, ErrExhausted) {
		history = nil
		reset = true
		value, err = Draw(src, nil, bound, maxAttempts)
	}
	if err != nil {
		return Result{}, err
	}

	next := make([]string, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, strconv.Itoa(value))
	return Result{Value: value, History: next, Reset: reset}, nil
}
