package draw

import (
	"strconv"
	"strings"
)

const historySeparator = ","

// SplitHistory splits a stored history field. The empty string yields an empty history.
func SplitHistory(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, historySeparator)
}

// JoinHistory renders a history for storage
func JoinHistory(entries []string) string {
	return strings.Join(entries, historySeparator)
}

// NormalizeHistory converts stored entries to integers. Entries that do not parse count as 0,
// which never collides with a drawable value.
func NormalizeHistory(entries []string) []int {
	values := make([]int, len(entries))
	for i, entry := range entries {
		v, err := strconv.Atoi(strings.TrimSpace(entry))
		if err != nil {
			v = 0
		}
		values[i] = v
	}
	return values
}
