package utils

import (
	"strconv"
)

// ParseID converts a path parameter to an entity id, second result false on
// garbage or zero.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
