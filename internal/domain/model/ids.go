package model

import (
	"strconv"
	"strings"
)

// CompareIDs orders identifiers for tie-breaking. Two identifiers that both
// parse as non-negative integers compare numerically ("2" < "10"); any other
// pair compares lexicographically. Numeric identifiers sort before
// non-numeric ones so the order stays total.
func CompareIDs(a, b string) int {
	an, aok := parseNumericID(a)
	bn, bok := parseNumericID(b)
	switch {
	case aok && bok:
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		// "7" and "007" are numerically equal; fall through to bytes.
		return strings.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func parseNumericID(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
