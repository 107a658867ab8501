package types

import (
	"strconv"
	"strings"
)

const CurieSeparator = ":"

// SplitCurie splits "OMIM:154700" into "OMIM" and "154700".
func SplitCurie(id string) (prefix string, local string, ok bool) {
	idx := strings.Index(id, CurieSeparator)
	if idx <= 0 || idx == len(id)-1 {
		return "", "", false
	}
	return id[:idx], id[idx+1:], true
}

func IsCurie(id string) bool {
	prefix, local, ok := SplitCurie(id)
	if !ok {
		return false
	}
	return !strings.ContainsAny(prefix, " \t") && !strings.ContainsAny(local, " \t")
}

// CompareCuries orders by prefix and then by local id, numerically when both
// local ids are integers, so that OMIM:2000 sorts after OMIM:300.
func CompareCuries(a, b string) int {
	aPrefix, aLocal, aOk := SplitCurie(a)
	bPrefix, bLocal, bOk := SplitCurie(b)
	if !aOk || !bOk {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(aPrefix, bPrefix); c != 0 {
		return c
	}
	aNum, aErr := strconv.ParseUint(aLocal, 10, 64)
	bNum, bErr := strconv.ParseUint(bLocal, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
	}
	return strings.Compare(aLocal, bLocal)
}
