package service

import (
	"slices"
	"strconv"
	"strings"
)

// SortVersions orders versions by their dot-separated numeric parts, highest
// first. Missing or non-numeric parts count as 0; ties keep input order.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, func(a, b string) int {
		return compareVersions(b, a)
	})
}

func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	raw := strings.Split(v, ".")
	parts := make([]int, len(raw))
	for i, p := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			parts[i] = n
		}
	}
	return parts
}
