// Package progress derives translation completion figures from fields.
package progress

import (
	"math"
	"strings"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/lang"
)

type Stats struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// Field returns the rounded percentage of registry languages translated.
func Field(translations v1.Translations) int {
	return percent(filled(translations), lang.Count())
}

// Feature returns the rounded percentage over every field and language,
// or 0 when there are no fields.
func Feature(fields []v1.Field) int {
	s := FeatureStats(fields)
	if s.Total == 0 {
		return 0
	}
	return percent(s.Filled, s.Total)
}

func FeatureStats(fields []v1.Field) Stats {
	var s Stats
	for _, f := range fields {
		s.Filled += filled(f.Translations)
	}
	s.Total = len(fields) * lang.Count()
	return s
}

func filled(translations v1.Translations) int {
	n := 0
	for _, code := range lang.Codes() {
		if strings.TrimSpace(translations[code]) != "" {
			n++
		}
	}
	return n
}

// percent rounds half up, matching what the admin UI shows.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(100*float64(part)/float64(whole) + 0.5))
}
