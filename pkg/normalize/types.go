package normalize

// CompetitionLevel is the canonical advertiser competition bucket.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "LOW"
	CompetitionMedium CompetitionLevel = "MEDIUM"
	CompetitionHigh   CompetitionLevel = "HIGH"
)

// BucketCompetition maps a numeric competition score on the canonical 0-1
// scale into a level: <0.3 LOW, <0.7 MEDIUM, otherwise HIGH. Providers that
// report a 0-100 competition index must be divided by 100 before bucketing
// (see CompetitionFromIndex).
func BucketCompetition(score float64) CompetitionLevel {
	switch {
	case score < 0.3:
		return CompetitionLow
	case score < 0.7:
		return CompetitionMedium
	default:
		return CompetitionHigh
	}
}

// CompetitionFromIndex converts a 0-100 competition index to the 0-1 scale.
func CompetitionFromIndex(index float64) float64 {
	return index / 100
}

// KeywordMetric is the canonical per-keyword view model. Every field except
// Keyword is optional; absent values stay nil rather than zero so that a
// genuine 0 from the provider is distinguishable from "no data".
type KeywordMetric struct {
	Keyword          string           `json:"keyword"`
	SearchVolume     *int64           `json:"searchVolume,omitempty"`
	CPC              *float64         `json:"cpc,omitempty"`
	Difficulty       *float64         `json:"difficulty,omitempty"`
	CompetitionLevel CompetitionLevel `json:"competitionLevel,omitempty"`
	TrendYearlyPct   *float64         `json:"trendYearlyPct,omitempty"`
}

// VolumeMetrics holds the fields extracted by the search-volume conventions.
type VolumeMetrics struct {
	SearchVolume   *int64   `json:"searchVolume"`
	CPC            *float64 `json:"cpc"`
	TrendYearlyPct *float64 `json:"trendYearlyPct"`
}

// TrendPoint is one element of a chronological search-interest series.
type TrendPoint struct {
	Label  string  `json:"label"`
	Volume float64 `json:"volume"`
}

// DemographicBucket is the share of search interest for one age group.
// Buckets for one query need not sum to 100 because of upstream rounding.
type DemographicBucket struct {
	AgeGroup   string  `json:"ageGroup"`
	Percentage float64 `json:"percentage"`
}

// RelatedKeywordRow is one row of a related-keywords table. Missing numeric
// fields default to 0 here because the table renders densely; the row-level
// defaults are part of the contract, not an accident.
type RelatedKeywordRow struct {
	Keyword      string  `json:"keyword"`
	SearchVolume float64 `json:"searchVolume"`
	Competition  float64 `json:"competition"`
	CPC          float64 `json:"cpc"`
	Trend        float64 `json:"trend"`
}
