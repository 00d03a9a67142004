package normalize

import "time"

// Normalizer maps loosely-typed provider payloads into the canonical view
// models. Providers wrap the same metrics in several nesting conventions
// depending on endpoint and task mode; every extractor tries the known
// conventions in a fixed priority order and falls back to a safe default
// instead of failing. Extraction is stateless and single-pass.
type Normalizer struct{}

// NewNormalizer creates a response normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// volumeScopes returns the candidate objects that may carry search-volume
// metrics, in priority order: keyword_info, the element itself, then the
// same two shapes one level down inside items[0].
func volumeScopes(raw Raw) []Raw {
	scopes := make([]Raw, 0, 4)
	if info, ok := raw.Object("keyword_info"); ok {
		scopes = append(scopes, info)
	}
	scopes = append(scopes, raw)
	if item, ok := raw.First("items"); ok {
		if info, ok := item.Object("keyword_info"); ok {
			scopes = append(scopes, info)
		}
		scopes = append(scopes, item)
	}
	return scopes
}

// SearchVolume extracts search volume, CPC and yearly trend from the first
// result element of a provider task response. The first convention whose
// search_volume field is present wins, and only that convention's sibling
// fields are consulted; siblings are never mixed across conventions. A zero
// volume is a present value. When no convention matches, all three fields
// stay nil.
func (n *Normalizer) SearchVolume(raw Raw) VolumeMetrics {
	var out VolumeMetrics
	if raw == nil {
		return out
	}

	for _, scope := range volumeScopes(raw) {
		volume, ok := scope.Number("search_volume")
		if !ok {
			continue
		}

		sv := int64(volume)
		out.SearchVolume = &sv
		if cpc, ok := scope.Number("cpc"); ok {
			out.CPC = &cpc
		}
		if trend, ok := scope.Number("search_volume_trend", "yearly"); ok {
			out.TrendYearlyPct = &trend
		}
		return out
	}

	return out
}

// Difficulty extracts the 0-100 keyword difficulty score, trying the
// top-level field then items[0]. Zero is a valid score; nil means absent.
func (n *Normalizer) Difficulty(raw Raw) *float64 {
	if raw == nil {
		return nil
	}

	if d, ok := raw.Number("keyword_difficulty"); ok {
		return &d
	}
	if item, ok := raw.First("items"); ok {
		if d, ok := item.Number("keyword_difficulty"); ok {
			return &d
		}
	}
	return nil
}

// monthAbbrevs is the positional fallback for series elements that carry no
// usable date, indexed by position mod 12.
var monthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// TrendSeries extracts a chronological search-interest series, preserving
// input order. The nested shape items[0].items is preferred over a flat
// items array. The result is empty, never nil, when no source array exists.
func (n *Normalizer) TrendSeries(raw Raw) []TrendPoint {
	points := []TrendPoint{}
	if raw == nil {
		return points
	}

	source, ok := func() ([]interface{}, bool) {
		if item, ok := raw.First("items"); ok {
			if nested, ok := item.List("items"); ok {
				return nested, true
			}
		}
		return raw.List("items")
	}()
	if !ok {
		return points
	}

	for i := range source {
		entry, ok := elem(source, i)
		if !ok {
			continue
		}

		point := TrendPoint{Label: monthAbbrevs[i%12]}
		if label, ok := periodLabel(entry); ok {
			point.Label = label
		}
		if values, ok := entry.List("values"); ok && len(values) > 0 {
			if volume, isNum := values[0].(float64); isNum {
				point.Volume = volume
			}
		}
		points = append(points, point)
	}

	return points
}

// periodLabel derives a display label from date_from, then date. Parseable
// dates format as a short month name; an unparseable date string is shown
// as-is rather than dropped.
func periodLabel(entry Raw) (string, bool) {
	for _, field := range []string{"date_from", "date"} {
		value, ok := entry.Str(field)
		if !ok {
			continue
		}
		if month, ok := shortMonth(value); ok {
			return month, true
		}
		return value, true
	}
	return "", false
}

func shortMonth(date string) (string, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("Jan"), true
		}
	}
	return "", false
}

// Demographics extracts age-group interest shares from the audience shape
// items[0].demography.age[0].values. It returns an empty slice when the
// path does not resolve; individual buckets default type to "Unknown" and
// value to 0.
func (n *Normalizer) Demographics(raw Raw) []DemographicBucket {
	buckets := []DemographicBucket{}
	if raw == nil {
		return buckets
	}

	item, ok := raw.First("items")
	if !ok {
		return buckets
	}
	ageGroups, ok := item.Object("demography")
	if !ok {
		return buckets
	}
	ageEntry, ok := ageGroups.First("age")
	if !ok {
		return buckets
	}
	values, ok := ageEntry.List("values")
	if !ok {
		return buckets
	}

	for i := range values {
		entry, ok := elem(values, i)
		if !ok {
			continue
		}

		bucket := DemographicBucket{AgeGroup: "Unknown"}
		if group, ok := entry.Str("type"); ok {
			bucket.AgeGroup = group
		}
		if value, ok := entry.Number("value"); ok {
			bucket.Percentage = value
		}
		buckets = append(buckets, bucket)
	}

	return buckets
}

// relatedCompetition maps a competition level enum to the 0-1 scale used in
// related-keyword tables. LOW and unrecognized values share the low score so
// a provider that omits the field still renders a sortable column.
func relatedCompetition(level string) float64 {
	switch level {
	case "HIGH":
		return 0.8
	case "MEDIUM":
		return 0.5
	default:
		return 0.2
	}
}

// RelatedKeywords extracts related-keyword rows from a provider items array.
// Each row falls back from keyword_data.keyword to the item's own keyword to
// the literal "Unknown"; numeric fields default to 0.
func (n *Normalizer) RelatedKeywords(raw Raw) []RelatedKeywordRow {
	rows := []RelatedKeywordRow{}
	if raw == nil {
		return rows
	}

	items, ok := raw.List("items")
	if !ok {
		return rows
	}

	for i := range items {
		item, ok := elem(items, i)
		if !ok {
			continue
		}

		row := RelatedKeywordRow{Keyword: "Unknown"}
		if keyword, ok := item.Str("keyword_data", "keyword"); ok {
			row.Keyword = keyword
		} else if keyword, ok := item.Str("keyword"); ok {
			row.Keyword = keyword
		}

		info, _ := item.Object("keyword_data", "keyword_info")
		if volume, ok := info.Number("search_volume"); ok {
			row.SearchVolume = volume
		}
		if level, ok := info.Str("competition_level"); ok {
			row.Competition = relatedCompetition(level)
		} else {
			row.Competition = relatedCompetition("")
		}
		if cpc, ok := info.Number("cpc"); ok {
			row.CPC = cpc
		}
		if trend, ok := info.Number("search_volume_trend", "yearly"); ok {
			row.Trend = trend
		}

		rows = append(rows, row)
	}

	return rows
}

// Metric assembles the full canonical KeywordMetric for one keyword from a
// single result element: search-volume convention fields, difficulty, and a
// competition level. When the provider sends no explicit level but a numeric
// competition score is present, the score is bucketed deterministically on
// the canonical 0-1 scale; a 0-100 competition_index is rescaled first.
func (n *Normalizer) Metric(keyword string, raw Raw) KeywordMetric {
	metric := KeywordMetric{Keyword: keyword}
	if raw == nil {
		return metric
	}

	volume := n.SearchVolume(raw)
	metric.SearchVolume = volume.SearchVolume
	metric.CPC = volume.CPC
	metric.TrendYearlyPct = volume.TrendYearlyPct
	metric.Difficulty = n.Difficulty(raw)

	for _, scope := range volumeScopes(raw) {
		if level, ok := scope.Str("competition_level"); ok {
			metric.CompetitionLevel = CompetitionLevel(level)
			break
		}
		if score, ok := scope.Number("competition"); ok {
			metric.CompetitionLevel = BucketCompetition(score)
			break
		}
		if index, ok := scope.Number("competition_index"); ok {
			metric.CompetitionLevel = BucketCompetition(CompetitionFromIndex(index))
			break
		}
	}

	return metric
}
