package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"keywordlens/pkg/normalize"
)

// Format identifies an export target format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, true
	case FormatJSON:
		return FormatJSON, true
	case FormatXLSX:
		return FormatXLSX, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type for download responses.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

var csvHeader = []string{"Keyword", "Search Volume", "CPC", "Difficulty", "Competition", "Trend Yearly %"}

// CSV serializes metrics as one header row plus one row per metric. Absent
// optional fields render as empty cells, not zeros, so a spreadsheet user
// can tell "no data" from a measured zero.
func CSV(rows []normalize.KeywordMetric) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON serializes metrics as pretty-printed JSON.
func JSON(rows []normalize.KeywordMetric) ([]byte, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return data, nil
}

// Export serializes rows in the requested format.
func Export(rows []normalize.KeywordMetric, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CSV(rows)
	case FormatXLSX:
		return XLSX(rows)
	case FormatJSON:
		return JSON(rows)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Filename builds the download filename: sanitized keyword, format suffix
// and the current date as YYYY-MM-DD.
func Filename(keyword string, format Format, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(keyword))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "keywords"
	}

	return fmt.Sprintf("%s-metrics-%s.%s", slug, now.Format("2006-01-02"), format)
}

func record(m normalize.KeywordMetric) []string {
	return []string{
		m.Keyword,
		formatInt(m.SearchVolume),
		formatFloat(m.CPC),
		formatFloat(m.Difficulty),
		string(m.CompetitionLevel),
		formatFloat(m.TrendYearlyPct),
	}
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
