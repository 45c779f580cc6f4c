// Package extract turns saved snapshots into typed records. Two
// deliberately separate strategies: the standings page renders as
// quasi-tabular text and is matched positionally with regular
// expressions, while statistics pages interleave names and values in
// nested elements and need structured-tree queries. Keep them apart
// unless the markup is ever confirmed identical.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/farrandale/plscrape/internal/models"
)

// Warning is a soft extraction problem: a malformed row or an unknown
// label that was skipped. Warnings are reported, never silently dropped,
// and never abort the batch.
type Warning struct {
	Target models.FetchTarget
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Target.Key(), w.Reason)
}

// InconsistentExtractionError reports two paginated snapshots for the
// same team/season carrying conflicting values for one metric. That is
// a parsing or pagination bug, not data to average or overwrite: it is
// fatal for the affected team/season's output.
type InconsistentExtractionError struct {
	Team       string
	Season     string
	Metric     string
	First      *float64
	FirstPage  int
	Second     *float64
	SecondPage int
}

func (e *InconsistentExtractionError) Error() string {
	return fmt.Sprintf("conflicting values for %s/%s metric %s: %s (page %d) vs %s (page %d)",
		e.Team, e.Season, e.Metric,
		formatValue(e.First), e.FirstPage, formatValue(e.Second), e.SecondPage)
}

func formatValue(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// parseNumeric coerces a rendered cell value to a number. Values may
// carry thousands separators or non-numeric decoration; a blank cell is
// an explicit null, not zero.
func parseNumeric(raw string) (*float64, error) {
	cleaned := nonNumericRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable numeric value %q", raw)
	}
	return &v, nil
}

func valuesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
