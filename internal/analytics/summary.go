package analytics

import (
	"sort"

	"chatlog-insights-go/internal/types"
)

// SummaryStats composes the top-line scalar bundle from the other
// views. uniqueUsers counts distinct UserID values as-is, so an empty id
// collapses all unattributed records into one "user" — kept that way on
// purpose, see the open-question note in DESIGN.md.
func SummaryStats(records []types.LogRecord) types.AnalysisSummary {
	s := types.AnalysisSummary{
		TotalQueries: len(records),
		TopSource:    "N/A",
		BusiestDay:   "N/A",
	}

	ids := map[string]struct{}{}
	for _, r := range records {
		ids[r.UserID] = struct{}{}
	}
	s.UniqueUsers = len(ids)
	if s.UniqueUsers > 0 {
		s.AvgQueriesPerUser = float64(s.TotalQueries) / float64(s.UniqueUsers)
	}

	// first-seen among maxima: strict > while scanning in view order
	best := 0
	for _, src := range SourceDistribution(records) {
		if src.Value > best {
			best = src.Value
			s.TopSource = src.Name
		}
	}
	best = 0
	for _, day := range DailyTrends(records) {
		if day.Queries > best {
			best = day.Queries
			s.BusiestDay = day.Date
		}
	}

	s.RetentionRate = RetentionRate(records)
	return s
}

// RetentionRate estimates next-day retention: for each adjacent pair in
// the sorted list of distinct dates, the fraction of day-i users also
// present on day i+1, averaged over all pairs with a non-empty day-i
// set, as a percentage. Fewer than two dates yields 0. This is a
// pairwise mean, an intentional simplification of a cohort retention
// curve.
func RetentionRate(records []types.LogRecord) float64 {
	byDate := map[string]map[string]struct{}{}
	for _, r := range records {
		date, ok := recordDate(r.Timestamp)
		if !ok {
			continue
		}
		if byDate[date] == nil {
			byDate[date] = map[string]struct{}{}
		}
		byDate[date][r.UserID] = struct{}{}
	}
	if len(byDate) < 2 {
		return 0
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var sum float64
	var pairs int
	for i := 0; i+1 < len(dates); i++ {
		day, next := byDate[dates[i]], byDate[dates[i+1]]
		if len(day) == 0 {
			continue
		}
		retained := 0
		for id := range day {
			if _, ok := next[id]; ok {
				retained++
			}
		}
		sum += float64(retained) / float64(len(day))
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs) * 100
}
