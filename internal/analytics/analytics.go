package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"chatlog-insights-go/internal/rules"
	"chatlog-insights-go/internal/types"
)

// Every function in this package is a pure read of the record snapshot:
// a fresh accumulator is built inside each call and discarded, so the
// functions are order-free, repeatable and safe to run in parallel over
// the same slice.

// recordDate is the calendar-date portion of the timestamp. ok is false
// when the date part is missing or not a real date; callers skip such
// records for date-keyed views only.
func recordDate(ts string) (string, bool) {
	date, _, found := strings.Cut(ts, " ")
	if !found || date == "" {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date, true
}

// DailyTrends groups records by calendar date: per-date query count and
// distinct attributed (non-empty UserID) users. Ascending by date
// string, which for YYYY-MM-DD is chronological.
func DailyTrends(records []types.LogRecord) []types.DailyTrend {
	queries := map[string]int{}
	users := map[string]map[string]struct{}{}
	for _, r := range records {
		date, ok := recordDate(r.Timestamp)
		if !ok {
			continue
		}
		queries[date]++
		if r.UserID != "" {
			if users[date] == nil {
				users[date] = map[string]struct{}{}
			}
			users[date][r.UserID] = struct{}{}
		}
	}
	dates := make([]string, 0, len(queries))
	for d := range queries {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]types.DailyTrend, 0, len(dates))
	for _, d := range dates {
		out = append(out, types.DailyTrend{Date: d, Queries: queries[d], DAU: len(users[d])})
	}
	return out
}

// HourlyStats buckets records into the 24 hour slots. Records whose hour
// does not parse into [0,23] are skipped; the output is always the full
// 24 slots in hour order.
func HourlyStats(records []types.LogRecord) []types.HourlyStat {
	var counts [24]int
	for _, r := range records {
		_, clock, found := strings.Cut(r.Timestamp, " ")
		if !found {
			continue
		}
		hourStr, _, _ := strings.Cut(clock, ":")
		h, err := strconv.Atoi(strings.TrimSpace(hourStr))
		if err != nil || h < 0 || h > 23 {
			continue
		}
		counts[h]++
	}
	out := make([]types.HourlyStat, 24)
	for h := 0; h < 24; h++ {
		out[h] = types.HourlyStat{Hour: fmt.Sprintf("%d:00", h), Count: counts[h]}
	}
	return out
}

// SourceDistribution counts records per channel label, first-seen label
// order. An empty source is reported under "Unknown".
func SourceDistribution(records []types.LogRecord) []types.NamedValue {
	counts := map[string]int{}
	var order []string
	for _, r := range records {
		label := r.Source
		if label == "" {
			label = "Unknown"
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	out := make([]types.NamedValue, 0, len(order))
	for _, label := range order {
		out = append(out, types.NamedValue{Name: label, Value: counts[label]})
	}
	return out
}

// ClassifyIntents runs the single-label intent table over every record.
// Output is all labels in table order, zero counts included, so the
// values always sum to the record count.
func ClassifyIntents(records []types.LogRecord) []types.NamedValue {
	counts := map[string]int{}
	for _, r := range records {
		counts[rules.ClassifyIntent(r.Content)]++
	}
	out := make([]types.NamedValue, 0, len(rules.IntentRules))
	for _, rule := range rules.IntentRules {
		out = append(out, types.NamedValue{Name: rule.Label, Value: counts[rule.Label]})
	}
	return out
}

// countVocabulary applies the multi-label containment policy over the
// whole collection: a record increments every vocabulary term it
// contains. Zero-count terms are dropped and the rest sorted descending,
// ties keeping vocabulary order.
func countVocabulary(records []types.LogRecord, vocab []string) []types.NamedValue {
	counts := map[string]int{}
	for _, r := range records {
		for term := range rules.CountTerms(vocab, r.Content) {
			counts[term]++
		}
	}
	out := make([]types.NamedValue, 0, len(vocab))
	for _, term := range vocab {
		if counts[term] > 0 {
			out = append(out, types.NamedValue{Name: term, Value: counts[term]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// MetalDistribution counts mentions of each metal term in query content.
func MetalDistribution(records []types.LogRecord) []types.NamedValue {
	return countVocabulary(records, rules.MetalTerms)
}

// TopKeywords counts mentions of each query-phrase keyword.
func TopKeywords(records []types.LogRecord) []types.KeywordFrequency {
	counted := countVocabulary(records, rules.QueryKeywords)
	out := make([]types.KeywordFrequency, 0, len(counted))
	for _, nv := range counted {
		out = append(out, types.KeywordFrequency{Keyword: nv.Name, Count: nv.Value})
	}
	return out
}

// TopCompanies is the company leaderboard: internal traffic is pooled
// under one label, external records bucket by their company field, and
// records with neither are excluded. Descending by count, first-seen
// order on ties, top 10.
func TopCompanies(records []types.LogRecord) []types.NamedValue {
	counts := map[string]int{}
	var order []string
	bump := func(label string) {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	for _, r := range records {
		switch {
		case rules.IsInternal(r.Company, r.UserName, r.Nickname, r.Email):
			bump(rules.InternalAggregateLabel)
		case r.Company != "":
			bump(r.Company)
		}
	}
	out := make([]types.NamedValue, 0, len(order))
	for _, label := range order {
		out = append(out, types.NamedValue{Name: label, Value: counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// UserTypeDistribution partitions every record into exactly one of
// internal / external / unknown, so the segment values always sum to the
// record count. Zero segments are dropped; label order is fixed.
func UserTypeDistribution(records []types.LogRecord) []types.NamedValue {
	var internal, external, unknown int
	for _, r := range records {
		switch {
		case rules.IsInternal(r.Company, r.UserName, r.Nickname, r.Email):
			internal++
		case r.Company != "":
			external++
		default:
			unknown++
		}
	}
	var out []types.NamedValue
	for _, seg := range []types.NamedValue{
		{Name: rules.UserTypeInternal, Value: internal},
		{Name: rules.UserTypeExternal, Value: external},
		{Name: rules.UserTypeUnknown, Value: unknown},
	} {
		if seg.Value > 0 {
			out = append(out, seg)
		}
	}
	return out
}

// Report computes every derived view over one snapshot. The per-view
// functions stay public so consumers can recompute any single view.
func Report(records []types.LogRecord) types.AnalyticsReport {
	return types.AnalyticsReport{
		Summary:      SummaryStats(records),
		DailyTrend:   DailyTrends(records),
		HourlyStats:  HourlyStats(records),
		Sources:      SourceDistribution(records),
		Intents:      ClassifyIntents(records),
		Metals:       MetalDistribution(records),
		Keywords:     TopKeywords(records),
		TopCompanies: TopCompanies(records),
		UserTypes:    UserTypeDistribution(records),
	}
}
