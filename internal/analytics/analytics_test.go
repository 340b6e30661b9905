package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlog-insights-go/internal/analytics"
	"chatlog-insights-go/internal/types"
)

func rec(content, ts, userID string) types.LogRecord {
	return types.LogRecord{Content: content, Timestamp: ts, UserID: userID}
}

func TestDailyTrends_SingleRecord(t *testing.T) {
	records := []types.LogRecord{rec("你好", "2024-01-01 09:15:00", "u1")}

	trend := analytics.DailyTrends(records)
	require.Len(t, trend, 1)
	assert.Equal(t, types.DailyTrend{Date: "2024-01-01", Queries: 1, DAU: 1}, trend[0])

	hourly := analytics.HourlyStats(records)
	require.Len(t, hourly, 24)
	assert.Equal(t, 1, hourly[9].Count)

	intents := analytics.ClassifyIntents(records)
	byName := map[string]int{}
	for _, nv := range intents {
		byName[nv.Name] = nv.Value
	}
	assert.Equal(t, 1, byName["闲聊/问候"])
}

func TestDailyTrends_SameUserTwoHours(t *testing.T) {
	records := []types.LogRecord{
		rec("铜价格", "2024-03-05 10:00:00", "u1"),
		rec("铝库存", "2024-03-05 23:59:59", "u1"),
	}

	trend := analytics.DailyTrends(records)
	require.Len(t, trend, 1)
	assert.Equal(t, 2, trend[0].Queries)
	assert.Equal(t, 1, trend[0].DAU)

	hourly := analytics.HourlyStats(records)
	assert.Equal(t, 1, hourly[10].Count)
	assert.Equal(t, 1, hourly[23].Count)
}

func TestDailyTrends_SortedAscending(t *testing.T) {
	records := []types.LogRecord{
		rec("a问题", "2024-02-02 08:00:00", "u1"),
		rec("b问题", "2024-01-31 08:00:00", "u2"),
		rec("c问题", "2024-02-01 08:00:00", ""),
	}
	trend := analytics.DailyTrends(records)
	require.Len(t, trend, 3)
	assert.Equal(t, "2024-01-31", trend[0].Date)
	assert.Equal(t, "2024-02-01", trend[1].Date)
	assert.Equal(t, "2024-02-02", trend[2].Date)
	// unattributed record counts as a query but not as a user
	assert.Equal(t, 0, trend[1].DAU)
}

func TestDailyTrends_SkipsBadDates(t *testing.T) {
	records := []types.LogRecord{
		rec("正常", "2024-01-01 09:00:00", "u1"),
		rec("没有时间部分", "2024-01-01", "u1"),
		rec("乱码", "not-a-date 09:00:00", "u1"),
	}
	trend := analytics.DailyTrends(records)
	require.Len(t, trend, 1)
	assert.Equal(t, 1, trend[0].Queries)
}

func TestHourlyStats_AlwaysTwentyFourSlots(t *testing.T) {
	for _, records := range [][]types.LogRecord{
		nil,
		{rec("问题", "2024-01-01 07:30:00", "u1")},
		{rec("坏小时", "2024-01-01 99:30:00", "u1")},
	} {
		hourly := analytics.HourlyStats(records)
		require.Len(t, hourly, 24)
		assert.Equal(t, "0:00", hourly[0].Hour)
		assert.Equal(t, "23:00", hourly[23].Hour)
		total := 0
		for _, h := range hourly {
			total += h.Count
		}
		assert.LessOrEqual(t, total, len(records))
	}
}

func TestSourceDistribution_FirstSeenOrderAndUnknown(t *testing.T) {
	records := []types.LogRecord{
		{Content: "q1", Timestamp: "2024-01-01 01:00:00", Source: "web"},
		{Content: "q2", Timestamp: "2024-01-01 02:00:00", Source: ""},
		{Content: "q3", Timestamp: "2024-01-01 03:00:00", Source: "app"},
		{Content: "q4", Timestamp: "2024-01-01 04:00:00", Source: "web"},
	}
	dist := analytics.SourceDistribution(records)
	require.Len(t, dist, 3)
	assert.Equal(t, []types.NamedValue{
		{Name: "web", Value: 2},
		{Name: "Unknown", Value: 1},
		{Name: "app", Value: 1},
	}, dist)

	sum := 0
	for _, nv := range dist {
		sum += nv.Value
	}
	assert.Equal(t, len(records), sum)
}

func TestClassifyIntents_PartitionsAllRecords(t *testing.T) {
	records := []types.LogRecord{
		rec("铜价格多少钱", "2024-01-01 01:00:00", "u1"),
		rec("锌行情走势如何", "2024-01-01 02:00:00", "u2"),
		rec("你好", "2024-01-01 03:00:00", "u3"),
		rec("随便写点什么", "2024-01-01 04:00:00", "u4"),
	}
	intents := analytics.ClassifyIntents(records)
	require.Len(t, intents, 6) // all labels present, zeros included

	sum := 0
	for _, nv := range intents {
		sum += nv.Value
	}
	assert.Equal(t, len(records), sum)

	byName := map[string]int{}
	for _, nv := range intents {
		byName[nv.Name] = nv.Value
	}
	assert.Equal(t, 1, byName["价格查询"])
	assert.Equal(t, 1, byName["行情分析"])
	assert.Equal(t, 1, byName["闲聊/问候"])
	assert.Equal(t, 1, byName["其他"])
	assert.Equal(t, 0, byName["数据查询"])
}

func TestClassifyIntents_FirstMatchWins(t *testing.T) {
	// matches both 价格查询 and 行情分析 patterns; only the first counts
	records := []types.LogRecord{rec("铜价格走势", "2024-01-01 01:00:00", "u1")}
	byName := map[string]int{}
	for _, nv := range analytics.ClassifyIntents(records) {
		byName[nv.Name] = nv.Value
	}
	assert.Equal(t, 1, byName["价格查询"])
	assert.Equal(t, 0, byName["行情分析"])
}

func TestMetalDistribution_MultiLabelSortedDesc(t *testing.T) {
	records := []types.LogRecord{
		rec("铜和铝的价格", "2024-01-01 01:00:00", "u1"),
		rec("铜的库存", "2024-01-01 02:00:00", "u2"),
		rec("今天天气不错", "2024-01-01 03:00:00", "u3"),
	}
	dist := analytics.MetalDistribution(records)
	require.Len(t, dist, 2) // zero-count terms excluded
	assert.Equal(t, types.NamedValue{Name: "铜", Value: 2}, dist[0])
	assert.Equal(t, types.NamedValue{Name: "铝", Value: 1}, dist[1])
}

func TestMetalDistribution_TiesKeepVocabularyOrder(t *testing.T) {
	records := []types.LogRecord{rec("铅和锌都查一下", "2024-01-01 01:00:00", "u1")}
	dist := analytics.MetalDistribution(records)
	require.Len(t, dist, 2)
	assert.Equal(t, "铅", dist[0].Name)
	assert.Equal(t, "锌", dist[1].Name)
}

func TestTopKeywords(t *testing.T) {
	records := []types.LogRecord{
		rec("铜价格走势", "2024-01-01 01:00:00", "u1"),
		rec("铝价格", "2024-01-01 02:00:00", "u2"),
	}
	kws := analytics.TopKeywords(records)
	require.NotEmpty(t, kws)
	assert.Equal(t, types.KeywordFrequency{Keyword: "价格", Count: 2}, kws[0])
	for _, kw := range kws {
		assert.Greater(t, kw.Count, 0)
	}
}

func TestTopCompanies_InternalPooledExternalByCompany(t *testing.T) {
	records := []types.LogRecord{
		{Content: "q1", Timestamp: "2024-01-01 01:00:00", Company: "SMM信息科技"},
		{Content: "q2", Timestamp: "2024-01-01 02:00:00", Email: "ops@smm.cn"},
		{Content: "q3", Timestamp: "2024-01-01 03:00:00", Company: "某贸易公司"},
		{Content: "q4", Timestamp: "2024-01-01 04:00:00"}, // no company, excluded
	}
	top := analytics.TopCompanies(records)
	require.Len(t, top, 2)
	assert.Equal(t, types.NamedValue{Name: "SMM内部", Value: 2}, top[0])
	assert.Equal(t, types.NamedValue{Name: "某贸易公司", Value: 1}, top[1])
}

func TestTopCompanies_KeepsTopTen(t *testing.T) {
	var records []types.LogRecord
	for i := 0; i < 12; i++ {
		records = append(records, types.LogRecord{
			Content:   "q",
			Timestamp: "2024-01-01 01:00:00",
			Company:   string(rune('A' + i)),
		})
	}
	assert.Len(t, analytics.TopCompanies(records), 10)
}

func TestUserTypeDistribution_TotalAndExclusive(t *testing.T) {
	records := []types.LogRecord{
		{Content: "q1", Timestamp: "2024-01-01 01:00:00", Company: "smm"},
		{Content: "q2", Timestamp: "2024-01-01 02:00:00", Company: "外部公司"},
		{Content: "q3", Timestamp: "2024-01-01 03:00:00"},
	}
	dist := analytics.UserTypeDistribution(records)
	require.Len(t, dist, 3)
	assert.Equal(t, "内部用户", dist[0].Name)
	assert.Equal(t, "外部用户", dist[1].Name)
	assert.Equal(t, "未知", dist[2].Name)

	sum := 0
	for _, nv := range dist {
		sum += nv.Value
	}
	assert.Equal(t, len(records), sum)
}

func TestUserTypeDistribution_DropsEmptySegments(t *testing.T) {
	records := []types.LogRecord{
		{Content: "q1", Timestamp: "2024-01-01 01:00:00", Company: "外部公司"},
	}
	dist := analytics.UserTypeDistribution(records)
	require.Len(t, dist, 1)
	assert.Equal(t, "外部用户", dist[0].Name)
}

func TestAggregations_Idempotent(t *testing.T) {
	records := []types.LogRecord{
		rec("铜价格多少钱", "2024-01-01 09:00:00", "u1"),
		rec("你好", "2024-01-02 10:00:00", "u2"),
		rec("锌库存数据", "2024-01-02 11:00:00", ""),
	}
	assert.Equal(t, analytics.Report(records), analytics.Report(records))
}
