package summarizer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlog-insights-go/internal/summarizer"
	"chatlog-insights-go/internal/types"
)

func record(content string) types.LogRecord {
	return types.LogRecord{Content: content, Timestamp: "2024-01-01 09:00:00"}
}

func TestSample_FiltersShortContent(t *testing.T) {
	records := []types.LogRecord{
		record("你好"), // too short to carry signal
		record("电解铝的库存数据在哪里看"),
		record("嗯"),
		record("帮我分析一下铜价走势"),
	}
	sample := summarizer.Sample(records)
	require.Len(t, sample, 2)
	assert.Equal(t, "电解铝的库存数据在哪里看", sample[0].Content)
	assert.Equal(t, "帮我分析一下铜价走势", sample[1].Content)
}

func TestSample_HonorsLimit(t *testing.T) {
	t.Setenv("SUMMARY_SAMPLE_LIMIT", "3")
	var records []types.LogRecord
	for i := 0; i < 10; i++ {
		records = append(records, record("足够长的一条用户提问内容"))
	}
	assert.Len(t, summarizer.Sample(records), 3)
}

func TestSample_EmptyCollection(t *testing.T) {
	assert.Empty(t, summarizer.Sample(nil))
}

func TestSummarize_MockMode(t *testing.T) {
	t.Setenv("USE_MOCK_LLM", "true")
	report := types.AnalyticsReport{
		Summary: types.AnalysisSummary{TotalQueries: 42, UniqueUsers: 7, BusiestDay: "2024-01-01"},
	}
	digest := summarizer.Summarize(context.Background(), report, nil)
	assert.True(t, strings.Contains(digest, "42"))
	assert.True(t, strings.Contains(digest, "2024-01-01"))
	assert.NotEqual(t, summarizer.FailureMarkup, digest)
}

func TestSummarize_UnconfiguredGatewayFails(t *testing.T) {
	t.Setenv("USE_MOCK_LLM", "false")
	t.Setenv("LLM_GATEWAY_URL", "")
	t.Setenv("LLM_API_KEY", "")
	digest := summarizer.Summarize(context.Background(), types.AnalyticsReport{}, nil)
	assert.Equal(t, summarizer.FailureMarkup, digest)
}
