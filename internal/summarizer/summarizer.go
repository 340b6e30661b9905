package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"chatlog-insights-go/internal/logger"
	"chatlog-insights-go/internal/types"
)

// The summarizer is a best-effort collaborator downstream of ingestion:
// it never gates the numeric views and a failure surfaces as a markdown
// failure block, not as an error that invalidates anything.

const (
	defaultSampleLimit = 150
	minContentRunes    = 4
)

// FailureMarkup is returned whenever the digest cannot be produced.
const FailureMarkup = "> ⚠️ AI 摘要生成失败，请稍后重试。图表数据不受影响。"

// Sample picks the records handed to the language model: the first
// SampleLimit records, in collection order, whose content is longer than
// the minimum rune length (bare greetings carry no signal worth tokens).
func Sample(records []types.LogRecord) []types.LogRecord {
	limit := defaultSampleLimit
	if v := os.Getenv("SUMMARY_SAMPLE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	out := make([]types.LogRecord, 0, limit)
	for _, r := range records {
		if len([]rune(r.Content)) <= minContentRunes {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Summarize asks the configured LLM gateway for a markdown digest of the
// report, grounded in the sampled records. USE_MOCK_LLM=true short-
// circuits to a deterministic digest for offline demos, same switch as
// the rest of the stack.
func Summarize(ctx context.Context, report types.AnalyticsReport, sample []types.LogRecord) string {
	log := logger.New().WithField("component", "summarizer").WithField("sample_size", len(sample))

	if os.Getenv("USE_MOCK_LLM") == "true" {
		log.Info("mock LLM mode ON - returning deterministic digest")
		return fmt.Sprintf("## 分析摘要（离线模式）\n\n- 总提问数：%d\n- 独立用户：%d\n- 次日留存率：%.1f%%\n- 最活跃日期：%s",
			report.Summary.TotalQueries, report.Summary.UniqueUsers,
			report.Summary.RetentionRate, report.Summary.BusiestDay)
	}

	apiURL := os.Getenv("LLM_GATEWAY_URL")
	apiKey := os.Getenv("LLM_API_KEY")
	model := os.Getenv("LLM_MODEL")
	if apiURL == "" || apiKey == "" {
		log.Warn("llm gateway not configured")
		return FailureMarkup
	}

	prompt := buildPrompt(report, sample)
	reqBody := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
	}
	data, _ := json.Marshal(reqBody)

	var digest string
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(callCtx, http.MethodPost, apiURL, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("llm server error: %s", string(body))
		}
		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("unexpected llm response: %s", string(body)))
		}
		digest = parsed.Choices[0].Message.Content
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		log.WithError(err).Warn("digest generation failed")
		return FailureMarkup
	}
	return digest
}

func buildPrompt(report types.AnalyticsReport, sample []types.LogRecord) string {
	reportJSON, _ := json.MarshalIndent(report, "", "  ")
	questions := make([]string, 0, len(sample))
	for _, r := range sample {
		questions = append(questions, r.Content)
	}
	questionsJSON, _ := json.Marshal(questions)
	return fmt.Sprintf(`你是一名数据分析师。以下是某问答助手交互日志的统计结果（JSON）和部分用户提问样本。
请基于这些数据写一份简短的 Markdown 分析摘要：整体流量、用户意图分布、热门话题、留存情况，以及一到两条可执行建议。
只使用给出的数据，不要编造数字。

统计结果：
%s

提问样本：
%s
`, string(reportJSON), string(questionsJSON))
}
