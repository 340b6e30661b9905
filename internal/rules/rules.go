package rules

import (
	"regexp"
	"strings"
)

// IntentRule is one (label, pattern) pair of the single-label intent
// classifier. Rules are tried in declaration order and the first match
// wins; a record that matches nothing lands in the trailing catch-all.
type IntentRule struct {
	Label   string
	Pattern *regexp.Regexp
}

// IntentRules is the fixed priority-ordered intent table. The last entry
// has a nil pattern and acts as the catch-all, so every record maps to
// exactly one label.
var IntentRules = []IntentRule{
	{Label: "价格查询", Pattern: regexp.MustCompile(`价格|报价|均价|多少钱`)},
	{Label: "行情分析", Pattern: regexp.MustCompile(`行情|走势|趋势|预测|涨|跌`)},
	{Label: "数据查询", Pattern: regexp.MustCompile(`数据|产量|库存|进出口|开工率`)},
	{Label: "资讯政策", Pattern: regexp.MustCompile(`资讯|新闻|政策|公告|关税`)},
	{Label: "闲聊/问候", Pattern: regexp.MustCompile(`你好|您好|谢谢|再见|在吗|hi|hello`)},
	{Label: "其他", Pattern: nil},
}

// MetalTerms is the entity vocabulary counted by substring containment.
// Multi-label: one record may hit several terms. Order is the tie-break
// order for equal counts downstream.
var MetalTerms = []string{
	"铜", "铝", "铅", "锌", "镍", "锡",
	"锂", "钴", "硅", "镁", "不锈钢", "氧化铝",
}

// QueryKeywords is the query-phrase vocabulary, same containment policy
// as MetalTerms but oriented toward what users ask rather than which
// entity they ask about.
var QueryKeywords = []string{
	"价格", "行情", "走势", "库存", "产量",
	"预测", "进出口", "政策", "多少钱", "分析",
}

// internalMarkers identify the operating organization in identity
// fields. Matched case-insensitively against the joined identity text.
var internalMarkers = []string{"smm", "上海有色", "有色网"}

// InternalAggregateLabel buckets all internal traffic in the company
// leaderboard.
const InternalAggregateLabel = "SMM内部"

// User segment labels, in fixed output order.
const (
	UserTypeInternal = "内部用户"
	UserTypeExternal = "外部用户"
	UserTypeUnknown  = "未知"
)

// ClassifyIntent returns the first matching intent label for content, or
// the catch-all when nothing matches. Single-label by construction.
func ClassifyIntent(content string) string {
	for _, r := range IntentRules {
		if r.Pattern == nil {
			return r.Label
		}
		if r.Pattern.MatchString(content) {
			return r.Label
		}
	}
	// unreachable while the table keeps its catch-all tail
	return IntentRules[len(IntentRules)-1].Label
}

// CountTerms applies the multi-label containment policy: every term of
// vocab occurring in content increments its own counter. Case-sensitive,
// no word-boundary logic. The returned map only has entries for terms
// that matched at least once.
func CountTerms(vocab []string, content string) map[string]int {
	hits := map[string]int{}
	for _, term := range vocab {
		if strings.Contains(content, term) {
			hits[term]++
		}
	}
	return hits
}

// IsInternal reports whether a record's identity fields mark it as
// belonging to the operating organization. Pure string match, no lookup.
func IsInternal(company, userName, nickname, email string) bool {
	joined := strings.ToLower(strings.Join([]string{company, userName, nickname, email}, "|"))
	for _, m := range internalMarkers {
		if strings.Contains(joined, m) {
			return true
		}
	}
	return false
}
