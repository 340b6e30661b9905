package types

// LogRecord is one normalized assistant interaction. Records with empty
// Content or Timestamp never make it past ingestion; after that the
// record is immutable and the whole collection is replaced wholesale on
// the next upload.
type LogRecord struct {
	QuestionID      string `json:"question_id"`
	Content         string `json:"content"`
	Timestamp       string `json:"timestamp"` // YYYY-MM-DD HH:MM:SS
	Source          string `json:"source,omitempty"`
	UserID          string `json:"user_id,omitempty"` // empty means unattributed
	Company         string `json:"company,omitempty"`
	UserName        string `json:"user_name,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	Email           string `json:"email,omitempty"`
	FeedbackStatus  string `json:"feedback_status,omitempty"`
	FeedbackContent string `json:"feedback_content,omitempty"`
}

// NamedValue is a generic label→count pair shared by the source, intent,
// metal, company and user-type distributions.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DailyTrend is one calendar date's traffic: query count plus distinct
// attributed users that day.
type DailyTrend struct {
	Date    string `json:"date"`
	Queries int    `json:"queries"`
	DAU     int    `json:"dau"`
}

// HourlyStat is one of the 24 fixed hour slots, labeled "0:00".."23:00".
type HourlyStat struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// KeywordFrequency counts one vocabulary keyword's occurrences.
type KeywordFrequency struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// AnalysisSummary is the top-line scalar bundle for the dashboard header.
type AnalysisSummary struct {
	TotalQueries      int     `json:"total_queries"`
	UniqueUsers       int     `json:"unique_users"`
	AvgQueriesPerUser float64 `json:"avg_queries_per_user"`
	RetentionRate     float64 `json:"retention_rate"`
	TopSource         string  `json:"top_source"`
	BusiestDay        string  `json:"busiest_day"`
}

// AnalyticsReport bundles every derived view for the rendering consumer.
// Each field is an independent pure function of the same record snapshot.
type AnalyticsReport struct {
	Summary      AnalysisSummary    `json:"summary"`
	DailyTrend   []DailyTrend       `json:"daily_trend"`
	HourlyStats  []HourlyStat       `json:"hourly_stats"`
	Sources      []NamedValue       `json:"sources"`
	Intents      []NamedValue       `json:"intents"`
	Metals       []NamedValue       `json:"metals"`
	Keywords     []KeywordFrequency `json:"keywords"`
	TopCompanies []NamedValue       `json:"top_companies"`
	UserTypes    []NamedValue       `json:"user_types"`
}
