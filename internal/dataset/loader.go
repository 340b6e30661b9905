package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"chatlog-insights-go/internal/logger"
	"chatlog-insights-go/internal/types"
)

// ParseError is the single fatal ingestion error: the input could not be
// tokenized as delimited text at all (broken encoding, unreadable
// workbook). Row-level defects never surface as errors; they are
// filtered.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// headerMap binds canonical LogRecord fields to the export's localized
// column headers. A header missing from the file defaults that field to
// the empty string.
var headerMap = map[string]string{
	"questionId":      "问题ID",
	"content":         "内容",
	"timestamp":       "时间",
	"source":          "来源",
	"userId":          "用户ID",
	"company":         "公司",
	"userName":        "用户名",
	"nickname":        "昵称",
	"email":           "邮箱",
	"feedbackStatus":  "反馈状态",
	"feedbackContent": "反馈内容",
}

// Ingest parses an uploaded export into the normalized record
// collection. XLSX workbooks (the upstream tool's native export) are
// detected by the zip magic; everything else is treated as CSV in UTF-8
// or GBK. The only error returned is *ParseError; defective rows are
// dropped quietly and an empty collection is a valid result.
func Ingest(data []byte) ([]types.LogRecord, error) {
	log := logger.New().WithField("component", "dataset.ingest").WithField("bytes", len(data))
	var (
		rows []map[string]string
		err  error
	)
	if bytes.HasPrefix(data, []byte("PK")) {
		rows, err = readWorkbook(data)
	} else {
		rows, err = readCSV(data)
	}
	if err != nil {
		log.WithError(err).Error("ingest failed")
		return nil, err
	}
	records := Normalize(rows)
	log.WithField("raw_rows", len(rows)).WithField("records", len(records)).Info("ingest complete")
	return records, nil
}

// Normalize maps raw header→value rows into LogRecords, trimming every
// value and dropping any candidate whose content or timestamp ends up
// empty. Purely functional; never errors.
func Normalize(rows []map[string]string) []types.LogRecord {
	out := make([]types.LogRecord, 0, len(rows))
	for _, row := range rows {
		field := func(canonical string) string {
			return strings.TrimSpace(row[headerMap[canonical]])
		}
		rec := types.LogRecord{
			QuestionID:      field("questionId"),
			Content:         field("content"),
			Timestamp:       field("timestamp"),
			Source:          field("source"),
			UserID:          field("userId"),
			Company:         field("company"),
			UserName:        field("userName"),
			Nickname:        field("nickname"),
			Email:           field("email"),
			FeedbackStatus:  field("feedbackStatus"),
			FeedbackContent: field("feedbackContent"),
		}
		if rec.Content == "" || rec.Timestamp == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func readCSV(data []byte) ([]map[string]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // ragged rows are a row-level defect, not fatal
	r.LazyQuotes = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: "csv tokenization failed", Err: err}
	}
	if len(all) == 0 {
		return nil, &ParseError{Reason: "missing header row"}
	}
	return zipRows(all[0], all[1:]), nil
}

func readWorkbook(data []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: "open workbook", Err: err}
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: "read workbook rows", Err: err}
	}
	if len(all) == 0 {
		return nil, &ParseError{Reason: "missing header row"}
	}
	return zipRows(all[0], all[1:]), nil
}

// zipRows pairs each data row with the header row. Cells beyond the
// header width are ignored; short rows leave the tail headers unset.
func zipRows(header []string, body [][]string) []map[string]string {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(h)
	}
	rows := make([]map[string]string, 0, len(body))
	for _, r := range body {
		m := make(map[string]string, len(keys))
		for i, k := range keys {
			if k == "" {
				continue
			}
			if i < len(r) {
				m[k] = r[i]
			}
		}
		rows = append(rows, m)
	}
	return rows
}

// decodeText returns the file as UTF-8. Exports from older tooling come
// in GBK, so that is tried when the bytes are not valid UTF-8; failing
// both is the one encoding error that aborts ingestion. The GBK decoder
// substitutes U+FFFD for byte sequences it cannot map instead of
// erroring, so replacement runes in its output mean the input was not
// GBK either.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder()))
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", &ParseError{Reason: "undecodable text encoding", Err: err}
	}
	return string(decoded), nil
}
