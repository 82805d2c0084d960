package storage

import "fmt"

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// MaxReportedErrors - сколько ошибок пакетной операции попадает в ответ
const MaxReportedErrors = 10

type RuleResult struct {
	RuleID string `json:"rule_id"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type RowSyncResult struct {
	Status  Status       `json:"status"`
	Reason  string       `json:"reason,omitempty"`
	Article string       `json:"article,omitempty"`
	Results []RuleResult `json:"results,omitempty"`
}

type FullSyncResult struct {
	Status        Status   `json:"status"`
	Reason        string   `json:"reason,omitempty"`
	RowsProcessed int      `json:"rows_processed"`
	RulesCount    int      `json:"rules_count"`
	RulesApplied  int      `json:"rules_applied"`
	Errors        []string `json:"errors"`
	ErrorsTotal   int      `json:"errors_total"`
}

type CascadeResult struct {
	Triggered bool     `json:"triggered"`
	Updated   []string `json:"updated,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type EventSyncResult struct {
	Status       Status         `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	Header       string         `json:"header,omitempty"`
	RowKey       string         `json:"row_key,omitempty"`
	RulesMatched int            `json:"rules_matched"`
	Results      []RuleResult   `json:"results,omitempty"`
	Cascade      *CascadeResult `json:"cascade,omitempty"`
}

type SheetSortResult struct {
	Name   string `json:"name"`
	Groups int    `json:"groups"`
	Rows   int    `json:"rows"`
}

type SortResult struct {
	Status      Status            `json:"status"`
	Mode        string            `json:"mode"`
	Sheets      []SheetSortResult `json:"sheets_processed"`
	Errors      []string          `json:"errors"`
	TotalTimeMS int64             `json:"total_time_ms"`
}

type ColumnSortResult struct {
	Status    Status `json:"status"`
	Sheet     string `json:"sheet"`
	Column    string `json:"column"`
	Resolved  string `json:"resolved"`
	Ascending bool   `json:"ascending"`
	Rows      int    `json:"rows"`
}

// SheetOutcome - итог по одному листу для операций над семейством листов
type SheetOutcome struct {
	Sheet  string `json:"sheet"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type ArticlesResult struct {
	Status       Status         `json:"status"`
	TotalDeleted int            `json:"total_deleted,omitempty"`
	Sheets       []SheetOutcome `json:"sheets"`
}

// ErrorList копит ошибки пакетной операции, в ответ попадают первые Limit.
type ErrorList struct {
	Limit int
	items []string
	total int
}

func NewErrorList(limit int) *ErrorList {
	return &ErrorList{Limit: limit}
}

func (l *ErrorList) Add(format string, args ...any) {
	l.total++
	if l.Limit > 0 && len(l.items) >= l.Limit {
		return
	}
	l.items = append(l.items, fmt.Sprintf(format, args...))
}

func (l *ErrorList) Items() []string {
	if l.items == nil {
		return []string{}
	}
	return l.items
}

func (l *ErrorList) Total() int { return l.total }
