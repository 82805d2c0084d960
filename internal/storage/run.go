package storage

import (
	"encoding/json"
	"time"
)

// Run - запись журнала об одном вызове операции
type Run struct {
	ID         string          `json:"id"`
	Operation  string          `json:"operation"`
	DocID      string          `json:"doc_id"`
	Status     Status          `json:"status"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}
