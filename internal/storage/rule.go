package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rule - правило синхронизации: значение колонки SourceHeader листа SourceSheet
// копируется в колонку TargetHeader листа TargetSheet (возможно другого документа).
type Rule struct {
	ID           string `json:"id"`
	Enabled      bool   `json:"enabled"`
	Category     string `json:"category"`
	Hashtags     string `json:"hashtags"`
	SourceSheet  string `json:"source_sheet"`
	SourceHeader string `json:"source_header"`
	TargetSheet  string `json:"target_sheet"`
	TargetHeader string `json:"target_header"`
	IsExternal   bool   `json:"is_external"`
	TargetDocID  string `json:"target_doc_id,omitempty"`
}

// TargetDoc - документ, в который пишет правило
func (r Rule) TargetDoc(current string) string {
	if r.IsExternal {
		return r.TargetDocID
	}
	return current
}

// Edit - правка одной ячейки, пришедшая от редактора.
// HeaderName и RowKey необязательны и дочитываются из листа.
// Лист принимается и как "sheet", и как "sheet_name"; значения ячеек
// могут прийти числом или булевым и приводятся к строке.
type Edit struct {
	Sheet      string `json:"sheet"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Value      string `json:"value"`
	OldValue   string `json:"old_value,omitempty"`
	HeaderName string `json:"header_name,omitempty"`
	RowKey     string `json:"row_key,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
}

func (e *Edit) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sheet      string          `json:"sheet"`
		SheetName  string          `json:"sheet_name"`
		Row        int             `json:"row"`
		Col        int             `json:"col"`
		Value      json.RawMessage `json:"value"`
		OldValue   json.RawMessage `json:"old_value"`
		HeaderName string          `json:"header_name"`
		RowKey     json.RawMessage `json:"row_key"`
		UserEmail  string          `json:"user_email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := scalarString(raw.Value)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	oldValue, err := scalarString(raw.OldValue)
	if err != nil {
		return fmt.Errorf("old_value: %w", err)
	}
	rowKey, err := scalarString(raw.RowKey)
	if err != nil {
		return fmt.Errorf("row_key: %w", err)
	}

	*e = Edit{
		Sheet:      raw.Sheet,
		Row:        raw.Row,
		Col:        raw.Col,
		Value:      value,
		OldValue:   oldValue,
		HeaderName: raw.HeaderName,
		RowKey:     rowKey,
		UserEmail:  raw.UserEmail,
	}
	if e.Sheet == "" {
		e.Sheet = raw.SheetName
	}
	return nil
}

// scalarString - строка, число (как записано), TRUE/FALSE; null и пусто дают ""
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strings.ToUpper(strconv.FormatBool(b)), nil
	case '{', '[':
		return "", fmt.Errorf("unsupported cell value %s", raw)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}
