package rules

import (
	"context"
	"fmt"
	"strings"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

// Колонки листа правил: A=ID, B=Вкл, C=Категория, D=Хэштеги, E=Лист-источник,
// F=Заголовок-источник, G=Лист-приемник, H=Заголовок-приемник, I=Внешний, J=ID документа
const ruleColumns = 10

type SheetStore interface {
	OpenDocument(ctx context.Context, id string) (storage.Document, error)
	Worksheet(ctx context.Context, doc storage.Document, name string) (storage.Sheet, error)
	ReadAll(ctx context.Context, sh storage.Sheet) ([][]string, error)
}

// SheetLoader читает правила из листа правил документа
type SheetLoader struct {
	store SheetStore
	sheet string
}

func NewSheetLoader(store SheetStore, sheet string) *SheetLoader {
	if sheet == "" {
		sheet = constants.SheetRules
	}
	return &SheetLoader{store: store, sheet: sheet}
}

func (l *SheetLoader) Load(ctx context.Context, docID string) ([]storage.Rule, error) {
	const op = "service.rules.SheetLoader.Load"

	doc, err := l.store.OpenDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sh, err := l.store.Worksheet(ctx, doc, l.sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	values, err := l.store.ReadAll(ctx, sh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return Parse(values), nil
}

// Parse разбирает строки листа правил (первая строка - заголовок).
// Выключенные и неполные правила отбрасываются молча.
func Parse(values [][]string) []storage.Rule {
	if len(values) < 2 {
		return []storage.Rule{}
	}

	rules := make([]storage.Rule, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]string, ruleColumns)
		for i := 0; i < len(raw) && i < ruleColumns; i++ {
			row[i] = strings.TrimSpace(raw[i])
		}

		rule := storage.Rule{
			ID:           row[0],
			Enabled:      flag(row[1]),
			Category:     row[2],
			Hashtags:     row[3],
			SourceSheet:  row[4],
			SourceHeader: row[5],
			TargetSheet:  row[6],
			TargetHeader: row[7],
			IsExternal:   flag(row[8]),
			TargetDocID:  row[9],
		}

		if valid(rule) {
			rules = append(rules, rule)
		}
	}
	return rules
}

func valid(r storage.Rule) bool {
	if !r.Enabled {
		return false
	}
	if r.SourceSheet == "" || r.SourceHeader == "" || r.TargetSheet == "" || r.TargetHeader == "" {
		return false
	}
	if r.IsExternal && r.TargetDocID == "" {
		return false
	}
	return true
}

func flag(v string) bool {
	return constants.Affirmative[strings.ToLower(strings.TrimSpace(v))]
}

// ForSheet - правила, читающие из листа sheet
func ForSheet(rules []storage.Rule, sheet string) []storage.Rule {
	var out []storage.Rule
	for _, r := range rules {
		if r.SourceSheet == sheet {
			out = append(out, r)
		}
	}
	return out
}

// ForHeader - правила, читающие колонку header листа sheet
func ForHeader(rules []storage.Rule, sheet, header string) []storage.Rule {
	var out []storage.Rule
	for _, r := range rules {
		if r.SourceSheet == sheet && r.SourceHeader == header {
			out = append(out, r)
		}
	}
	return out
}
