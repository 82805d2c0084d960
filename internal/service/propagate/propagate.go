// Package propagate переносит значения между рабочими листами по правилам
// из листа "Правила синхро" и пересчитывает производные поля сертификации.
package propagate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sheet-sync/internal/service/rules"
	"sheet-sync/internal/storage"
)

type Store interface {
	OpenDocument(ctx context.Context, id string) (storage.Document, error)
	Worksheet(ctx context.Context, doc storage.Document, name string) (storage.Sheet, error)
	ReadAll(ctx context.Context, sh storage.Sheet) ([][]string, error)
	ReadColumn(ctx context.Context, sh storage.Sheet, col int) ([]string, error)
	ReadRow(ctx context.Context, sh storage.Sheet, row int) ([]string, error)
	ReadCell(ctx context.Context, sh storage.Sheet, row, col int) (string, error)
	WriteCells(ctx context.Context, sh storage.Sheet, updates []storage.CellUpdate) error
	AppendRow(ctx context.Context, sh storage.Sheet, values []string) error
	DeleteRows(ctx context.Context, sh storage.Sheet, rows []int) error
}

type RuleSource interface {
	EnsureFresh(ctx context.Context, docID string) ([]storage.Rule, error)
}

type Service struct {
	log   *slog.Logger
	store Store
	rules RuleSource
}

func NewService(log *slog.Logger, store Store, rules RuleSource) *Service {
	return &Service{log: log, store: store, rules: rules}
}

// SyncRow переносит значения одной строки (артикула) листа sourceSheet
// во все листы-приемники правил этого листа
func (s *Service) SyncRow(ctx context.Context, docID, article, sourceSheet string) (storage.RowSyncResult, error) {
	const op = "service.propagate.SyncRow"

	log := s.log.With(
		slog.String("op", op),
		slog.String("doc", docID),
		slog.String("sheet", sourceSheet),
		slog.String("article", article),
	)

	all, err := s.rules.EnsureFresh(ctx, docID)
	if err != nil {
		return storage.RowSyncResult{}, fmt.Errorf("%s: %w", op, err)
	}
	matching := rules.ForSheet(all, sourceSheet)
	if len(matching) == 0 {
		return storage.RowSyncResult{Status: storage.StatusSkipped, Reason: "no rules for this sheet", Article: article}, nil
	}

	snap, err := s.snapshot(ctx, docID, sourceSheet)
	if err != nil {
		return storage.RowSyncResult{}, fmt.Errorf("%s: %w", op, err)
	}

	idx, ok := snap.FindKey(article)
	if !ok {
		return storage.RowSyncResult{
				Status:  storage.StatusFailed,
				Reason:  fmt.Sprintf("article '%s' not found in %s", article, sourceSheet),
				Article: article,
			},
			fmt.Errorf("%s: article '%s' in %s: %w", op, article, sourceSheet, storage.ErrRowNotFound)
	}
	row := snap.Row(idx)
	key := row.Key()

	sess := newSession(s.store)
	results := make([]storage.RuleResult, 0, len(matching))
	for _, rule := range matching {
		value, ok := row.Get(rule.SourceHeader)
		if !ok {
			log.Warn("source header missing", slog.String("rule_id", rule.ID), slog.String("header", rule.SourceHeader))
			results = append(results, storage.RuleResult{RuleID: rule.ID, Status: storage.StatusSkipped, Reason: "source header missing"})
			continue
		}
		results = append(results, sess.apply(ctx, docID, rule, key, value))
	}

	for _, f := range sess.flush(ctx) {
		log.Error("failed to write target sheet", slog.String("target", f.sheet), slog.String("error", f.err.Error()))
		markFailed(results, f)
	}

	return storage.RowSyncResult{Status: storage.StatusSuccess, Article: key, Results: results}, nil
}

// SyncFull прогоняет все правила листа sourceSheet по всем его строкам.
// Ошибки отдельных правил копятся в ограниченном списке и не прерывают проход.
func (s *Service) SyncFull(ctx context.Context, docID, sourceSheet string) (storage.FullSyncResult, error) {
	const op = "service.propagate.SyncFull"

	log := s.log.With(slog.String("op", op), slog.String("doc", docID), slog.String("sheet", sourceSheet))

	all, err := s.rules.EnsureFresh(ctx, docID)
	if err != nil {
		return storage.FullSyncResult{}, fmt.Errorf("%s: %w", op, err)
	}
	matching := rules.ForSheet(all, sourceSheet)
	if len(matching) == 0 {
		return storage.FullSyncResult{Status: storage.StatusSkipped, Reason: "no rules for this sheet", Errors: []string{}}, nil
	}

	snap, err := s.snapshot(ctx, docID, sourceSheet)
	if err != nil {
		return storage.FullSyncResult{}, fmt.Errorf("%s: %w", op, err)
	}

	// колонки источника ищем один раз, правила без колонки пропускаются молча
	type boundRule struct {
		rule storage.Rule
		col  int
	}
	bound := make([]boundRule, 0, len(matching))
	for _, rule := range matching {
		col, ok := snap.Index(rule.SourceHeader)
		if !ok {
			log.Warn("source header missing", slog.String("rule_id", rule.ID), slog.String("header", rule.SourceHeader))
			continue
		}
		bound = append(bound, boundRule{rule: rule, col: col})
	}

	res := storage.FullSyncResult{Status: storage.StatusSuccess, RulesCount: len(matching)}
	errs := storage.NewErrorList(storage.MaxReportedErrors)
	sess := newSession(s.store)

	for i := range snap.Rows {
		row := snap.Row(i)
		key := row.Key()
		if key == "" {
			continue
		}

		for _, b := range bound {
			r := sess.apply(ctx, docID, b.rule, key, row.At(b.col))
			switch r.Status {
			case storage.StatusSuccess:
				res.RulesApplied++
			case storage.StatusFailed:
				errs.Add("%s-%s: %s", key, b.rule.ID, r.Reason)
			}
		}
		res.RowsProcessed++
	}

	for _, f := range sess.flush(ctx) {
		log.Error("failed to write target sheet", slog.String("target", f.sheet), slog.String("error", f.err.Error()))
		errs.Add("%s: write of %d cells failed: %s", f.sheet, len(f.writes), f.err.Error())
		res.RulesApplied -= len(f.writes)
	}

	res.Errors = errs.Items()
	res.ErrorsTotal = errs.Total()

	log.Info("full sync finished",
		slog.Int("rows", res.RowsProcessed),
		slog.Int("applied", res.RulesApplied),
		slog.Int("errors", res.ErrorsTotal),
	)
	return res, nil
}

// SyncEvent обрабатывает правку одной ячейки: применяет правила колонки
// и запускает каскад пересчета для листа сертификации
func (s *Service) SyncEvent(ctx context.Context, docID string, edit storage.Edit) (storage.EventSyncResult, error) {
	const op = "service.propagate.SyncEvent"

	log := s.log.With(slog.String("op", op), slog.String("doc", docID), slog.String("sheet", edit.Sheet))

	all, err := s.rules.EnsureFresh(ctx, docID)
	if err != nil {
		return storage.EventSyncResult{}, fmt.Errorf("%s: %w", op, err)
	}

	header := strings.TrimSpace(edit.HeaderName)
	if header == "" {
		header, err = s.readCell(ctx, docID, edit.Sheet, 1, edit.Col)
		if err != nil {
			log.Error("failed to read header cell", slog.Int("col", edit.Col), slog.String("error", err.Error()))
			return storage.EventSyncResult{Status: storage.StatusFailed, Reason: "could not determine header"}, nil
		}
		header = strings.TrimSpace(header)
	}
	if header == "" {
		return storage.EventSyncResult{Status: storage.StatusSkipped, Reason: "could not determine header"}, nil
	}

	res := storage.EventSyncResult{Status: storage.StatusSuccess, Header: header}

	matching := rules.ForHeader(all, edit.Sheet, header)
	res.RulesMatched = len(matching)

	if len(matching) > 0 {
		key := strings.TrimSpace(edit.RowKey)
		if key == "" && edit.Row > 1 {
			key, err = s.readCell(ctx, docID, edit.Sheet, edit.Row, 1)
			if err != nil {
				log.Warn("failed to read row key", slog.Int("row", edit.Row), slog.String("error", err.Error()))
			}
			key = strings.TrimSpace(key)
		}
		res.RowKey = key

		if key == "" {
			res.Status = storage.StatusSkipped
			res.Reason = "no row key provided"
		} else {
			sess := newSession(s.store)
			for _, rule := range matching {
				res.Results = append(res.Results, sess.apply(ctx, docID, rule, key, edit.Value))
			}
			for _, f := range sess.flush(ctx) {
				log.Error("failed to write target sheet", slog.String("target", f.sheet), slog.String("error", f.err.Error()))
				markFailed(res.Results, f)
			}
		}
	}

	res.Cascade = s.cascade(ctx, docID, edit.Sheet, edit.Row, header)

	if len(matching) == 0 && res.Cascade == nil {
		res.Status = storage.StatusSkipped
		res.Reason = "no matching rules"
	}
	return res, nil
}

func (s *Service) snapshot(ctx context.Context, docID, sheet string) (*storage.Snapshot, error) {
	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	sh, err := s.store.Worksheet(ctx, doc, sheet)
	if err != nil {
		return nil, err
	}
	values, err := s.store.ReadAll(ctx, sh)
	if err != nil {
		return nil, err
	}
	return storage.NewSnapshot(sh, values), nil
}

func (s *Service) worksheet(ctx context.Context, docID, sheet string) (storage.Sheet, error) {
	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.Sheet{}, err
	}
	return s.store.Worksheet(ctx, doc, sheet)
}

func (s *Service) readCell(ctx context.Context, docID, sheet string, row, col int) (string, error) {
	sh, err := s.worksheet(ctx, docID, sheet)
	if err != nil {
		return "", err
	}
	return s.store.ReadCell(ctx, sh, row, col)
}

// markFailed переводит в failed результаты правил, чьи записи не дошли до листа
func markFailed(results []storage.RuleResult, f flushFailure) {
	failed := make(map[string]bool, len(f.writes))
	for _, w := range f.writes {
		failed[w.ruleID] = true
	}
	for i := range results {
		if failed[results[i].RuleID] && results[i].Status == storage.StatusSuccess {
			results[i].Status = storage.StatusFailed
			results[i].Reason = "write failed: " + f.err.Error()
		}
	}
}
