package propagate

import (
	"context"
	"errors"
	"fmt"

	"sheet-sync/internal/storage"
)

// target - лист-приемник, прочитанный один раз за операцию, и накопленные записи в него
type target struct {
	sheet   storage.Sheet
	snap    *storage.Snapshot
	err     error
	pending []pendingWrite
}

type pendingWrite struct {
	update  storage.CellUpdate
	ruleID  string
	article string
}

// flushFailure - запись в лист, которая не прошла целиком
type flushFailure struct {
	sheet  string
	writes []pendingWrite
	err    error
}

// session кэширует листы-приемники и копит записи, чтобы отправить
// по одному WriteCells на каждый лист в конце операции
type session struct {
	store   Store
	docs    map[string]storage.Document
	targets map[string]*target
	order   []string
}

func newSession(store Store) *session {
	return &session{
		store:   store,
		docs:    make(map[string]storage.Document),
		targets: make(map[string]*target),
	}
}

func (s *session) document(ctx context.Context, docID string) (storage.Document, error) {
	if doc, ok := s.docs[docID]; ok {
		return doc, nil
	}
	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.Document{}, err
	}
	s.docs[docID] = doc
	return doc, nil
}

// target возвращает снимок листа; ошибка открытия тоже запоминается,
// чтобы отсутствующий лист не перечитывался на каждой строке
func (s *session) target(ctx context.Context, docID, sheet string) *target {
	key := docID + "/" + sheet
	if t, ok := s.targets[key]; ok {
		return t
	}

	t := &target{}
	s.targets[key] = t
	s.order = append(s.order, key)

	doc, err := s.document(ctx, docID)
	if err != nil {
		t.err = err
		return t
	}
	t.sheet, err = s.store.Worksheet(ctx, doc, sheet)
	if err != nil {
		t.err = err
		return t
	}
	values, err := s.store.ReadAll(ctx, t.sheet)
	if err != nil {
		t.err = err
		return t
	}
	t.snap = storage.NewSnapshot(t.sheet, values)
	return t
}

// apply применяет правило к строке с ключом key. Запись только ставится в очередь.
func (s *session) apply(ctx context.Context, docID string, rule storage.Rule, key, value string) storage.RuleResult {
	t := s.target(ctx, rule.TargetDoc(docID), rule.TargetSheet)
	if t.err != nil {
		reason := "target sheet not found"
		if !errors.Is(t.err, storage.ErrSheetNotFound) && !errors.Is(t.err, storage.ErrDocumentNotFound) {
			reason = t.err.Error()
		}
		return storage.RuleResult{RuleID: rule.ID, Status: storage.StatusFailed, Reason: reason}
	}

	col, ok := t.snap.Index(rule.TargetHeader)
	if !ok {
		return storage.RuleResult{
			RuleID: rule.ID,
			Status: storage.StatusFailed,
			Reason: fmt.Sprintf("target header '%s' not found", rule.TargetHeader),
		}
	}

	row, ok := t.snap.FindKey(key)
	if !ok {
		return storage.RuleResult{RuleID: rule.ID, Status: storage.StatusSkipped, Reason: "key not found in target"}
	}

	if t.snap.Rows[row][col] == value {
		return storage.RuleResult{RuleID: rule.ID, Status: storage.StatusSuccess, Reason: "unchanged"}
	}

	t.snap.Rows[row][col] = value
	t.pending = append(t.pending, pendingWrite{
		// +2: строка заголовков и нумерация с 1
		update:  storage.CellUpdate{Row: row + 2, Col: col + 1, Value: value},
		ruleID:  rule.ID,
		article: key,
	})
	return storage.RuleResult{RuleID: rule.ID, Status: storage.StatusSuccess}
}

// flush отправляет накопленные записи, по одному вызову на лист
func (s *session) flush(ctx context.Context) []flushFailure {
	var failures []flushFailure
	for _, key := range s.order {
		t := s.targets[key]
		if len(t.pending) == 0 {
			continue
		}

		updates := make([]storage.CellUpdate, len(t.pending))
		for i, w := range t.pending {
			updates[i] = w.update
		}
		if err := s.store.WriteCells(ctx, t.sheet, updates); err != nil {
			failures = append(failures, flushFailure{sheet: t.sheet.String(), writes: t.pending, err: err})
		}
		t.pending = nil
	}
	return failures
}
