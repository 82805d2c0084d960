package propagate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

var ErrEmptyArticle = errors.New("article is empty")

// AddArticle дописывает артикул в конец каждого листа семейства, где его еще нет.
// Ошибка на одном листе не мешает остальным.
func (s *Service) AddArticle(ctx context.Context, docID, article string) (storage.ArticlesResult, error) {
	const op = "service.propagate.AddArticle"

	article = strings.TrimSpace(article)
	if article == "" {
		return storage.ArticlesResult{}, fmt.Errorf("%s: %w", op, ErrEmptyArticle)
	}

	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.ArticlesResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(slog.String("op", op), slog.String("doc", docID), slog.String("article", article))
	res := storage.ArticlesResult{Status: storage.StatusSuccess}

	for _, name := range constants.ArticleSheets {
		outcome := storage.SheetOutcome{Sheet: name}

		keys, sh, err := s.keyColumn(ctx, doc, name)
		switch {
		case err != nil:
			log.Error("failed to add article", slog.String("sheet", name), slog.String("error", err.Error()))
			outcome.Status, outcome.Detail = storage.StatusFailed, err.Error()
		case contains(keys, article):
			outcome.Status, outcome.Detail = storage.StatusSkipped, "exists"
		default:
			if err := s.store.AppendRow(ctx, sh, []string{article}); err != nil {
				log.Error("failed to add article", slog.String("sheet", name), slog.String("error", err.Error()))
				outcome.Status, outcome.Detail = storage.StatusFailed, err.Error()
			} else {
				outcome.Status, outcome.Detail = storage.StatusSuccess, "added"
			}
		}

		res.Sheets = append(res.Sheets, outcome)
	}

	return res, nil
}

// DeleteArticles удаляет строки с указанными артикулами из листов семейства,
// одним вызовом DeleteRows на лист
func (s *Service) DeleteArticles(ctx context.Context, docID string, articles []string) (storage.ArticlesResult, error) {
	const op = "service.propagate.DeleteArticles"

	wanted := make(map[string]bool, len(articles))
	for _, a := range articles {
		if a = strings.TrimSpace(a); a != "" {
			wanted[a] = true
		}
	}
	if len(wanted) == 0 {
		return storage.ArticlesResult{}, fmt.Errorf("%s: %w", op, ErrEmptyArticle)
	}

	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.ArticlesResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(slog.String("op", op), slog.String("doc", docID))
	res := storage.ArticlesResult{Status: storage.StatusSuccess}

	for _, name := range constants.ArticleSheets {
		outcome := storage.SheetOutcome{Sheet: name}

		keys, sh, err := s.keyColumn(ctx, doc, name)
		if err != nil {
			log.Error("failed to delete articles", slog.String("sheet", name), slog.String("error", err.Error()))
			outcome.Status, outcome.Detail = storage.StatusFailed, err.Error()
			res.Sheets = append(res.Sheets, outcome)
			continue
		}

		var rows []int
		// первая строка - заголовок
		for i := 1; i < len(keys); i++ {
			if wanted[strings.TrimSpace(keys[i])] {
				rows = append(rows, i+1)
			}
		}

		switch {
		case len(rows) == 0:
			outcome.Status, outcome.Detail = storage.StatusSkipped, "no matches"
		default:
			if err := s.store.DeleteRows(ctx, sh, rows); err != nil {
				log.Error("failed to delete articles", slog.String("sheet", name), slog.String("error", err.Error()))
				outcome.Status, outcome.Detail = storage.StatusFailed, err.Error()
			} else {
				outcome.Status = storage.StatusSuccess
				outcome.Detail = fmt.Sprintf("deleted %d rows", len(rows))
				res.TotalDeleted += len(rows)
			}
		}

		res.Sheets = append(res.Sheets, outcome)
	}

	return res, nil
}

func (s *Service) keyColumn(ctx context.Context, doc storage.Document, name string) ([]string, storage.Sheet, error) {
	sh, err := s.store.Worksheet(ctx, doc, name)
	if err != nil {
		return nil, storage.Sheet{}, err
	}
	keys, err := s.store.ReadColumn(ctx, sh, 1)
	if err != nil {
		return nil, storage.Sheet{}, err
	}
	return keys, sh, nil
}

func contains(keys []string, article string) bool {
	for _, k := range keys {
		if strings.TrimSpace(k) == article {
			return true
		}
	}
	return false
}
