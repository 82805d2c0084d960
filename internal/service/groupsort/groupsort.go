// Package groupsort перестраивает листы заказа и цен группами
// (по производителю или по ценовой линии) с цветными строками-заголовками.
package groupsort

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

type Mode string

const (
	ByManufacturer Mode = "byManufacturer"
	ByPrice        Mode = "byPrice"
)

var ErrUnknownMode = errors.New("unknown sort mode")

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ByManufacturer, ByPrice:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Style - оформление строк-заголовков групп
func (m Mode) Style() storage.CellStyle {
	bg := constants.ColorManufacturerBG
	if m == ByPrice {
		bg = constants.ColorPriceBG
	}
	return storage.CellStyle{Background: bg, Foreground: constants.ColorGroupFont, Bold: true}
}

type Store interface {
	OpenDocument(ctx context.Context, id string) (storage.Document, error)
	Worksheet(ctx context.Context, doc storage.Document, name string) (storage.Sheet, error)
	ReadAll(ctx context.Context, sh storage.Sheet) ([][]string, error)
	WriteRange(ctx context.Context, sh storage.Sheet, rng storage.Range, rows [][]string) error
	ClearRange(ctx context.Context, sh storage.Sheet, rng storage.Range) error
	ApplyFormatting(ctx context.Context, sh storage.Sheet, style storage.CellStyle, ranges ...storage.Range) error
}

type Service struct {
	log     *slog.Logger
	store   Store
	targets []string
}

func NewService(log *slog.Logger, store Store) *Service {
	return &Service{log: log, store: store, targets: constants.SortTargetSheets}
}

// SortSheets группирует и переписывает листы заказа и цен документа.
// Ошибка на одном листе попадает в список ошибок, остальные листы обрабатываются.
func (s *Service) SortSheets(ctx context.Context, docID string, mode Mode) (storage.SortResult, error) {
	const op = "service.groupsort.SortSheets"

	log := s.log.With(slog.String("op", op), slog.String("doc", docID), slog.String("mode", string(mode)))
	started := time.Now()

	if _, err := ParseMode(string(mode)); err != nil {
		return storage.SortResult{}, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.SortResult{}, fmt.Errorf("%s: %w", op, err)
	}

	names := append(append([]string{}, s.targets...), constants.SheetPrimary, constants.SheetPrice)
	snaps := make(map[string]*storage.Snapshot, len(names))
	loadErrs := make(map[string]error)
	for _, name := range names {
		snap, err := s.load(ctx, doc, name)
		if err != nil {
			log.Warn("failed to load sheet", slog.String("sheet", name), slog.String("error", err.Error()))
			loadErrs[name] = err
			continue
		}
		snaps[name] = snap
	}

	maps := BuildGroupMaps(snaps[constants.SheetPrimary], snaps[constants.SheetPrice], mode)
	log.Info("group maps built",
		slog.Int("id_to_group", len(maps.IDToGroup)),
		slog.Int("id_to_price", len(maps.IDToPrice)),
		slog.Int("idl_to_line", len(maps.IDLToLine)),
	)

	res := storage.SortResult{
		Status: storage.StatusSuccess,
		Mode:   string(mode),
		Sheets: []storage.SheetSortResult{},
		Errors: []string{},
	}

	for _, name := range s.targets {
		snap, ok := snaps[name]
		if !ok {
			if err := loadErrs[name]; err != nil && !errors.Is(err, storage.ErrSheetNotFound) {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", name, err.Error()))
			} else {
				res.Errors = append(res.Errors, fmt.Sprintf("Sheet '%s' not found", name))
			}
			continue
		}

		arr, err := Arrange(snap, maps, mode)
		if err == nil {
			err = s.write(ctx, snap, arr, mode)
		}
		if err != nil {
			log.Error("failed to sort sheet", slog.String("sheet", name), slog.String("error", err.Error()))
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", name, err.Error()))
			continue
		}

		res.Sheets = append(res.Sheets, storage.SheetSortResult{Name: name, Groups: len(arr.Groups), Rows: arr.RowCount()})
		log.Info("sheet sorted", slog.String("sheet", name), slog.Int("groups", len(arr.Groups)))
	}

	res.TotalTimeMS = time.Since(started).Milliseconds()
	log.Info("sort finished",
		slog.Int("sheets", len(res.Sheets)),
		slog.Int("errors", len(res.Errors)),
		slog.Int64("time_ms", res.TotalTimeMS),
	)
	return res, nil
}

func (s *Service) load(ctx context.Context, doc storage.Document, name string) (*storage.Snapshot, error) {
	sh, err := s.store.Worksheet(ctx, doc, name)
	if err != nil {
		return nil, err
	}
	values, err := s.store.ReadAll(ctx, sh)
	if err != nil {
		return nil, err
	}
	return storage.NewSnapshot(sh, values), nil
}

// write - очистка данных под заголовком, одна запись диапазона и одно форматирование
func (s *Service) write(ctx context.Context, snap *storage.Snapshot, arr *Arrangement, mode Mode) error {
	if arr.Width == 0 {
		return nil
	}

	if len(snap.Rows) > 0 {
		if err := s.store.ClearRange(ctx, snap.Sheet, storage.RowsRange(2, len(snap.Rows)+1, arr.Width)); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	rows, headerRows := arr.Layout()
	if len(rows) == 0 {
		return nil
	}

	if err := s.store.WriteRange(ctx, snap.Sheet, storage.RowsRange(2, len(rows)+1, arr.Width), rows); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	ranges := make([]storage.Range, len(headerRows))
	for i, r := range headerRows {
		ranges[i] = storage.RowsRange(r, r, arr.Width)
	}
	if err := s.store.ApplyFormatting(ctx, snap.Sheet, mode.Style(), ranges...); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}
