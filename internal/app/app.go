// Package app собирает хранилище, журнал и сервисы по конфигу.
// Используется и HTTP-сервером, и CLI.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"sheet-sync/internal/config"
	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/service/propagate"
	"sheet-sync/internal/service/rules"
	"sheet-sync/internal/storage/journal"
	"sheet-sync/internal/storage/memory"
	"sheet-sync/internal/storage/xlsx"
)

type Store interface {
	propagate.Store
	groupsort.Store
}

type App struct {
	Store   Store
	Journal *journal.Storage
	Rules   *rules.Cache
	Sync    *propagate.Service
	Sort    *groupsort.Service

	closers []func() error
}

// New открывает хранилище листов и журнал запусков.
// Журнал не обязателен: при пустом драйвере Journal == nil.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	a := &App{}

	switch cfg.Store.Driver {
	case "xlsx":
		a.Store = xlsx.New(cfg.Store.Dir)
	case "memory":
		a.Store = memory.New()
	default:
		return nil, fmt.Errorf("%s: unsupported store driver %q", op, cfg.Store.Driver)
	}

	if cfg.Journal.Driver != "" {
		j, err := journal.New(cfg.Journal)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Journal = j
		a.closers = append(a.closers, j.Close)
	}

	a.Rules = rules.NewCache(rules.NewSheetLoader(a.Store, cfg.Rules.Sheet), cfg.Rules.TTL, log)
	a.Sync = propagate.NewService(log, a.Store, a.Rules)
	a.Sort = groupsort.NewService(log, a.Store)

	return a, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
