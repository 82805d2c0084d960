package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/app"
	"sheet-sync/internal/config"
)

// rootOptions - общие флаги всех команд
type rootOptions struct {
	ConfigPath string
	DocID      string
	Verbose    bool
	Yes        bool

	// подменяется в тестах
	loadConfig func(path string) (*config.Config, error)
	confirm    func(title, description string) (bool, error)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{
		loadConfig: loadConfig,
		confirm:    confirmPrompt,
	}
	return newRootCommandWith(opts)
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sheetctl",
		Short:         "Синхронизация и сортировка рабочих листов",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("CONFIG_PATH"), "путь к YAML конфигу")
	cmd.PersistentFlags().StringVarP(&opts.DocID, "doc", "d", "", "id документа")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "подробный лог")
	cmd.PersistentFlags().BoolVarP(&opts.Yes, "yes", "y", false, "не спрашивать подтверждение")

	cmd.AddCommand(newSyncRowCommand(opts))
	cmd.AddCommand(newSyncFullCommand(opts))
	cmd.AddCommand(newSortCommand(opts))
	cmd.AddCommand(newSortColumnCommand(opts))
	cmd.AddCommand(newRulesCommand(opts))
	cmd.AddCommand(newRunsCommand(opts))

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = "./config/local.yaml"
	}
	return config.Load(path)
}

func confirmPrompt(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Да").
				Negative("Нет").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return ok, nil
}

// session - открытое приложение на время одной команды
type session struct {
	log  *slog.Logger
	app  *app.App
	runs *runlog.Recorder
	cfg  *config.Config
}

func (o *rootOptions) open(cmd *cobra.Command, needDoc bool) (*session, error) {
	if needDoc && o.DocID == "" {
		return nil, fmt.Errorf("--doc is required")
	}

	cfg, err := o.loadConfig(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	level := charmlog.InfoLevel
	if o.Verbose {
		level = charmlog.DebugLevel
	}
	log := slog.New(charmlog.NewWithOptions(cmd.ErrOrStderr(), charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}))

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, err
	}

	var saver runlog.Saver
	if a.Journal != nil {
		saver = a.Journal
	}

	return &session{log: log, app: a, runs: runlog.New(log, saver), cfg: cfg}, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.log.Warn("failed to close store", slog.String("error", err.Error()))
	}
}

func (s *session) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := s.cfg.HTTPServer.OpTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
