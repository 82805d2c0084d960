package main

import (
	"time"

	"github.com/spf13/cobra"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

func newSyncRowCommand(opts *rootOptions) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "sync-row <article>",
		Short: "Разнести одну строку по листам-приемникам",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := s.context(cmd)
			defer cancel()

			started := time.Now()
			res, err := s.app.Sync.SyncRow(ctx, opts.DocID, args[0], sheet)
			if err != nil {
				s.runs.Record("sync_row", opts.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
				return err
			}
			s.runs.Record("sync_row", opts.DocID, started, res.Status, res)
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", constants.SheetPrimary, "лист-источник")
	return cmd
}

func newSyncFullCommand(opts *rootOptions) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "sync-full",
		Short: "Разнести все строки листа-источника",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := s.context(cmd)
			defer cancel()

			started := time.Now()
			res, err := s.app.Sync.SyncFull(ctx, opts.DocID, sheet)
			if err != nil {
				s.runs.Record("sync_full", opts.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
				return err
			}
			s.runs.Record("sync_full", opts.DocID, started, res.Status, res)
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", constants.SheetPrimary, "лист-источник")
	return cmd
}
