package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/storage"
)

func newSortCommand(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Перестроить листы заказа группами",
		Long: `Перестраивает листы заказа и прайса группами с цветными строками-заголовками.
Данные листов переписываются целиком, поэтому перед запуском нужно подтверждение.

Пример:
  sheetctl sort --doc mt-main --mode byPrice
  sheetctl sort --doc mt-main --mode byManufacturer --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := groupsort.ParseMode(mode)
			if err != nil {
				return err
			}

			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			if !opts.Yes {
				ok, err := opts.confirm(
					fmt.Sprintf("Перестроить листы документа %s?", opts.DocID),
					"Будут переписаны: "+strings.Join(constants.SortTargetSheets, ", "),
				)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}

			ctx, cancel := s.context(cmd)
			defer cancel()

			started := time.Now()
			res, err := s.app.Sort.SortSheets(ctx, opts.DocID, m)
			if err != nil {
				s.runs.Record("sort_sheets", opts.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
				return err
			}
			s.runs.Record("sort_sheets", opts.DocID, started, res.Status, res)
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(groupsort.ByManufacturer), "byManufacturer или byPrice")
	return cmd
}

func newSortColumnCommand(opts *rootOptions) *cobra.Command {
	var (
		sheet string
		desc  bool
	)

	cmd := &cobra.Command{
		Use:   "sort-column <column>",
		Short: "Отсортировать лист по одной колонке",
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
			res, err := s.app.Sort.SortByHeader(ctx, opts.DocID, sheet, args[0], !desc)
			if err != nil {
				s.runs.Record("sort_column", opts.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
				return err
			}
			s.runs.Record("sort_column", opts.DocID, started, res.Status, res)
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", constants.SheetPrimary, "лист")
	cmd.Flags().BoolVar(&desc, "desc", false, "по убыванию")
	return cmd
}
