package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Журнал запусков",
	}

	cmd.AddCommand(newRunsListCommand(opts))
	cmd.AddCommand(newRunsPruneCommand(opts))
	return cmd
}

func newRunsListCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Последние запуски по документу",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			if s.app.Journal == nil {
				return fmt.Errorf("journal is not configured")
			}

			ctx, cancel := s.context(cmd)
			defer cancel()

			runs, err := s.app.Journal.ListRuns(ctx, opts.DocID, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tОПЕРАЦИЯ\tСТАТУС\tНАЧАЛО\tДЛИТЕЛЬНОСТЬ")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Operation, r.Status, r.StartedAt.Local().Format(time.DateTime), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "сколько записей показать")
	return cmd
}

func newRunsPruneCommand(opts *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Удалить старые записи журнала",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			s, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			if s.app.Journal == nil {
				return fmt.Errorf("journal is not configured")
			}

			ctx, cancel := s.context(cmd)
			defer cancel()

			n, err := s.app.Journal.Prune(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "возраст записей")
	return cmd
}
