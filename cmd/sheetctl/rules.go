package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRulesCommand(opts *rootOptions) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Показать действующие правила синхронизации",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := s.context(cmd)
			defer cancel()

			all, err := s.app.Rules.Reload(ctx, opts.DocID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tИСТОЧНИК\tПРИЕМНИК\tДОКУМЕНТ")
			for _, r := range all {
				if sheet != "" && r.SourceSheet != sheet {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s / %s\t%s / %s\t%s\n",
					r.ID, r.SourceSheet, r.SourceHeader, r.TargetSheet, r.TargetHeader, r.TargetDoc(opts.DocID))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", "", "только правила этого листа-источника")
	return cmd
}
