package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/langdata"
)

func newProfilesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List style profiles and supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := langdata.Default()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"profiles":  registry.Profiles(),
					"languages": registry.Languages(),
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PROFILE\tTYPOGRAPHY\tDESCRIPTION")
			for _, p := range registry.Profiles() {
				typo := fmt.Sprintf("%s/%s/%s", p.Typography.Quotes, p.Typography.Dashes, p.Typography.Ellipsis)
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, typo, p.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nLanguages: %s (others use the universal pack)\n",
				strings.Join(registry.Languages(), ", "))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print profiles as JSON")
	return cmd
}
