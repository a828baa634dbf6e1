package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics for an organization",
}

var tendererStatsCmd = &cobra.Command{
	Use:   "tenderer <organizationId>",
	Short: "Statistics for an organization that publishes tenders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		_, stats, err := a.offlineEngine(cmd)
		if err != nil {
			return err
		}
		out, err := stats.TendererStats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var contractorStatsCmd = &cobra.Command{
	Use:   "contractor <organizationId>",
	Short: "Statistics for an organization that bids on tenders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		_, stats, err := a.offlineEngine(cmd)
		if err != nil {
			return err
		}
		out, err := stats.ContractorStats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	statsCmd.AddCommand(tendererStatsCmd, contractorStatsCmd)
	rootCmd.AddCommand(statsCmd)
}
