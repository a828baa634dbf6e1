package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var matchLimit int

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates once and print them as JSON",
}

var matchContractorsCmd = &cobra.Command{
	Use:   "contractors <tenderId>",
	Short: "Rank available contractors for a tender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if matchLimit < 0 {
			return fmt.Errorf("--limit must be a non-negative integer")
		}
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		ranker, _, err := a.offlineEngine(cmd)
		if err != nil {
			return err
		}
		out, err := ranker.RankContractorsForTender(cmd.Context(), args[0], matchLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var matchTendersCmd = &cobra.Command{
	Use:   "tenders <contractorId>",
	Short: "Rank open tenders for a contractor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if matchLimit < 0 {
			return fmt.Errorf("--limit must be a non-negative integer")
		}
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		ranker, _, err := a.offlineEngine(cmd)
		if err != nil {
			return err
		}
		out, err := ranker.RankTendersForContractor(cmd.Context(), args[0], matchLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	matchCmd.PersistentFlags().IntVar(&matchLimit, "limit", 0, "maximum results (0 uses matching.default_limit)")
	matchCmd.AddCommand(matchContractorsCmd, matchTendersCmd)
	rootCmd.AddCommand(matchCmd)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
