package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tender-matching/internal/search"
	"tender-matching/internal/store"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy every contractor from Postgres into the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		pg, err := a.connectPostgres(ctx, 1)
		if err != nil {
			return err
		}
		es, err := a.connectElasticsearch(ctx, 1)
		if err != nil {
			return err
		}

		contractors, err := store.NewPostgres(pg.DB).ListContractors(ctx)
		if err != nil {
			return err
		}

		index := search.NewContractorIndex(es.Client, a.cfg.Search.Index, a.log)
		if err := index.EnsureIndex(ctx); err != nil {
			return err
		}
		indexed, err := index.IndexAll(ctx, contractors)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d contractors into %s\n", indexed, len(contractors), a.cfg.Search.Index)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
