package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lead counts and score distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("stats"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.CountBySource(ctx)
		if err != nil {
			return err
		}
		stats, err := st.ScoreStats(ctx, cfg.Scoring.HotThreshold, cfg.Scoring.WarmThreshold)
		if err != nil {
			return err
		}

		sources := make([]string, 0, len(counts))
		for src := range counts {
			sources = append(sources, src)
		}
		sort.Strings(sources)

		fmt.Println("leads by source:")
		for _, src := range sources {
			fmt.Printf("  %-32s %d\n", src, counts[src])
		}
		fmt.Printf("\ntotal %d | scored %d | hot %d | warm %d | avg score %.1f\n",
			stats.Total, stats.Scored, stats.Hot, stats.Warm, stats.AvgScore)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
