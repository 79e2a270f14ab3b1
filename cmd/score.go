package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queencity-ops/leadgen-cli/internal/scorer"
)

var scoreRescore bool

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unscored leads against the intent rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("score"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rules := scorer.DefaultRules()
		rules.HotThreshold = cfg.Scoring.HotThreshold
		rules.WarmThreshold = cfg.Scoring.WarmThreshold

		var sum scorer.Summary
		if scoreRescore {
			sum, err = scorer.Rescore(ctx, st, rules)
		} else {
			sum, err = scorer.ScoreUnscored(ctx, st, rules)
		}
		if err != nil {
			return err
		}

		fmt.Printf("scored %d leads: %d hot, %d warm", sum.Scored, sum.Hot, sum.Warm)
		if sum.Errors > 0 {
			fmt.Printf(", %d errors", sum.Errors)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreRescore, "rescore", false, "re-evaluate every lead, not just unscored ones")
	rootCmd.AddCommand(scoreCmd)
}
