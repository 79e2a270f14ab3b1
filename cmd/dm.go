package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/queencity-ops/leadgen-cli/internal/dm"
)

var (
	dmMinScore int
	dmLimit    int
	dmJSON     bool
)

var dmCmd = &cobra.Command{
	Use:   "dm",
	Short: "Generate outreach scripts for scored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("dm"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListByMinScore(ctx, dmMinScore, dmLimit)
		if err != nil {
			return err
		}

		gen := dm.NewGenerator(cfg.Pricing)

		if dmJSON {
			scripts := make([]dm.Script, 0, len(leads))
			for _, lead := range leads {
				scripts = append(scripts, gen.Generate(lead))
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scripts)
		}

		for _, lead := range leads {
			script := gen.Generate(lead)
			fmt.Printf("── %s  [%s, score %d, %s]\n", lead.Name, script.LeadType, lead.Score, lead.Source)
			if lead.URL != "" {
				fmt.Printf("   %s\n", lead.URL)
			}
			fmt.Printf("\nOPENING:\n%s\n\nFOLLOWUP:\n%s\n\n", script.Opening, script.Followup)
		}
		fmt.Printf("%d leads with score >= %d\n", len(leads), dmMinScore)
		return nil
	},
}

func init() {
	dmCmd.Flags().IntVar(&dmMinScore, "min-score", 70, "minimum lead score")
	dmCmd.Flags().IntVar(&dmLimit, "limit", 25, "maximum leads to output")
	dmCmd.Flags().BoolVar(&dmJSON, "json", false, "emit scripts as JSON")
	rootCmd.AddCommand(dmCmd)
}
