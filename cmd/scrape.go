package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/source"
)

var (
	scrapeSources []string
	scrapeTargets string
	scrapeScore   bool
	fbEmail       string
	fbPassword    string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run lead discovery across the configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if scrapeTargets != "" {
			if err := config.LoadTargets(scrapeTargets, &cfg.Sources); err != nil {
				return err
			}
		}
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		creds := facebookCredentials()
		env, err := initEnv(ctx, creds, scrapeScore || cfg.Scoring.AutoScore)
		if err != nil {
			return err
		}
		defer env.Close()

		job, err := env.Pipeline.Run(ctx, scrapeSources)
		if err != nil {
			return err
		}

		for src, n := range job.Counts {
			fmt.Printf("%-14s %d new\n", src, n)
		}
		fmt.Printf("total: %d new leads (job %s, %s)\n", job.TotalNew(), job.ID, job.Status)
		if job.Status == model.JobFailed {
			return fmt.Errorf("all sources failed: %s", job.Error)
		}
		return nil
	},
}

// facebookCredentials reads the login pair from flags, falling back to env
// vars so the password stays out of shell history.
func facebookCredentials() *source.Credentials {
	email := fbEmail
	if email == "" {
		email = os.Getenv("LEADGEN_FB_EMAIL")
	}
	password := fbPassword
	if password == "" {
		password = os.Getenv("LEADGEN_FB_PASSWORD")
	}
	if email == "" || password == "" {
		zap.L().Debug("facebook credentials not provided")
		return nil
	}
	return &source.Credentials{Email: email, Password: password}
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeSources, "source", nil,
		"sources to run (reddit, classifieds, websearch, facebook); default all")
	scrapeCmd.Flags().StringVar(&scrapeTargets, "targets", "", "YAML file of target lists to merge over config")
	scrapeCmd.Flags().BoolVar(&scrapeScore, "score", false, "score new leads after the scrape")
	scrapeCmd.Flags().StringVar(&fbEmail, "fb-email", "", "facebook login email (or LEADGEN_FB_EMAIL)")
	scrapeCmd.Flags().StringVar(&fbPassword, "fb-password", "", "facebook login password (or LEADGEN_FB_PASSWORD)")
	rootCmd.AddCommand(scrapeCmd)
}
