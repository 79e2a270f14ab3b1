package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/dm"
	"github.com/queencity-ops/leadgen-cli/internal/scorer"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		// Facebook needs an interactive browser login; the API surface only
		// drives the headless-friendly sources.
		env, err := initEnv(ctx, nil, cfg.Scoring.AutoScore)
		if err != nil {
			return err
		}
		defer env.Close()

		rules := scorer.DefaultRules()
		rules.HotThreshold = cfg.Scoring.HotThreshold
		rules.WarmThreshold = cfg.Scoring.WarmThreshold

		api := &apiServer{
			store:    env.Store,
			pipeline: env.Pipeline,
			gen:      dm.NewGenerator(cfg.Pricing),
			rules:    rules,
			baseCtx:  ctx,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
