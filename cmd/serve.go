package cmd

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/statscard/statscard/internal/config"
	"github.com/statscard/statscard/internal/gateway"
	"github.com/statscard/statscard/internal/server"
	"github.com/statscard/statscard/internal/sl"
	"github.com/statscard/statscard/internal/usecase"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the stats card HTTP server",
	Long: `Starts the HTTP server that exposes the card endpoints:
/api/stats for user contribution cards, /api/pin for repository cards
and /api/status/pat-info for credential quota inspection.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.MustLoad()

		log := setupLogger(cfg.Env)
		log.Info("starting statscard",
			slog.String("env", cfg.Env),
			slog.Int("tokens", len(cfg.Tokens)),
		)

		if len(cfg.Tokens) == 0 {
			log.Warn("no PAT_* tokens configured, every lookup will fail until one is added")
		}

		// Inject dependencies and wire the HTTP surface.
		githubGateway := gateway.NewGitHubGateway(cfg.Tokens, log,
			gateway.WithTimeout(cfg.FetchTimeout),
		)
		service := usecase.NewStatsService(githubGateway, log)
		patChecker := gateway.NewPATChecker(cfg.Tokens, log)

		router := server.NewRouter(server.NewHandler(log, service, patChecker, cfg.CacheSeconds))

		srv := &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		log.Info("listening", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			log.Error("http server stopped", sl.Err(err))
			os.Exit(1)
		}
	},
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envLocal:
		fallthrough
	default:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
