package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/scheduler"
	"github.com/spigell/linkedintel/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the salary lookup, match and connect HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the linkedintel api", zap.String("version", version))

	svc, err := bootstrap(ctx, logger)
	if err != nil {
		logger.Fatal("starting api", zap.Error(err))
	}
	defer svc.Close()

	interval := svc.config.Cache.SweepInterval
	if interval <= 0 {
		interval = cache.SalaryTTL()[cache.TierNotFound]
	}
	sweeper, err := scheduler.New(interval, logger.Named("scheduler"),
		scheduler.Target{Name: cache.NamespaceSalary, Sweeper: svc.salaryCache},
		scheduler.Target{Name: cache.NamespaceMatch, Sweeper: svc.matchCache},
	)
	if err != nil {
		logger.Fatal("creating cache sweep", zap.Error(err))
	}
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("starting cache sweep", zap.Error(err))
	}
	defer sweeper.Stop()

	srv := server.New(svc.config.Server, svc.lookups, svc.assistant, server.Dataset{
		Entries: len(svc.dataset.Entries),
		Version: svc.dataset.Version,
	}, logger.Named("http"))

	if err := srv.Run(ctx); err != nil {
		logger.Error("api stopped", zap.Error(err))
		return
	}
	logger.Info("api stopped")
}
