package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatroom-server/internal/app"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/log"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "chatroom-server",
		Short: "Multi-room realtime chat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrapLog := log.New("info")

			cfg, source, err := config.Load(bootstrapLog, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", source).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting chatroom server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("run server: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
