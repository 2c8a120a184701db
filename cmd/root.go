package main

import (
	"fmt"
	"os"

	"github.com/shenikar/ghostnet/internal/config"
	"github.com/shenikar/ghostnet/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logrus.Logger

	rootCmd = &cobra.Command{
		Use:          "ghostnet [command]",
		SilenceUsage: true,
		Short:        "Ghostnet tracks reports of abandoned fishing nets.",
		Long: `Ghostnet tracks reports of abandoned fishing nets from the first report
through recovery or loss and records who performed each transition.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			// Загрузка конфигурации
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// Инициализация логгера
			log = logger.New(cfg.LogLevel)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
}

func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
