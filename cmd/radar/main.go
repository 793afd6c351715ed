package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stake-plus/contest-radar/src/logging"
	"go.uber.org/zap"
)

var (
	verbose      bool
	contractFlag string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Contest gallery pipeline for on-chain proposal contests",
	Long: `radar reads every proposal of a contest contract, normalizes the HTML
bodies into display models and serves them as a sortable gallery.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&contractFlag, "contract", "", "contest contract address (overrides CONTRACT_ADDRESS)")

	fetchCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a listing")
	fetchCmd.Flags().StringVar(&sortFlag, "sort", "desc", "order by likes: desc or asc")

	rootCmd.AddCommand(serveCmd, fetchCmd, contestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
