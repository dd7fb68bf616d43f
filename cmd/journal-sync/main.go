package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Sync Google Fit, weather and GitHub activity into a Notion journal",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $CONFIG_FILE)")

	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newFitRangeCmd())
	rootCmd.AddCommand(newWeatherCmd())
	rootCmd.AddCommand(newGitHubCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListenCmd())
	rootCmd.AddCommand(newCredentialsCmd())

	return rootCmd
}

// withApp 创建依赖并在 SIGINT/SIGTERM 时取消 ctx
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, a)
}
