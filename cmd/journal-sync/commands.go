package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/consumer"
	"github.com/amurata/GoogleFitNotionIntegration/internal/credential"
	"github.com/amurata/GoogleFitNotionIntegration/internal/github"
	"github.com/amurata/GoogleFitNotionIntegration/internal/httpapi"
	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fit [date]",
		Short: "Sync one day of Google Fit metrics to Notion (default: yesterday)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				date, err := dateOrDefault(args, 0, a.now(), a.location, 1)
				if err != nil {
					return err
				}
				svc, err := a.fitService(ctx)
				if err != nil {
					return err
				}
				res := svc.ProcessDate(ctx, date)
				if res.Err != nil {
					return fmt.Errorf("failed to process %s (%s): %w", date, res.Stage(), res.Err)
				}
				a.logger.Info("Fit sync finished", zap.String("date", date.String()))
				return nil
			})
		},
	}
}

func newFitRangeCmd() *cobra.Command {
	var (
		delay      time.Duration
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "fit-range <start> [end]",
		Short: "Sync Google Fit metrics for a date range, one date at a time",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				start, err := models.ParseDate(args[0])
				if err != nil {
					return err
				}
				start, end, err := dateRange(args, start)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("delay") {
					delay = a.cfg.Batch.Delay
				}
				svc, err := a.fitService(ctx)
				if err != nil {
					return err
				}

				rep := svc.ProcessRange(ctx, start, end, delay)
				if reportPath != "" {
					if err := report.WriteRangeReport(reportPath, rep); err != nil {
						a.logger.Error("Failed to write range report", zap.String("path", reportPath), zap.Error(err))
					} else {
						a.logger.Info("Range report written", zap.String("path", reportPath))
					}
				}
				return a.logReport("fit-range", rep)
			})
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "wait between dates (default: batch.delay)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an xlsx report to this path")
	return cmd
}

func newWeatherCmd() *cobra.Command {
	var (
		delay  time.Duration
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "weather [start] [end]",
		Short: "Sync JMA hourly weather summaries to Notion (default: two days ago)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				start, err := dateOrDefault(args, 0, a.now(), a.location, 2)
				if err != nil {
					return err
				}
				start, end, err := dateRange(args, start)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("delay") {
					delay = a.cfg.Batch.Delay
				}
				svc, err := a.weatherService(!dryRun)
				if err != nil {
					return err
				}
				return a.logReport("weather", svc.ProcessRange(ctx, start, end, delay, !dryRun))
			})
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "wait between dates (default: batch.delay)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "summarize only, do not write to Notion")
	return cmd
}

func newGitHubCmd() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "github <YYYYMMDD|YYYYMMDD-YYYYMMDD>",
		Short: "Write closed issues, merged PRs and commits to existing Notion pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				start, end, err := github.ParseDateArg(args[0])
				if err != nil {
					return err
				}
				svc, err := a.githubService()
				if err != nil {
					return err
				}
				return a.logReport("github", svc.ProcessRange(ctx, start, end, delay))
			})
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "wait between dates")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Notion webhook and weather HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				fit, err := a.fitService(ctx)
				if err != nil {
					return err
				}

				var dedup *httpapi.DeliveryDedup
				if kv, err := a.kv(ctx); err == nil {
					dedup = httpapi.NewDeliveryDedup(kv, a.cfg.Webhook.DedupTTL)
				} else {
					a.logger.Warn("Redis unavailable, webhook de-duplication disabled", zap.Error(err))
				}
				webhook := httpapi.NewWebhookHandler(fit, a.cfg.Webhook.APIKey, a.cfg.Notion.DateProperty, dedup, a.logger)

				notionReady := a.cfg.ValidateNotion() == nil
				weatherSvc, err := a.weatherService(notionReady)
				if err != nil {
					return err
				}
				weather := httpapi.NewWeatherHandler(ctx, weatherSvc, a.cfg.Webhook.MaxWeatherDays, a.cfg.Batch.Delay, notionReady, a.logger)

				srv := httpapi.NewServer(a.cfg.Webhook.Addr, httpapi.NewRouter(webhook, weather, a.logger), a.logger)
				errCh := make(chan error, 1)
				go func() {
					errCh <- srv.Start()
				}()

				select {
				case <-ctx.Done():
				case err = <-errCh:
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Stop(shutdownCtx)
				weather.Wait()
				return err
			})
		},
	}
}

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Consume MQTT trigger messages and sync the requested date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				fit, err := a.fitService(ctx)
				if err != nil {
					return err
				}
				client, err := consumer.NewClient(&a.cfg.MQTT, a.logger)
				if err != nil {
					return err
				}
				defer client.Disconnect()

				trigger := consumer.NewTriggerConsumer(client, a.cfg.MQTT.Topic, a.cfg.MQTT.QoS, fit, a.location, a.logger)
				defer trigger.Stop()
				return trigger.Start(ctx)
			})
		},
	}
}

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Inspect and maintain the stored Google OAuth credential",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "audit",
		Short: "Check the stored credential for missing fields, scopes and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				provider, err := a.credentialProvider(ctx)
				if err != nil {
					return err
				}
				rep, err := provider.Audit(ctx, a.cfg.Credential.MaxAgeDays)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "refresh token:     %v\n", rep.HasRefreshToken)
				fmt.Fprintf(out, "days since update: %d\n", rep.DaysSinceUpdate)
				fmt.Fprintf(out, "expired:           %v\n", rep.Expired)
				fmt.Fprintf(out, "stale:             %v\n", rep.Stale)
				fmt.Fprintf(out, "scopes:            %v\n", rep.Scopes)
				if len(rep.MissingFields) > 0 {
					fmt.Fprintf(out, "missing fields:    %v\n", rep.MissingFields)
				}
				if len(rep.MissingScopes) > 0 {
					fmt.Fprintf(out, "missing scopes:    %v\n", rep.MissingScopes)
				}
				if !rep.OK() {
					return errors.New("credential audit found problems")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token now (the previous credential is backed up)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				provider, err := a.credentialProvider(ctx)
				if err != nil {
					return err
				}
				cred, err := provider.ForceRefresh(ctx)
				if err != nil {
					return err
				}
				a.logger.Info("Credential refreshed", zap.Time("expiry", cred.Expiry))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored credential with an authorized-user JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read credential file: %w", err)
				}
				var cred credential.Credential
				if err := json.Unmarshal(data, &cred); err != nil {
					return fmt.Errorf("failed to parse credential file: %w", err)
				}
				if cred.TokenURI == "" {
					cred.TokenURI = a.cfg.Credential.TokenURI
				}

				provider, err := a.credentialProvider(ctx)
				if err != nil {
					return err
				}
				if err := provider.Import(ctx, &cred); err != nil {
					return err
				}
				a.logger.Info("Credential imported", zap.String("key", a.cfg.Credential.Key))
				return nil
			})
		},
	})

	return cmd
}
