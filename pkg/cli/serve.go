package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caseguard/riskmatrix/pkg/cli/config"
	httpctrl "github.com/caseguard/riskmatrix/pkg/controller/http"
	"github.com/caseguard/riskmatrix/pkg/usecase"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/caseguard/riskmatrix/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var tenantCfg config.Tenants
	var slackCfg config.Slack
	var metricsCfg config.Metrics

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKMATRIX_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, tenantCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, metricsCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := tenantCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tenant configuration")
			}

			repo, tagSource, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			ucOpts := []usecase.Option{
				usecase.WithTagSource(tagSource),
			}

			if tenantCfg.IsConfigured() {
				ucOpts = append(ucOpts, usecase.WithAuthorizer(usecase.NewRegistryAuthorizer(registry)))
				logging.Default().Info("Tenant registry enabled", "tenants", len(registry.Tenants()))
			} else {
				logging.Default().Warn("No tenant config, every tenant is admitted (development only)")
			}

			notifier, err := slackCfg.Configure(registry)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack escalation notices enabled", "slack", slackCfg)
			}

			var httpOpts []httpctrl.Options
			if m := metricsCfg.Configure(); m != nil {
				ucOpts = append(ucOpts, usecase.WithMetrics(m))
				httpOpts = append(httpOpts, httpctrl.WithMetrics(m))
				logging.Default().Info("Prometheus metrics enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "backend", repoCfg.Backend())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// pending escalation notices
				uc.Wait()

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
