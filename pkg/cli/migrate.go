package cli

import (
	"context"

	"github.com/caseguard/riskmatrix/pkg/cli/config"
	"github.com/caseguard/riskmatrix/pkg/repository/firestore"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := append(repoCfg.Flags(), &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Print the migration plan without applying it",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore indexes used by risk queries",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if repoCfg.Backend() != "firestore" {
				return goerr.New("migrate requires the firestore backend", goerr.V("backend", repoCfg.Backend()))
			}
			if repoCfg.ProjectID() == "" {
				return goerr.New("firestore-project-id is required")
			}

			logger := logging.From(ctx)
			indexes := firestore.Indexes()

			client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if !dryRun {
				if err := client.Migrate(ctx, indexes); err != nil {
					return goerr.Wrap(err, "failed to apply index migration")
				}
				logger.Info("Index migration applied", "collections", len(indexes.Collections))
				return nil
			}

			plan, err := client.GetMigrationPlan(ctx, indexes)
			if err != nil {
				return goerr.Wrap(err, "failed to build index migration plan")
			}
			if len(plan.Steps) == 0 {
				logger.Info("Indexes are up to date")
				return nil
			}
			for _, step := range plan.Steps {
				logger.Info("Planned index change",
					"collection", step.Collection,
					"operation", step.Operation,
					"description", step.Description,
					"destructive", step.Destructive)
			}
			return nil
		},
	}
}
