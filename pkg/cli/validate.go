package cli

import (
	"context"
	"os"

	"github.com/caseguard/riskmatrix/pkg/cli/config"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var matrixPath string
	var tenantPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a risk matrix document and the tenant configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "matrix",
				Usage:       "Path to a risk matrix JSON document",
				Sources:     cli.EnvVars("RISKMATRIX_MATRIX"),
				Destination: &matrixPath,
			},
			&cli.StringFlag{
				Name:        "tenant-config",
				Usage:       "Path to tenant configuration TOML file",
				Sources:     cli.EnvVars("RISKMATRIX_TENANT_CONFIG"),
				Destination: &tenantPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if matrixPath == "" && tenantPath == "" {
				return goerr.New("nothing to validate, specify --matrix and/or --tenant-config")
			}
			return runValidate(ctx, matrixPath, tenantPath)
		},
	}
}

func runValidate(ctx context.Context, matrixPath, tenantPath string) error {
	logger := logging.From(ctx)

	if matrixPath != "" {
		m, err := loadMatrixFile(matrixPath)
		if err != nil {
			return err
		}
		logger.Info("Risk matrix is valid",
			"path", matrixPath,
			"indicators", len(m.Indicators),
			"dimensions", len(m.DimensionMultiplier))
	}

	if tenantPath != "" {
		tenants, err := config.LoadTenantConfiguration(tenantPath)
		if err != nil {
			return goerr.Wrap(err, "tenant configuration is invalid", goerr.V(config.ConfigPathKey, tenantPath))
		}
		logger.Info("Tenant configuration is valid",
			"path", tenantPath,
			"tenants", len(tenants.Tenants))
	}

	return nil
}

// loadMatrixFile reads and validates a risk matrix document
func loadMatrixFile(path string) (*model.RiskMatrix, error) {
	// #nosec G304 -- path is given by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read risk matrix", goerr.V(config.ConfigPathKey, path))
	}

	m, err := model.ParseRiskMatrix(data)
	if err != nil {
		return nil, goerr.Wrap(err, "risk matrix is invalid", goerr.V(config.ConfigPathKey, path))
	}
	return m, nil
}
