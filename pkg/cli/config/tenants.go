package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// TenantFile is the TOML document listing tenants
type TenantFile struct {
	Tenants []TenantConfig `toml:"tenant"`
}

// TenantConfig represents one [[tenant]] entry
type TenantConfig struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	SlackChannel string `toml:"slack_channel"`
}

// Validate checks if the TenantConfig is valid
func (c *TenantConfig) Validate() error {
	if err := types.TenantID(c.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid tenant ID", goerr.V(TenantIDKey, c.ID), goerr.V("cause", err.Error()))
	}
	if c.Name == "" {
		return goerr.Wrap(ErrMissingName, "tenant name is required", goerr.V(TenantIDKey, c.ID))
	}
	return nil
}

// Validate checks every tenant and rejects duplicates
func (f *TenantFile) Validate() error {
	seen := make(map[string]bool)
	for i, t := range f.Tenants {
		if err := t.Validate(); err != nil {
			return goerr.Wrap(err, "invalid tenant", goerr.V(TenantIndexKey, i))
		}
		if seen[t.ID] {
			return goerr.Wrap(ErrDuplicateTenant, "duplicate tenant ID", goerr.V(TenantIDKey, t.ID))
		}
		seen[t.ID] = true
	}
	return nil
}

// ToRegistry converts the file into the domain registry
func (f *TenantFile) ToRegistry() *model.TenantRegistry {
	registry := model.NewTenantRegistry()
	for _, t := range f.Tenants {
		registry.Register(&model.TenantEntry{
			Tenant:       model.Tenant{ID: types.TenantID(t.ID), Name: t.Name},
			SlackChannel: t.SlackChannel,
		})
	}
	return registry
}

// LoadTenantConfiguration loads and validates a tenant TOML file
func LoadTenantConfiguration(path string) (*TenantFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "tenant config not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read tenant config", goerr.V(ConfigPathKey, path))
	}

	var file TenantFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}

// Tenants holds the CLI flag for the tenant registry file
type Tenants struct {
	path string
}

func (x *Tenants) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-config",
			Usage:       "TOML file listing tenants ([[tenant]] id, name, slack_channel). Without it every tenant is admitted.",
			Category:    "Tenants",
			Destination: &x.path,
			Sources:     cli.EnvVars("RISKMATRIX_TENANT_CONFIG"),
		},
	}
}

// IsConfigured reports whether a tenant file was given
func (x *Tenants) IsConfigured() bool {
	return x.path != ""
}

// Configure loads the registry. Returns an empty registry when no file is configured.
func (x *Tenants) Configure() (*model.TenantRegistry, error) {
	if x.path == "" {
		return model.NewTenantRegistry(), nil
	}
	file, err := LoadTenantConfiguration(x.path)
	if err != nil {
		return nil, err
	}
	return file.ToRegistry(), nil
}
