package config

import (
	"github.com/caseguard/riskmatrix/pkg/service/metrics"
	"github.com/urfave/cli/v3"
)

type Metrics struct {
	enabled   bool
	namespace string
}

func (x *Metrics) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Category:    "Metrics",
			Destination: &x.enabled,
			Sources:     cli.EnvVars("RISKMATRIX_METRICS"),
		},
		&cli.StringFlag{
			Name:        "metrics-namespace",
			Usage:       "Namespace of exported metrics",
			Category:    "Metrics",
			Value:       "riskmatrix",
			Destination: &x.namespace,
			Sources:     cli.EnvVars("RISKMATRIX_METRICS_NAMESPACE"),
		},
	}
}

// Configure returns the metrics manager, or nil when metrics are disabled
func (x *Metrics) Configure() *metrics.Manager {
	if !x.enabled {
		return nil
	}
	return metrics.NewManager(metrics.WithNamespace(x.namespace))
}
