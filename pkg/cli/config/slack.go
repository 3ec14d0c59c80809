package config

import (
	"log/slog"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	baseURL  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for RED escalation notices)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("RISKMATRIX_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Frontend base URL linked from escalation notices",
			Category:    "Slack",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("RISKMATRIX_BASE_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("base-url", x.baseURL),
	)
}

// IsConfigured checks if a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the escalation notifier. Returns nil when Slack is not configured.
func (x *Slack) Configure(registry *model.TenantRegistry) (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	notifier, err := slack.New(x.botToken, registry, slack.WithBaseURL(x.baseURL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack notifier")
	}
	return notifier, nil
}
