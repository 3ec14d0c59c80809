package slack

import (
	"context"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Notifier posts escalation notices for RED snapshots to the tenant's Slack channel
type Notifier struct {
	api      *slack.Client
	registry *model.TenantRegistry
	baseURL  string
}

var _ interfaces.Notifier = &Notifier{}

// Option is a functional option for Notifier configuration
type Option func(*notifierConfig)

type notifierConfig struct {
	apiURL  string
	baseURL string
}

// WithAPIURL overrides the Slack Web API endpoint
func WithAPIURL(url string) Option {
	return func(c *notifierConfig) {
		c.apiURL = url
	}
}

// WithBaseURL sets the frontend URL used to link to the case in the notice
func WithBaseURL(url string) Option {
	return func(c *notifierConfig) {
		c.baseURL = url
	}
}

// New creates a Notifier with the provided bot token
func New(token string, registry *model.TenantRegistry, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if registry == nil {
		return nil, goerr.New("tenant registry is required")
	}

	var cfg notifierConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &Notifier{
		api:      slack.New(token, apiOpts...),
		registry: registry,
		baseURL:  cfg.baseURL,
	}, nil
}

// NotifyEscalation implements interfaces.Notifier. Tenants without a channel are skipped.
func (n *Notifier) NotifyEscalation(ctx context.Context, snapshot *model.RiskSnapshot) error {
	entry, err := n.registry.Get(snapshot.TenantID)
	if err != nil {
		logging.From(ctx).Debug("tenant not in registry, skipping escalation notice", "tenant_id", snapshot.TenantID)
		return nil
	}
	if entry.SlackChannel == "" {
		return nil
	}

	_, ts, err := n.api.PostMessageContext(ctx, entry.SlackChannel,
		slack.MsgOptionText(escalationText(snapshot), false),
		slack.MsgOptionBlocks(escalationBlocks(snapshot, n.baseURL)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post escalation notice",
			goerr.V("tenant_id", snapshot.TenantID),
			goerr.V("case_id", snapshot.CaseID),
			goerr.V("channel", entry.SlackChannel))
	}

	logging.From(ctx).Info("escalation notice posted",
		"tenant_id", snapshot.TenantID,
		"case_id", snapshot.CaseID,
		"snapshot_id", snapshot.ID,
		"ts", ts,
	)
	return nil
}
