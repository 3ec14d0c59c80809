package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// maxVersionLength bounds the free-form version label
const maxVersionLength = 128

// MatrixUseCase manages the versioned risk matrix configurations of a tenant
type MatrixUseCase struct {
	repo       interfaces.Repository
	authorizer interfaces.Authorizer
	metrics    interfaces.MetricsRecorder
}

func NewMatrixUseCase(repo interfaces.Repository, authorizer interfaces.Authorizer, metrics interfaces.MetricsRecorder) *MatrixUseCase {
	if authorizer == nil {
		authorizer = &AllowAllAuthorizer{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &MatrixUseCase{
		repo:       repo,
		authorizer: authorizer,
		metrics:    metrics,
	}
}

func (uc *MatrixUseCase) requireAdmin(ctx context.Context, actor model.Actor) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	if err := uc.authorizer.RequireAdminAccess(ctx, actor.TenantID); err != nil {
		return goerr.Wrap(err, "admin access required", goerr.V(TenantIDKey, actor.TenantID))
	}
	return nil
}

func (uc *MatrixUseCase) requireRead(ctx context.Context, actor model.Actor) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	if err := uc.authorizer.RequireReadAccess(ctx, actor.TenantID, actor.ScopeID); err != nil {
		return goerr.Wrap(err, "read access required", goerr.V(TenantIDKey, actor.TenantID))
	}
	return nil
}

// Create stores a new configuration version. It is never active on creation.
// The document is validated now so that a broken matrix cannot be activated later.
func (uc *MatrixUseCase) Create(ctx context.Context, actor model.Actor, version string, document []byte) (*model.MatrixConfig, error) {
	if err := uc.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	version = strings.TrimSpace(version)
	if version == "" {
		return nil, goerr.Wrap(ErrValidationFailed, "version is required")
	}
	if len(version) > maxVersionLength {
		return nil, goerr.Wrap(ErrValidationFailed, "version is too long", goerr.V(VersionKey, version))
	}
	if version == model.DefaultMatrixVersion {
		return nil, goerr.Wrap(ErrValidationFailed, "version is reserved", goerr.V(VersionKey, version))
	}

	if _, err := model.ParseRiskMatrix(document); err != nil {
		return nil, classify(ErrValidationFailed, err, "invalid risk matrix", goerr.V(VersionKey, version))
	}

	created, err := uc.repo.MatrixConfig().Create(ctx, &model.MatrixConfig{
		TenantID: actor.TenantID,
		Version:  version,
		Document: string(document),
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrConflict) {
			return nil, classify(ErrValidationFailed, err, "version already exists", goerr.V(VersionKey, version))
		}
		return nil, goerr.Wrap(err, "failed to create risk matrix config",
			goerr.V(TenantIDKey, actor.TenantID), goerr.V(VersionKey, version))
	}

	logging.From(ctx).Info("risk matrix config created",
		"tenant_id", created.TenantID,
		"config_id", created.ID,
		"version", created.Version,
	)

	return created, nil
}

// Activate makes the configuration the only active one of the tenant
func (uc *MatrixUseCase) Activate(ctx context.Context, actor model.Actor, configID types.ConfigID) (*model.MatrixConfig, error) {
	if err := uc.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := configID.Validate(); err != nil {
		return nil, classify(ErrNotFound, err, "risk matrix config not found", goerr.V(ConfigIDKey, configID))
	}

	activated, err := uc.repo.MatrixConfig().Activate(ctx, actor.TenantID, configID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, classify(ErrNotFound, err, "risk matrix config not found",
				goerr.V(TenantIDKey, actor.TenantID), goerr.V(ConfigIDKey, configID))
		}
		return nil, goerr.Wrap(err, "failed to activate risk matrix config",
			goerr.V(TenantIDKey, actor.TenantID), goerr.V(ConfigIDKey, configID))
	}

	uc.metrics.IncActivation(actor.TenantID)
	logging.From(ctx).Info("risk matrix config activated",
		"tenant_id", activated.TenantID,
		"config_id", activated.ID,
		"version", activated.Version,
	)

	return activated, nil
}

// GetActive returns the active configuration, or nil if the tenant has none
func (uc *MatrixUseCase) GetActive(ctx context.Context, actor model.Actor) (*model.MatrixConfig, error) {
	if err := uc.requireRead(ctx, actor); err != nil {
		return nil, err
	}

	active, err := uc.repo.MatrixConfig().GetActive(ctx, actor.TenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get active risk matrix config", goerr.V(TenantIDKey, actor.TenantID))
	}
	return active, nil
}

// History returns all configurations of the tenant, newest first
func (uc *MatrixUseCase) History(ctx context.Context, actor model.Actor) ([]*model.MatrixConfig, error) {
	if err := uc.requireRead(ctx, actor); err != nil {
		return nil, err
	}

	configs, err := uc.repo.MatrixConfig().List(ctx, actor.TenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk matrix configs", goerr.V(TenantIDKey, actor.TenantID))
	}
	return configs, nil
}

func (uc *MatrixUseCase) Get(ctx context.Context, actor model.Actor, configID types.ConfigID) (*model.MatrixConfig, error) {
	if err := uc.requireRead(ctx, actor); err != nil {
		return nil, err
	}
	if err := configID.Validate(); err != nil {
		return nil, classify(ErrNotFound, err, "risk matrix config not found", goerr.V(ConfigIDKey, configID))
	}

	cfg, err := uc.repo.MatrixConfig().Get(ctx, actor.TenantID, configID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, classify(ErrNotFound, err, "risk matrix config not found",
				goerr.V(TenantIDKey, actor.TenantID), goerr.V(ConfigIDKey, configID))
		}
		return nil, goerr.Wrap(err, "failed to get risk matrix config", goerr.V(ConfigIDKey, configID))
	}
	return cfg, nil
}

// Default returns the built-in matrix used when a tenant has no active configuration
func (uc *MatrixUseCase) Default() *model.RiskMatrix {
	return model.DefaultRiskMatrix()
}
