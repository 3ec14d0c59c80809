package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/scoring"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/utils/async"
	"github.com/caseguard/riskmatrix/pkg/utils/errutil"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// RiskUseCase computes risk snapshots for cases and reads them back
type RiskUseCase struct {
	repo       interfaces.Repository
	tagSource  interfaces.TagSource
	authorizer interfaces.Authorizer
	notifier   interfaces.Notifier
	metrics    interfaces.MetricsRecorder
	encoder    model.Encoder
	dispatcher *async.Dispatcher
	now        func() time.Time
}

// evaluationInput is what Compute needs loaded before scoring
type evaluationInput struct {
	config *model.MatrixConfig // nil means the built-in default
	tags   []model.Tag
}

func (uc *RiskUseCase) authorize(ctx context.Context, actor model.Actor, caseID types.CaseID) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	if err := caseID.Validate(); err != nil {
		return classify(ErrValidationFailed, err, "invalid case id")
	}
	if err := uc.authorizer.RequireReadAccess(ctx, actor.TenantID, actor.ScopeID); err != nil {
		return goerr.Wrap(err, "read access required",
			goerr.V(TenantIDKey, actor.TenantID), goerr.V(CaseIDKey, caseID))
	}
	return nil
}

func (uc *RiskUseCase) load(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) (*evaluationInput, error) {
	if uc.tagSource == nil {
		return nil, goerr.New("tag source is not configured")
	}

	var input evaluationInput
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		active, err := uc.repo.MatrixConfig().GetActive(egCtx, tenantID)
		if err != nil {
			return goerr.Wrap(err, "failed to get active risk matrix config", goerr.V(TenantIDKey, tenantID))
		}
		input.config = active
		return nil
	})

	eg.Go(func() error {
		tags, err := uc.tagSource.ListSeverityTags(egCtx, tenantID, caseID)
		if err != nil {
			if errors.Is(err, interfaces.ErrCaseNotFound) {
				return classify(ErrNotFound, err, "case not found",
					goerr.V(TenantIDKey, tenantID), goerr.V(CaseIDKey, caseID))
			}
			return goerr.Wrap(err, "failed to list severity tags", goerr.V(CaseIDKey, caseID))
		}
		input.tags = tags
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &input, nil
}

// Compute evaluates the case against the tenant's active matrix (or the built-in default)
// and appends a new snapshot. Every call inserts a row, even for unchanged input.
func (uc *RiskUseCase) Compute(ctx context.Context, actor model.Actor, caseID types.CaseID) (*model.RiskSnapshot, error) {
	if err := uc.authorize(ctx, actor, caseID); err != nil {
		return nil, err
	}
	started := time.Now()

	input, err := uc.load(ctx, actor.TenantID, caseID)
	if err != nil {
		return nil, err
	}

	matrix := model.DefaultRiskMatrix()
	version := model.DefaultMatrixVersion
	var configRef *types.ConfigID
	if input.config != nil {
		m, err := input.config.Matrix()
		if err != nil {
			return nil, classify(ErrValidationFailed, err, "active risk matrix config is invalid",
				goerr.V(TenantIDKey, actor.TenantID), goerr.V(ConfigIDKey, input.config.ID))
		}
		matrix = m
		version = input.config.Version
		ref := input.config.ID
		configRef = &ref
	}

	agg := scoring.Aggregate(input.tags, matrix)
	result := scoring.Evaluate(matrix, agg)

	snapshot := &model.RiskSnapshot{
		TenantID:            actor.TenantID,
		CaseID:              caseID,
		ConfigRef:           configRef,
		ConfigVersion:       version,
		RawScore:            result.RawScore,
		ProtectiveReduction: result.ProtectiveReduction,
		FinalScore:          result.FinalScore,
		TrafficLight:        result.TrafficLight,
		Rationale:           result.Rationale,
		HardRuleHits:        result.HardRuleHits,
		DimensionsPresent:   result.DimensionsPresent,
		UnknownIndicators:   result.UnknownIndicators,
		CreatedAt:           uc.now(),
	}

	payload, err := model.EncodeSnapshotPayload(uc.encoder, result.Rationale, result.HardRuleHits, result.DimensionsPresent)
	if err != nil {
		// the snapshot is still written, with placeholders for the failed sections
		errutil.Handle(ctx, goerr.Wrap(err, "storing snapshot with placeholder payload",
			goerr.V(TenantIDKey, actor.TenantID), goerr.V(CaseIDKey, caseID)), "snapshot serialization degraded")
		uc.metrics.IncSerializationDegraded()
		snapshot.Rationale, snapshot.HardRuleHits, snapshot.DimensionsPresent = payload.Decode()
	}
	snapshot.Payload = payload

	created, err := uc.repo.Snapshot().Create(ctx, snapshot)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store risk snapshot",
			goerr.V(TenantIDKey, actor.TenantID), goerr.V(CaseIDKey, caseID))
	}

	uc.metrics.ObserveEvaluation(created.TrafficLight, time.Since(started))
	logging.From(ctx).Info("risk evaluated",
		"tenant_id", created.TenantID,
		"case_id", created.CaseID,
		"snapshot_id", created.ID,
		"config_version", created.ConfigVersion,
		"final_score", created.FinalScore,
		"traffic_light", created.TrafficLight,
		"hard_rule_hits", len(created.HardRuleHits),
		"unknown_indicators", len(created.UnknownIndicators),
	)

	if created.TrafficLight == types.TrafficLightRed && uc.notifier != nil {
		notice := created.Copy()
		uc.dispatcher.Dispatch(ctx, "escalation_notice", func(ctx context.Context) error {
			return uc.notifier.NotifyEscalation(ctx, notice)
		})
	}

	return created, nil
}

// Latest returns the most recent snapshot of the case
func (uc *RiskUseCase) Latest(ctx context.Context, actor model.Actor, caseID types.CaseID) (*model.RiskSnapshot, error) {
	if err := uc.authorize(ctx, actor, caseID); err != nil {
		return nil, err
	}

	latest, err := uc.repo.Snapshot().Latest(ctx, actor.TenantID, caseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, classify(ErrNotFound, err, "no risk snapshot for case",
				goerr.V(TenantIDKey, actor.TenantID), goerr.V(CaseIDKey, caseID))
		}
		return nil, goerr.Wrap(err, "failed to get latest risk snapshot", goerr.V(CaseIDKey, caseID))
	}
	return latest, nil
}

// History returns all snapshots of the case, oldest first. A case without snapshots yields an empty list.
func (uc *RiskUseCase) History(ctx context.Context, actor model.Actor, caseID types.CaseID) ([]*model.RiskSnapshot, error) {
	if err := uc.authorize(ctx, actor, caseID); err != nil {
		return nil, err
	}

	history, err := uc.repo.Snapshot().History(ctx, actor.TenantID, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk snapshots", goerr.V(CaseIDKey, caseID))
	}
	return history, nil
}
