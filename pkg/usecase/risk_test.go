package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/scoring"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/repository/memory"
	"github.com/caseguard/riskmatrix/pkg/usecase"
	"github.com/caseguard/riskmatrix/pkg/utils/async"
	"github.com/m-mizutani/gt"
)

const testCaseID types.CaseID = "case-1"

type recordingMetrics struct {
	mu          sync.Mutex
	lights      []types.TrafficLight
	activated   int
	degradation int
}

func (m *recordingMetrics) ObserveEvaluation(light types.TrafficLight, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lights = append(m.lights, light)
}

func (m *recordingMetrics) IncActivation(_ types.TenantID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activated++
}

func (m *recordingMetrics) IncSerializationDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degradation++
}

func (m *recordingMetrics) activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activated
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []*model.RiskSnapshot
}

func (n *recordingNotifier) NotifyEscalation(ctx context.Context, snapshot *model.RiskSnapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, snapshot)
	return nil
}

func newRiskUseCases(t *testing.T, tags map[types.CaseID][]model.Tag, opts ...usecase.Option) (*usecase.UseCases, *memory.TagSource) {
	t.Helper()
	src := memory.NewTagSource()
	for caseID, list := range tags {
		src.PutTags(testTenantID, caseID, list)
	}
	opts = append([]usecase.Option{usecase.WithTagSource(src)}, opts...)
	return usecase.New(memory.New(), opts...), src
}

func TestRiskUseCase_Compute(t *testing.T) {
	t.Run("default matrix end to end", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {{IndicatorID: "injury_severe", Severity: 2, Comment: "hematoma"}},
		})
		ctx := context.Background()

		snapshot, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()

		gt.Value(t, snapshot.ConfigRef).Nil()
		gt.Value(t, snapshot.ConfigVersion).Equal(model.DefaultMatrixVersion)
		gt.Value(t, snapshot.RawScore).Equal(9.6)
		gt.Value(t, snapshot.FinalScore).Equal(9.6)
		gt.Value(t, snapshot.ProtectiveReduction).Equal(0.0)
		gt.Value(t, snapshot.TrafficLight).Equal(types.TrafficLightRed)
		gt.Value(t, snapshot.HardRuleHits).Equal([]model.HardRuleHit{
			{IndicatorID: "injury_severe", Label: model.LabelInjurySevere},
		})
		gt.Value(t, snapshot.DimensionsPresent).Equal([]string{model.DimensionPhysical})
		gt.Value(t, snapshot.Rationale).Equal([]string{scoring.RationaleHardRule, scoring.RationaleDisclaimer})

		rationale, hits, dims := snapshot.Payload.Decode()
		gt.Value(t, rationale).Equal(snapshot.Rationale)
		gt.Value(t, hits).Equal(snapshot.HardRuleHits)
		gt.Value(t, dims).Equal(snapshot.DimensionsPresent)

		latest, err := uc.Risk.Latest(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()
		gt.Value(t, latest.ID).Equal(snapshot.ID)
	})

	t.Run("uses the active config", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {{IndicatorID: "neglect_basic_needs", Severity: 2}},
		})
		ctx := context.Background()

		before, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()

		// lower thresholds so the same tags become RED
		cfg, err := uc.Matrix.Create(ctx, testActor, "strict", matrixDocument(t, func(m *model.RiskMatrix) {
			m.GreenMax = 0.5
			m.YellowMax = 1
		}))
		gt.NoError(t, err).Required()
		_, err = uc.Matrix.Activate(ctx, testActor, cfg.ID)
		gt.NoError(t, err).Required()

		after, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()

		gt.Value(t, *after.ConfigRef).Equal(cfg.ID)
		gt.Value(t, after.ConfigVersion).Equal("strict")
		gt.Value(t, after.FinalScore).Equal(before.FinalScore)
		gt.Value(t, after.TrafficLight).Equal(types.TrafficLightRed)
		gt.Value(t, before.TrafficLight).Equal(types.TrafficLightYellow)
	})

	t.Run("identical computations append two snapshots", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {{IndicatorID: "emotional_abuse", Severity: 1}},
		})
		ctx := context.Background()

		first, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()
		second, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()

		gt.Value(t, first.ID).NotEqual(second.ID)
		gt.Value(t, first.FinalScore).Equal(second.FinalScore)
		gt.Value(t, first.TrafficLight).Equal(second.TrafficLight)

		history, err := uc.Risk.History(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(2)
		gt.Value(t, history[0].ID).Equal(first.ID)
		gt.Value(t, history[1].ID).Equal(second.ID)
	})

	t.Run("case without tags is GREEN", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{testCaseID: nil})

		snapshot, err := uc.Risk.Compute(context.Background(), testActor, testCaseID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.FinalScore).Equal(0.0)
		gt.Value(t, snapshot.TrafficLight).Equal(types.TrafficLightGreen)
	})

	t.Run("unknown indicators are reported", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {
				{IndicatorID: "retired_indicator", Severity: 3},
				{IndicatorID: "another_retired", Severity: 1},
			},
		})

		snapshot, err := uc.Risk.Compute(context.Background(), testActor, testCaseID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.UnknownIndicators).Equal([]string{"another_retired", "retired_indicator"})
		gt.Value(t, snapshot.FinalScore).Equal(0.0)
		gt.String(t, snapshot.Rationale[len(snapshot.Rationale)-1]).Contains("another_retired, retired_indicator")
	})

	t.Run("unknown case is not found and writes nothing", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, nil)
		ctx := context.Background()

		_, err := uc.Risk.Compute(ctx, testActor, "missing")
		gt.Error(t, err).Is(usecase.ErrNotFound)

		history, err := uc.Risk.History(ctx, testActor, "missing")
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(0)
	})

	t.Run("invalid case id", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, nil)
		_, err := uc.Risk.Compute(context.Background(), testActor, "a/b")
		gt.Error(t, err).Is(usecase.ErrValidationFailed)
	})

	t.Run("access denied", func(t *testing.T) {
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{testCaseID: nil},
			usecase.WithAuthorizer(denyAuthorizer{}))
		ctx := context.Background()

		_, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
		_, err = uc.Risk.Latest(ctx, testActor, testCaseID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
		_, err = uc.Risk.History(ctx, testActor, testCaseID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("serialization failure stores placeholders", func(t *testing.T) {
		metrics := &recordingMetrics{}
		failing := func(v any) ([]byte, error) {
			return nil, errors.New("encoder broken")
		}
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {{IndicatorID: "injury_severe", Severity: 3}},
		}, usecase.WithPayloadEncoder(failing), usecase.WithMetrics(metrics))
		ctx := context.Background()

		snapshot, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()

		gt.Value(t, snapshot.TrafficLight).Equal(types.TrafficLightRed)
		gt.Value(t, snapshot.Rationale).Equal([]string{model.SerializationFailedMarker})
		gt.Value(t, snapshot.DimensionsPresent).Equal([]string{model.SerializationFailedMarker})
		gt.Value(t, snapshot.Payload.Rationale).Equal(`["` + model.SerializationFailedMarker + `"]`)
		gt.Value(t, metrics.degradation).Equal(1)

		history, err := uc.Risk.History(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(1)
	})

	t.Run("stored config that no longer parses fails validation", func(t *testing.T) {
		repo := memory.New()
		src := memory.NewTagSource()
		src.PutTags(testTenantID, testCaseID, nil)
		uc := usecase.New(repo, usecase.WithTagSource(src))
		ctx := context.Background()

		// bypass the use case to plant a broken document
		broken, err := repo.MatrixConfig().Create(ctx, &model.MatrixConfig{
			TenantID: testTenantID,
			Version:  "broken",
			Document: `{"greenMax": 10, "yellowMax": 1}`,
		})
		gt.NoError(t, err).Required()
		_, err = repo.MatrixConfig().Activate(ctx, testTenantID, broken.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.Error(t, err).Is(usecase.ErrValidationFailed)
	})

	t.Run("RED result notifies and records metrics", func(t *testing.T) {
		metrics := &recordingMetrics{}
		notifier := &recordingNotifier{}
		dispatcher := async.New()
		uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{
			testCaseID: {{IndicatorID: "sexual_abuse_indication", Severity: 2}},
			"case-2":   {{IndicatorID: "emotional_abuse", Severity: 1}},
		}, usecase.WithNotifier(notifier), usecase.WithMetrics(metrics), usecase.WithDispatcher(dispatcher))
		ctx := context.Background()

		red, err := uc.Risk.Compute(ctx, testActor, testCaseID)
		gt.NoError(t, err).Required()
		_, err = uc.Risk.Compute(ctx, testActor, "case-2")
		gt.NoError(t, err).Required()
		dispatcher.Wait()

		gt.Array(t, notifier.snapshots).Length(1)
		gt.Value(t, notifier.snapshots[0].ID).Equal(red.ID)
		gt.Value(t, metrics.lights).Equal([]types.TrafficLight{types.TrafficLightRed, types.TrafficLightGreen})
	})
}

func TestRiskUseCase_Latest(t *testing.T) {
	uc, _ := newRiskUseCases(t, map[types.CaseID][]model.Tag{testCaseID: nil})
	ctx := context.Background()

	_, err := uc.Risk.Latest(ctx, testActor, testCaseID)
	gt.Error(t, err).Is(usecase.ErrNotFound)

	_, err = uc.Risk.Compute(ctx, testActor, testCaseID)
	gt.NoError(t, err).Required()
	second, err := uc.Risk.Compute(ctx, testActor, testCaseID)
	gt.NoError(t, err).Required()

	latest, err := uc.Risk.Latest(ctx, testActor, testCaseID)
	gt.NoError(t, err).Required()
	gt.Value(t, latest.ID).Equal(second.ID)

	// other tenants see nothing
	_, err = uc.Risk.Latest(ctx, model.Actor{TenantID: "tenant-b"}, testCaseID)
	gt.Error(t, err).Is(usecase.ErrNotFound)
}

func TestRiskUseCase_WithoutTagSource(t *testing.T) {
	uc := usecase.New(memory.New())
	_, err := uc.Risk.Compute(context.Background(), testActor, testCaseID)
	gt.Value(t, err).NotNil()
	gt.Bool(t, errors.Is(err, usecase.ErrNotFound)).False()
}
