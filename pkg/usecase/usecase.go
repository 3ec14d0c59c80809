package usecase

import (
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/utils/async"
)

type UseCases struct {
	repo       interfaces.Repository
	tagSource  interfaces.TagSource
	authorizer interfaces.Authorizer
	notifier   interfaces.Notifier
	metrics    interfaces.MetricsRecorder
	encoder    model.Encoder
	dispatcher *async.Dispatcher
	now        func() time.Time

	Matrix *MatrixUseCase
	Risk   *RiskUseCase
}

type Option func(*UseCases)

// WithTagSource sets where case tags are read from
func WithTagSource(src interfaces.TagSource) Option {
	return func(uc *UseCases) {
		uc.tagSource = src
	}
}

// WithAuthorizer replaces the default AllowAllAuthorizer
func WithAuthorizer(authz interfaces.Authorizer) Option {
	return func(uc *UseCases) {
		uc.authorizer = authz
	}
}

// WithNotifier enables escalation notices for RED results
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithMetrics(m interfaces.MetricsRecorder) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithPayloadEncoder overrides the snapshot payload encoder (json.Marshal)
func WithPayloadEncoder(enc model.Encoder) Option {
	return func(uc *UseCases) {
		uc.encoder = enc
	}
}

// WithDispatcher sets the dispatcher for background notifications
func WithDispatcher(d *async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatcher = d
	}
}

// WithClock overrides the time source used for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		authorizer: &AllowAllAuthorizer{},
		metrics:    nopMetrics{},
		dispatcher: async.New(),
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Matrix = NewMatrixUseCase(repo, uc.authorizer, uc.metrics)
	uc.Risk = &RiskUseCase{
		repo:       repo,
		tagSource:  uc.tagSource,
		authorizer: uc.authorizer,
		notifier:   uc.notifier,
		metrics:    uc.metrics,
		encoder:    uc.encoder,
		dispatcher: uc.dispatcher,
		now:        uc.now,
	}

	return uc
}

// Wait blocks until background notifications finished. Called on shutdown.
func (uc *UseCases) Wait() {
	uc.dispatcher.Wait()
}

type nopMetrics struct{}

func (nopMetrics) ObserveEvaluation(_ types.TrafficLight, _ time.Duration) {}
func (nopMetrics) IncActivation(_ types.TenantID)                          {}
func (nopMetrics) IncSerializationDegraded()                               {}
