package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/utils/errutil"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Identity headers set by the upstream access control gateway
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderScopeID  = "X-Scope-ID"
)

type actorCtxKey struct{}

// actorMiddleware resolves the request identity. Requests without tenant are rejected.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := types.TenantID(strings.TrimSpace(r.Header.Get(HeaderTenantID)))
		if tenantID == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("missing tenant header", goerr.V("header", HeaderTenantID)), http.StatusBadRequest)
			return
		}
		if err := tenantID.Validate(); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid tenant header"), http.StatusBadRequest)
			return
		}

		actor := model.Actor{
			TenantID: tenantID,
			ScopeID:  strings.TrimSpace(r.Header.Get(HeaderScopeID)),
		}

		ctx := context.WithValue(r.Context(), actorCtxKey{}, actor)
		ctx = logging.With(ctx, logging.From(ctx).With("tenant_id", actor.TenantID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) model.Actor {
	actor, _ := ctx.Value(actorCtxKey{}).(model.Actor)
	return actor
}
