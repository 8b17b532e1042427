// Package httptransport assembles the HTTP surface: middleware chain, the
// attendance routes, and the health endpoint. Business logic stays in the
// feature services; this layer only wires them to the network.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/attendance/handler"
	"timeclock/internal/platform/jwttoken"
	"timeclock/internal/platform/middleware"
	id "timeclock/pkg/domain"
	"timeclock/pkg/platform/httputil"
)

// Dependencies carries everything the router mounts. Health funcs may be nil
// when the backing resource is not configured.
type Dependencies struct {
	Attendance *handler.Handler
	Tokens     *jwttoken.Service
	Logger     *slog.Logger

	DBHealth    func(ctx context.Context) error
	RedisHealth func(ctx context.Context) error
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(&claimsValidator{tokens: deps.Tokens}, deps.Logger))
		r.Group(deps.Attendance.Register)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager(deps.Logger))
			deps.Attendance.RegisterManager(r)
		})
	})
	return r
}

// claimsValidator adapts the JWT service to the auth middleware's identity
// contract, enforcing that the subject is a well-formed user ID.
type claimsValidator struct {
	tokens *jwttoken.Service
}

func (v *claimsValidator) ValidateToken(tokenString string) (*middleware.IdentityClaims, error) {
	claims, err := v.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &middleware.IdentityClaims{UserID: userID, IsManager: claims.IsManager}, nil
}

func handleHealth(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := map[string]string{"status": "ok"}
		code := http.StatusOK

		if deps.DBHealth != nil {
			if err := deps.DBHealth(ctx); err != nil {
				status["status"] = "degraded"
				status["postgres"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if deps.RedisHealth != nil {
			if err := deps.RedisHealth(ctx); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, code, status)
	}
}
