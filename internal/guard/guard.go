// Package guard gates the protected view on one call to the protected endpoint.
package guard

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/types"
)

type State string

const (
	StateLoading      State = "loading"
	StateAuthorized   State = "authorized"
	StateUnauthorized State = "unauthorized"
)

// UnauthorizedAlert is the blocking alert shown when the check fails.
const UnauthorizedAlert = "Unauthorized"

// Checker calls the protected endpoint with the session token attached.
type Checker interface {
	Protected(ctx context.Context) (types.MessageResponse, error)
}

// RouteGuard holds the outcome of one activation.
type RouteGuard struct {
	State   State
	Message string
	Alert   string
	Code    string
	Err     error

	checker Checker
}

func New(checker Checker) *RouteGuard {
	return &RouteGuard{State: StateLoading, checker: checker}
}

// Activate performs exactly one protected fetch. There is no redirect and no
// retry; a failure leaves the view empty with a blocking alert.
func (g *RouteGuard) Activate(ctx context.Context) State {
	g.State, g.Message, g.Alert, g.Code, g.Err = StateLoading, "", "", "", nil

	resp, err := g.checker.Protected(ctx)
	if err != nil {
		g.Err = err
		g.Code = apiclient.CodeOf(err)
		g.Alert = UnauthorizedAlert
		g.State = StateUnauthorized
		slog.Info("protected check failed", "code", g.Code, "error", err)
		return g.State
	}

	g.Message = resp.Message
	g.State = StateAuthorized
	return g.State
}

// Authorized reports whether the last activation succeeded.
func (g *RouteGuard) Authorized() bool { return g.State == StateAuthorized }
