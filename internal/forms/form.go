// Package forms implements the account forms as small state machines:
// Idle -> Submitting -> {Success, Failure}. A form value belongs to one view
// activation and is not safe for concurrent use.
package forms

import (
	"context"

	"github.com/dgnsrekt/pang/internal/types"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

// Paths the forms navigate to or link at.
const (
	LoginPath  = "/login"
	ForgotPath = "/forgot"
)

// Accounts is the subset of the api client the forms call.
type Accounts interface {
	Register(ctx context.Context, creds types.Credentials) (types.MessageResponse, error)
	Login(ctx context.Context, creds types.Credentials) (types.LoginResponse, error)
	Forgot(ctx context.Context, email string) (types.ForgotResponse, error)
}

// TokenSink stores the token returned by a successful login.
type TokenSink interface {
	Set(token string) error
}

// Recorder receives form outcomes. Credentials are never passed to it.
type Recorder interface {
	RecordForm(kind string, state State, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordForm(string, State, bool) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
