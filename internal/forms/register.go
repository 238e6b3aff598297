package forms

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/pang/internal/types"
)

const registerFailedMessage = "Error during registration"

// RegisterForm creates an account. The server is the only validator.
type RegisterForm struct {
	Username string
	Password string

	State    State
	Message  string
	Redirect string
	Err      error

	accounts Accounts
	recorder Recorder
}

func NewRegisterForm(accounts Accounts, rec Recorder) *RegisterForm {
	return &RegisterForm{State: StateIdle, accounts: accounts, recorder: recorderOrNop(rec)}
}

// Submit registers the account. On success the form points at the login view;
// on failure it shows a generic message and returns to Idle.
func (f *RegisterForm) Submit(ctx context.Context) State {
	f.State, f.Message, f.Redirect, f.Err = StateSubmitting, "", "", nil

	resp, err := f.accounts.Register(ctx, types.Credentials{Username: f.Username, Password: f.Password})
	if err != nil {
		slog.Info("register failed", "error", err)
		f.Err = err
		f.Message = registerFailedMessage
		f.State = StateIdle
		f.recorder.RecordForm("register", f.State, false)
		return f.State
	}

	f.Message = resp.Message
	f.Redirect = LoginPath
	f.State = StateSuccess
	f.Password = ""
	f.recorder.RecordForm("register", f.State, true)
	return f.State
}
