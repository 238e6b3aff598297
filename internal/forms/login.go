package forms

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/pang/internal/types"
)

const (
	loginOKMessage      = "Login successful!"
	loginFailedMessage  = "Invalid credentials"
	loginStorageMessage = "Login succeeded but the session could not be saved"
)

// ErrBlankToken is returned when a login response carries an empty access token.
var ErrBlankToken = errors.New("login response has a blank access token")

// LoginForm exchanges credentials for a session token.
type LoginForm struct {
	Username string
	Password string

	State       State
	Message     string
	LoginFailed bool
	Err         error

	accounts Accounts
	session  TokenSink
	recorder Recorder
}

func NewLoginForm(accounts Accounts, session TokenSink, rec Recorder) *LoginForm {
	return &LoginForm{State: StateIdle, accounts: accounts, session: session, recorder: recorderOrNop(rec)}
}

// Submit logs in. Only a successful response touches the session.
func (f *LoginForm) Submit(ctx context.Context) State {
	f.State, f.Message, f.Err = StateSubmitting, "", nil

	resp, err := f.accounts.Login(ctx, types.Credentials{Username: f.Username, Password: f.Password})
	f.Password = ""
	if err == nil && strings.TrimSpace(resp.AccessToken) == "" {
		err = ErrBlankToken
	}
	if err != nil {
		slog.Info("login failed", "error", err)
		f.Err = err
		f.Message = loginFailedMessage
		f.LoginFailed = true
		f.State = StateFailure
		f.recorder.RecordForm("login", f.State, false)
		return f.State
	}

	if err := f.session.Set(resp.AccessToken); err != nil {
		slog.Error("session save failed", "error", err)
		f.Err = err
		f.Message = loginStorageMessage
		f.State = StateFailure
		f.recorder.RecordForm("login", f.State, false)
		return f.State
	}

	slog.Info("login succeeded")
	f.Message = loginOKMessage
	f.LoginFailed = false
	f.State = StateSuccess
	f.recorder.RecordForm("login", f.State, true)
	return f.State
}

// ShowForgot reports whether the forgot-password link should be offered.
func (f *LoginForm) ShowForgot() bool { return f.LoginFailed }
