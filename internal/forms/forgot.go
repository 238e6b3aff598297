package forms

import (
	"context"
	"log/slog"
)

const (
	forgotSentMessage   = "A security code has been sent to your email."
	forgotFailedMessage = "Error sending security code. Please try again."
)

// ForgotForm requests a password reset code.
type ForgotForm struct {
	Email string

	State   State
	Message string
	Err     error

	accounts Accounts
	recorder Recorder
}

func NewForgotForm(accounts Accounts, rec Recorder) *ForgotForm {
	return &ForgotForm{State: StateIdle, accounts: accounts, recorder: recorderOrNop(rec)}
}

// Submit sends the request. Both outcomes end in a user-visible message.
func (f *ForgotForm) Submit(ctx context.Context) State {
	f.State, f.Message, f.Err = StateSubmitting, "", nil

	if _, err := f.accounts.Forgot(ctx, f.Email); err != nil {
		slog.Info("forgot password request failed", "error", err)
		f.Err = err
		f.Message = forgotFailedMessage
		f.State = StateFailure
		f.recorder.RecordForm("forgot", f.State, false)
		return f.State
	}

	f.Message = forgotSentMessage
	f.State = StateSuccess
	f.recorder.RecordForm("forgot", f.State, true)
	return f.State
}
