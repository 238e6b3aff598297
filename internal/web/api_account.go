package web

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/forms"
	"github.com/dgnsrekt/pang/internal/guard"
	"github.com/dgnsrekt/pang/internal/session"
)

// formOutcome is what an account form ends in. Forms turn every failure into a
// message, so these endpoints answer 200 either way.
type formOutcome struct {
	State       forms.State `json:"state" doc:"Final form state"`
	Message     string      `json:"message,omitempty"`
	Redirect    string      `json:"redirect,omitempty" doc:"View to navigate to next"`
	LoginFailed bool        `json:"login_failed,omitempty"`
	ForgotPath  string      `json:"forgot_path,omitempty" doc:"Shown after a failed login"`
	ErrorCode   string      `json:"error_code,omitempty"`
}

type formOutput struct {
	Body formOutcome
}

type credentialsBody struct {
	Username string `json:"username,omitempty" maxLength:"256"`
	Password string `json:"password,omitempty" maxLength:"1024"`
}

func registerAccountHandlers(api huma.API, deps Deps) {
	huma.Register(api, huma.Operation{OperationID: "register", Method: http.MethodPost, Path: "/api/v1/register", Summary: "Register an account", Tags: []string{"Account"}},
		func(ctx context.Context, input *struct {
			Body credentialsBody
		}) (*formOutput, error) {
			f := forms.NewRegisterForm(deps.Accounts, deps.Recorder)
			f.Username, f.Password = input.Body.Username, input.Body.Password
			f.Submit(ctx)
			out := &formOutput{}
			out.Body = formOutcome{State: f.State, Message: f.Message, Redirect: f.Redirect, ErrorCode: apiclient.CodeOf(f.Err)}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "login", Method: http.MethodPost, Path: "/api/v1/login", Summary: "Log in and store the session token", Description: "The token itself is never returned; it is kept in the local session store.", Tags: []string{"Account"}},
		func(ctx context.Context, input *struct {
			Body credentialsBody
		}) (*formOutput, error) {
			f := forms.NewLoginForm(deps.Accounts, deps.Session, deps.Recorder)
			f.Username, f.Password = input.Body.Username, input.Body.Password
			f.Submit(ctx)
			out := &formOutput{}
			out.Body = formOutcome{State: f.State, Message: f.Message, LoginFailed: f.LoginFailed, ErrorCode: apiclient.CodeOf(f.Err)}
			if f.LoginFailed {
				out.Body.ForgotPath = forms.ForgotPath
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "forgot-password", Method: http.MethodPost, Path: "/api/v1/forgot", Summary: "Request a password reset code", Tags: []string{"Account"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Email string `json:"email,omitempty" maxLength:"320"`
			}
		}) (*formOutput, error) {
			f := forms.NewForgotForm(deps.Accounts, deps.Recorder)
			f.Email = input.Body.Email
			f.Submit(ctx)
			out := &formOutput{}
			out.Body = formOutcome{State: f.State, Message: f.Message, ErrorCode: apiclient.CodeOf(f.Err)}
			return out, nil
		})

	type protectedOutput struct {
		Body struct {
			State   guard.State `json:"state"`
			Message string      `json:"message"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "protected", Method: http.MethodGet, Path: "/api/v1/protected", Summary: "Check the session against the protected endpoint", Tags: []string{"Account"}},
		func(ctx context.Context, input *struct{}) (*protectedOutput, error) {
			g := guard.New(deps.Accounts)
			if g.Activate(ctx); !g.Authorized() {
				return nil, huma.Error401Unauthorized(guard.UnauthorizedAlert, g.Err)
			}
			out := &protectedOutput{}
			out.Body.State = g.State
			out.Body.Message = g.Message
			return out, nil
		})

	type sessionOutput struct {
		Body session.Status
	}
	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/session", Summary: "Describe the stored session", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*sessionOutput, error) {
			out := &sessionOutput{}
			out.Body = deps.Session.Describe()
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "clear-session", Method: http.MethodDelete, Path: "/api/v1/session", Summary: "Log out by clearing the stored token", Tags: []string{"Session"}, DefaultStatus: http.StatusNoContent},
		func(ctx context.Context, input *struct{}) (*struct{}, error) {
			if err := deps.Session.Clear(); err != nil {
				return nil, huma.Error500InternalServerError("clear session", err)
			}
			return nil, nil
		})
}
