package apiclient

import (
	"context"
	"net/url"

	"github.com/dgnsrekt/pang/internal/types"
)

const (
	PathRegister = "/register"
	PathLogin    = "/login"
	PathForgot   = "/forgot"
	PathProtect  = "/protected"
	PathAnalysis = "/api/get_analysis"
)

func (c *Client) Register(ctx context.Context, creds types.Credentials) (types.MessageResponse, error) {
	var out types.MessageResponse
	body := types.Credentials{Username: creds.Username, Password: creds.Password}
	if err := c.Post(ctx, PathRegister, body, &out); err != nil {
		return types.MessageResponse{}, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, creds types.Credentials) (types.LoginResponse, error) {
	var out types.LoginResponse
	body := types.Credentials{Username: creds.Username, Password: creds.Password}
	if err := c.Post(ctx, PathLogin, body, &out); err != nil {
		return types.LoginResponse{}, err
	}
	return out, nil
}

// Forgot asks the server to send a password reset code to email.
func (c *Client) Forgot(ctx context.Context, email string) (types.ForgotResponse, error) {
	var out types.ForgotResponse
	if err := c.Post(ctx, PathForgot, types.Credentials{Email: email}, &out); err != nil {
		return types.ForgotResponse{}, err
	}
	return out, nil
}

// Protected calls the protected endpoint with the session token attached.
func (c *Client) Protected(ctx context.Context) (types.MessageResponse, error) {
	var out types.MessageResponse
	if err := c.Get(ctx, PathProtect, &out, WithAuth()); err != nil {
		return types.MessageResponse{}, err
	}
	return out, nil
}

// AnalysisPath is the request path for q: both parameters, ticker first.
func AnalysisPath(q types.AnalysisQuery) string {
	period := q.Period
	if period == "" {
		period = types.DefaultPeriod
	}
	return PathAnalysis + "?ticker=" + url.QueryEscape(q.Ticker) + "&period=" + url.QueryEscape(period)
}

// GetAnalysis fetches the true-vs-predicted series for q. Misaligned series
// are rejected as MALFORMED_RESPONSE wrapping types.ErrMisalignedSeries.
func (c *Client) GetAnalysis(ctx context.Context, q types.AnalysisQuery) (types.AnalysisResult, error) {
	var out types.AnalysisResult
	if err := c.Get(ctx, AnalysisPath(q), &out); err != nil {
		return types.AnalysisResult{}, err
	}
	if err := out.CheckAligned(); err != nil {
		return types.AnalysisResult{}, newError(CodeMalformedResponse, "analysis series are misaligned", 0, err)
	}
	if out.Ticker == "" {
		out.Ticker = q.Ticker
	}
	return out, nil
}
