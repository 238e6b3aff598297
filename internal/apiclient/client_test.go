package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/dgnsrekt/pang/internal/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type staticTokens struct {
	token string
}

func (s staticTokens) Get() (string, bool) { return s.token, s.token != "" }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, tokens TokenSource, fn roundTripFunc) *Client {
	t.Helper()
	c, err := New("http://backend.test", WithTokenSource(tokens), WithHTTPClient(&http.Client{Transport: fn}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRejectsRelativeBase(t *testing.T) {
	if _, err := New("/relative"); err == nil {
		t.Fatalf("New(relative) error = nil; want error")
	}
}

func TestProtectedAttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, staticTokens{token: "tok-123"}, func(r *http.Request) (*http.Response, error) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		return jsonResponse(http.StatusOK, `{"message":"Hello alice!"}`), nil
	})

	out, err := c.Protected(context.Background())
	if err != nil {
		t.Fatalf("Protected() error = %v", err)
	}
	if got, want := gotAuth, "Bearer tok-123"; got != want {
		t.Fatalf("Authorization = %q; want %q", got, want)
	}
	if got, want := gotPath, "/protected"; got != want {
		t.Fatalf("path = %q; want %q", got, want)
	}
	if out.Message != "Hello alice!" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestProtectedWithoutTokenOmitsHeader(t *testing.T) {
	var sawHeader bool
	c := newTestClient(t, staticTokens{}, func(r *http.Request) (*http.Response, error) {
		_, sawHeader = r.Header["Authorization"]
		return jsonResponse(http.StatusUnauthorized, `{"msg":"Missing Authorization Header"}`), nil
	})

	_, err := c.Protected(context.Background())
	if sawHeader {
		t.Fatalf("Authorization header sent without a token")
	}
	if got := CodeOf(err); got != CodeAuthFailure {
		t.Fatalf("CodeOf() = %q; want %q (err=%v)", got, CodeAuthFailure, err)
	}
	if !strings.Contains(MessageOf(err), "Missing Authorization Header") {
		t.Fatalf("MessageOf() = %q; want server msg", MessageOf(err))
	}
}

func TestAccountCallsNeverCarryToken(t *testing.T) {
	var auths []string
	var bodies []string
	c := newTestClient(t, staticTokens{token: "tok"}, func(r *http.Request) (*http.Response, error) {
		auths = append(auths, r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		switch r.URL.Path {
		case PathLogin:
			return jsonResponse(http.StatusOK, `{"access_token":"new"}`), nil
		case PathRegister:
			return jsonResponse(http.StatusCreated, `{"message":"User registered successfully"}`), nil
		default:
			return jsonResponse(http.StatusOK, `{}`), nil
		}
	})
	ctx := context.Background()
	creds := types.Credentials{Username: "alice", Password: "pw", Email: "ignored@example.com"}

	if _, err := c.Register(ctx, creds); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := c.Login(ctx, creds); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := c.Forgot(ctx, "alice@example.com"); err != nil {
		t.Fatalf("Forgot() error = %v", err)
	}

	for i, a := range auths {
		if a != "" {
			t.Fatalf("request %d carried Authorization %q", i, a)
		}
	}
	if got, want := bodies[0], `{"username":"alice","password":"pw"}`; got != want {
		t.Fatalf("register body = %s; want %s", got, want)
	}
	if got, want := bodies[2], `{"email":"alice@example.com"}`; got != want {
		t.Fatalf("forgot body = %s; want %s", got, want)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		fn   roundTripFunc
		code string
	}{
		{
			name: "network",
			fn: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			code: CodeNetworkFailure,
		},
		{
			name: "unauthorized",
			fn: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"message":"Invalid credentials"}`), nil
			},
			code: CodeAuthFailure,
		},
		{
			name: "server_error",
			fn: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, `<html>boom</html>`), nil
			},
			code: CodeServerFailure,
		},
		{
			name: "not_json",
			fn: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `not json`), nil
			},
			code: CodeMalformedResponse,
		},
		{
			name: "missing_token_field",
			fn: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"token":"wrong-key"}`), nil
			},
			code: CodeMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, nil, tt.fn)
			_, err := c.Login(context.Background(), types.Credentials{Username: "u", Password: "p"})
			if err == nil {
				t.Fatalf("Login() error = nil; want %s", tt.code)
			}
			if got := CodeOf(err); got != tt.code {
				t.Fatalf("CodeOf() = %q; want %q (err=%v)", got, tt.code, err)
			}
		})
	}
}

func TestAnalysisPath(t *testing.T) {
	tests := []struct {
		q    types.AnalysisQuery
		want string
	}{
		{types.AnalysisQuery{Ticker: "AAPL", Period: "1mo"}, "/api/get_analysis?ticker=AAPL&period=1mo"},
		{types.AnalysisQuery{Ticker: "MSFT"}, "/api/get_analysis?ticker=MSFT&period=1mo"},
		{types.AnalysisQuery{Ticker: "BRK B", Period: "1y"}, "/api/get_analysis?ticker=BRK+B&period=1y"},
		{types.AnalysisQuery{}, "/api/get_analysis?ticker=&period=1mo"},
	}
	for _, tt := range tests {
		if got := AnalysisPath(tt.q); got != tt.want {
			t.Fatalf("AnalysisPath(%+v) = %q; want %q", tt.q, got, tt.want)
		}
	}
}

func TestGetAnalysisScenario(t *testing.T) {
	var gotURL string
	c := newTestClient(t, nil, func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{"Dates":["2024-01-01","2024-01-02"],"True Values":[150,151],"Predicted Values":[149,152]}`), nil
	})

	res, err := c.GetAnalysis(context.Background(), types.AnalysisQuery{Ticker: "AAPL", Period: "1mo"})
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if got, want := gotURL, "http://backend.test/api/get_analysis?ticker=AAPL&period=1mo"; got != want {
		t.Fatalf("url = %q; want %q", got, want)
	}
	if res.Ticker != "AAPL" {
		t.Fatalf("Ticker = %q; want query ticker fallback", res.Ticker)
	}
	if res.Len() != 2 || res.TrueValues[1] != 151 || res.PredictedValues[0] != 149 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGetAnalysisRejectsMisalignedSeries(t *testing.T) {
	c := newTestClient(t, nil, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"Ticker":"AAPL","Dates":["2024-01-01","2024-01-02"],"True Values":[150],"Predicted Values":[149,152]}`), nil
	})

	_, err := c.GetAnalysis(context.Background(), types.AnalysisQuery{Ticker: "AAPL"})
	if !errors.Is(err, types.ErrMisalignedSeries) {
		t.Fatalf("GetAnalysis() error = %v; want ErrMisalignedSeries", err)
	}
	if got := CodeOf(err); got != CodeMalformedResponse {
		t.Fatalf("CodeOf() = %q; want %q", got, CodeMalformedResponse)
	}
}

func TestGetAnalysisRejectsMissingSeries(t *testing.T) {
	c := newTestClient(t, nil, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"Ticker":"AAPL","Recent_Dates":["2024-01-01"]}`), nil
	})

	_, err := c.GetAnalysis(context.Background(), types.AnalysisQuery{Ticker: "AAPL"})
	if got := CodeOf(err); got != CodeMalformedResponse {
		t.Fatalf("CodeOf() = %q; want %q (err=%v)", got, CodeMalformedResponse, err)
	}
}

func TestResolveURLKeepsBasePath(t *testing.T) {
	c, err := New("http://backend.test/pang/")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := c.ResolveURL("/api/get_analysis?ticker=A&period=1d")
	if err != nil {
		t.Fatalf("ResolveURL() error = %v", err)
	}
	if want := "http://backend.test/pang/api/get_analysis?ticker=A&period=1d"; got != want {
		t.Fatalf("ResolveURL() = %q; want %q", got, want)
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("x", maxErrorBodyBytes+10)
	got := snippet([]byte(long))
	if len(got) != maxErrorBodyBytes+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("snippet() len = %d; want %d with ellipsis", len(got), maxErrorBodyBytes+3)
	}
	if snippet([]byte("short")) != "short" {
		t.Fatalf("snippet() changed a short body")
	}
}
