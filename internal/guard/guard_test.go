package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/session"
)

func protectedServer(t *testing.T, valid string, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/protected" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"Missing Authorization Header"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Hello alice!"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGuard(t *testing.T, baseURL, token string) *RouteGuard {
	t.Helper()
	sess := session.New(session.NewMemoryBackend())
	if token != "" {
		if err := sess.Set(token); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	c, err := apiclient.New(baseURL, apiclient.WithTokenSource(sess))
	if err != nil {
		t.Fatalf("apiclient.New() error = %v", err)
	}
	return New(c)
}

func TestActivateStates(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantState State
		wantMsg   string
		wantAlert string
	}{
		{name: "valid_token", token: "good", wantState: StateAuthorized, wantMsg: "Hello alice!"},
		{name: "absent_token", token: "", wantState: StateUnauthorized, wantAlert: UnauthorizedAlert},
		{name: "invalid_token", token: "forged", wantState: StateUnauthorized, wantAlert: UnauthorizedAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := protectedServer(t, "good", &calls)
			g := newGuard(t, srv.URL, tt.token)

			if g.State != StateLoading {
				t.Fatalf("initial State = %q; want %q", g.State, StateLoading)
			}
			if got := g.Activate(context.Background()); got != tt.wantState {
				t.Fatalf("Activate() = %q; want %q", got, tt.wantState)
			}
			if calls != 1 {
				t.Fatalf("protected calls = %d; want exactly 1", calls)
			}
			if g.Message != tt.wantMsg {
				t.Fatalf("Message = %q; want %q", g.Message, tt.wantMsg)
			}
			if g.Alert != tt.wantAlert {
				t.Fatalf("Alert = %q; want %q", g.Alert, tt.wantAlert)
			}
		})
	}
}

func TestActivateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := newGuard(t, url, "good")
	if got := g.Activate(context.Background()); got != StateUnauthorized {
		t.Fatalf("Activate() = %q; want %q", got, StateUnauthorized)
	}
	if g.Code != apiclient.CodeNetworkFailure {
		t.Fatalf("Code = %q; want %q", g.Code, apiclient.CodeNetworkFailure)
	}
	if g.Authorized() {
		t.Fatalf("Authorized() = true after network failure")
	}
}
