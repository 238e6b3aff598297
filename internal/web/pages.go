package web

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/forms"
	"github.com/dgnsrekt/pang/internal/guard"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

const maxFormBytes = 64 << 10

func registerPages(r chi.Router, deps Deps) {
	static := func(name, title string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			render(w, http.StatusOK, name, page{Title: title})
		}
	}
	r.Get("/", static("home", "Home"))
	r.Get("/solutions", static("solutions", "Solutions"))
	r.Get("/About", static("about", "About"))
	r.Get("/about", static("about", "About"))
	r.Get("/get-started", static("get-started", "Get Started"))

	r.Get("/analysis", analysisView(deps))
	r.Get("/analysis/chart.svg", chartImage(deps, analysis.FormatSVG))
	r.Get("/analysis/chart.png", chartImage(deps, analysis.FormatPNG))

	r.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Use(limitFormBody)
		r.Use(csrfProtect(deps.CSRFKey))
		r.Get("/register", registerView())
		r.Post("/register", registerSubmit(deps))
		r.Get("/login", loginView(deps))
		r.Post("/login", loginSubmit(deps))
		r.Post("/logout", logoutSubmit(deps))
		r.Get("/forgot", forgotView())
		r.Post("/forgot", forgotSubmit(deps))
		r.Get("/protected", protectedView(deps))
	})
}

// analysisView fetches once per request and renders the chart inline.
func analysisView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := analysis.ParseQuery(r.URL.Query())
		st := deps.fetchAnalysis(r.Context(), q)

		view := analysisPage{
			page:      page{Title: "Analysis"},
			Query:     queryView{Ticker: q.Ticker, Period: q.Period},
			Periods:   analysis.KnownPeriods,
			ViewQuery: template.URL(analysis.ViewQuery(q)),
		}
		status := http.StatusOK
		switch st.Status {
		case analysis.StatusError:
			view.Error = st.Message
		case analysis.StatusReady:
			view.Heading = st.Chart.Title
			img, err := st.Image(analysis.FormatSVG)
			switch {
			case errors.Is(err, analysis.ErrNoPoints):
			case err != nil:
				slog.Error("analysis chart render failed", "ticker", q.Ticker, "error", err)
				view.RenderFailed = true
				status = http.StatusInternalServerError
			default:
				view.ChartSrc = template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(img))
			}
		default:
			view.Loading = true
		}
		render(w, status, "analysis", view)
	}
}

func chartImage(deps Deps, format analysis.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := analysis.ParseQuery(r.URL.Query())
		st := deps.fetchAnalysis(r.Context(), q)
		img, err := st.Image(format)
		if err != nil {
			status, msg := chartErrorStatus(st, err)
			http.Error(w, "Error: "+msg, status)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		if _, err := w.Write(img); err != nil {
			slog.Debug("chart response write failed", "error", err)
		}
	}
}

// chartErrorStatus blames the upstream service only for failed fetches. A
// ready state that cannot be drawn is a local failure.
func chartErrorStatus(st analysis.State, err error) (int, string) {
	switch {
	case st.Status == analysis.StatusError:
		return http.StatusBadGateway, st.Message
	case errors.Is(err, analysis.ErrNoPoints):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, analysis.ErrNotReady):
		return http.StatusServiceUnavailable, err.Error()
	default:
		slog.Error("chart render failed", "ticker", st.Query.Ticker, "error", err)
		return http.StatusInternalServerError, "chart render failed"
	}
}

func registerView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "register", accountPage{page: page{Title: "Register"}, CSRFField: csrf.TemplateField(r)})
	}
}

// registerSubmit redirects to the login view on success, carrying the server's
// message along.
func registerSubmit(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		f := forms.NewRegisterForm(deps.Accounts, deps.Recorder)
		f.Username, f.Password = r.PostFormValue("username"), r.PostFormValue("password")
		if f.Submit(r.Context()) == forms.StateSuccess {
			http.Redirect(w, r, f.Redirect+"?notice="+url.QueryEscape(f.Message), http.StatusSeeOther)
			return
		}
		render(w, http.StatusOK, "register", accountPage{
			page:      page{Title: "Register", Alert: f.Message},
			Username:  f.Username,
			CSRFField: csrf.TemplateField(r),
		})
	}
}

func loginView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := deps.Session.Get()
		render(w, http.StatusOK, "login", accountPage{
			page:       page{Title: "Login", Notice: r.URL.Query().Get("notice")},
			ForgotPath: forms.ForgotPath,
			SignedIn:   signedIn,
			CSRFField:  csrf.TemplateField(r),
		})
	}
}

func loginSubmit(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		f := forms.NewLoginForm(deps.Accounts, deps.Session, deps.Recorder)
		f.Username, f.Password = r.PostFormValue("username"), r.PostFormValue("password")
		state := f.Submit(r.Context())

		view := accountPage{
			page:        page{Title: "Login"},
			Username:    f.Username,
			LoginFailed: f.LoginFailed,
			ForgotPath:  forms.ForgotPath,
			CSRFField:   csrf.TemplateField(r),
		}
		if state == forms.StateSuccess {
			view.Notice = f.Message
			view.SignedIn = true
		} else {
			view.Alert = f.Message
		}
		render(w, http.StatusOK, "login", view)
	}
}

func logoutSubmit(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Session.Clear(); err != nil {
			slog.Error("session clear failed", "error", err)
			http.Error(w, "could not clear session", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, forms.LoginPath, http.StatusSeeOther)
	}
}

func forgotView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "forgot", accountPage{page: page{Title: "Forgot Password"}, CSRFField: csrf.TemplateField(r)})
	}
}

func forgotSubmit(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		f := forms.NewForgotForm(deps.Accounts, deps.Recorder)
		f.Email = r.PostFormValue("email")
		f.Submit(r.Context())
		render(w, http.StatusOK, "forgot", accountPage{
			page:      page{Title: "Forgot Password"},
			Email:     f.Email,
			Message:   f.Message,
			CSRFField: csrf.TemplateField(r),
		})
	}
}

// protectedView runs the guard once per request. Failure renders an empty view
// with the alert.
func protectedView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := guard.New(deps.Accounts)
		g.Activate(r.Context())
		render(w, http.StatusOK, "protected", protectedPage{
			page:       page{Title: "Protected", Alert: g.Alert},
			Authorized: g.Authorized(),
			Message:    g.Message,
		})
	}
}

// limitFormBody caps request bodies before the form token check parses them.
func limitFormBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		next.ServeHTTP(w, r)
	})
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return false
	}
	return true
}
