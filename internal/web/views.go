package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
)

const layoutHTML = `
{{define "header"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} | pang!</title>
</head>
<body>
<nav>
  <a href="/"><strong>pang!</strong></a>
  <a href="/solutions">Solutions</a>
  <a href="/about">About</a>
  <a href="/get-started">Get Started</a>
  <a href="/login"><button type="button">Login</button></a>
</nav>
<main>
{{if .Alert}}<div role="alert" class="alert">{{.Alert}}</div>{{end}}
{{if .Notice}}<div role="status" class="notice">{{.Notice}}</div>{{end}}
{{end}}

{{define "footer"}}
</main>
</body>
</html>
{{end}}
`

const pagesHTML = `
{{define "home"}}{{template "header" .}}
<h1>pang!</h1>
<p>Stock price predictions next to what actually happened.</p>
<form method="get" action="/analysis">
  <input type="text" name="ticker" placeholder="Ticker" />
  <button type="submit">Analyze</button>
</form>
{{template "footer" .}}{{end}}

{{define "solutions"}}{{template "header" .}}
<h1>Solutions</h1>
<p>Compare predicted closing prices with true values for any ticker over a chosen period.</p>
{{template "footer" .}}{{end}}

{{define "about"}}{{template "header" .}}
<h1>About</h1>
<p>pang! charts model predictions against market history.</p>
{{template "footer" .}}{{end}}

{{define "get-started"}}{{template "header" .}}
<h1>Get Started</h1>
<p><a href="/register">Create an account</a>, then open an <a href="/analysis?ticker=AAPL&period=1mo">analysis</a>.</p>
{{template "footer" .}}{{end}}

{{define "analysis"}}{{template "header" .}}
<form method="get" action="/analysis">
  <input type="text" name="ticker" value="{{.Query.Ticker}}" placeholder="Ticker" />
  <select name="period">
  {{range .Periods}}<option value="{{.}}"{{if eq . $.Query.Period}} selected{{end}}>{{.}}</option>{{end}}
  </select>
  <button type="submit">Analyze</button>
</form>
{{if .Error}}<div>Error: {{.Error}}</div>
{{else if .Loading}}<div>Loading...</div>
{{else}}
<div style="padding: 20px">
  <h2>{{.Heading}}</h2>
  <div style="max-width: 800px; margin: 0 auto">
    {{if .ChartSrc}}<img src="{{.ChartSrc}}" alt="{{.Heading}}" width="800" height="400" />{{else if .RenderFailed}}<p>The chart could not be drawn.</p>{{else}}<p>No data points.</p>{{end}}
  </div>
  <p><a href="/analysis/chart.png?{{.ViewQuery}}">PNG</a> <a href="/analysis/chart.svg?{{.ViewQuery}}">SVG</a></p>
</div>
{{end}}
{{template "footer" .}}{{end}}

{{define "register"}}{{template "header" .}}
<h1>Create an Account</h1>
<p>Join us today and start your journey!</p>
<form method="post" action="/register">
  {{.CSRFField}}
  <input type="text" name="username" placeholder="Username" value="{{.Username}}" />
  <input type="password" name="password" placeholder="Password" />
  <button type="submit">Register</button>
</form>
<hr />
<p>Already have an account? <a href="/login">Login</a></p>
{{template "footer" .}}{{end}}

{{define "login"}}{{template "header" .}}
<h1>Welcome Back</h1>
<p>Login to continue to your account</p>
<form method="post" action="/login">
  {{.CSRFField}}
  <input type="text" name="username" placeholder="Username" value="{{.Username}}" />
  <input type="password" name="password" placeholder="Password" />
  <button type="submit">Login</button>
</form>
<hr />
<p>Don't have an account? <a href="/register">Register</a></p>
{{if .LoginFailed}}<p><span>Forgot your password?</span> <a href="{{.ForgotPath}}">Click Here</a></p>{{end}}
{{if .SignedIn}}<form method="post" action="/logout">{{.CSRFField}}<button type="submit">Logout</button></form>{{end}}
{{template "footer" .}}{{end}}

{{define "forgot"}}{{template "header" .}}
<h1>Forgot Password?</h1>
<p>Enter your email address, and we will send you a security code to reset your password.</p>
<form method="post" action="/forgot">
  {{.CSRFField}}
  <input type="email" name="email" placeholder="Email Address" value="{{.Email}}" />
  <button type="submit">Send Security Code</button>
</form>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "docs"}}<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0;">
<nav style="position: fixed; top: 8px; right: 16px; z-index: 10; font-family: sans-serif; font-size: 12px;">
  <a href="/">pang!</a> | <a href="/analysis">Analysis</a> | <a href="/login">Login</a>
</nav>
<elements-api apiDescriptionUrl="/openapi.json" router="hash" layout="sidebar" tryItCredentialsPolicy="same-origin" darkMode />
</body>
</html>{{end}}

{{define "protected"}}{{template "header" .}}
{{if .Authorized}}
<h1>Protected Route</h1>
<p>{{.Message}}</p>
{{end}}
{{template "footer" .}}{{end}}
`

var views = template.Must(template.New("views").Parse(layoutHTML + pagesHTML))

// page carries the fields every view's header reads.
type page struct {
	Title  string
	Alert  string
	Notice string
}

type analysisPage struct {
	page
	Query        queryView
	Periods      []string
	Heading      string
	Error        string
	Loading      bool
	RenderFailed bool
	ChartSrc     template.URL
	ViewQuery    template.URL
}

type queryView struct {
	Ticker string
	Period string
}

type accountPage struct {
	page
	Username    string
	Email       string
	Message     string
	LoginFailed bool
	ForgotPath  string
	SignedIn    bool
	CSRFField   template.HTML
}

type protectedPage struct {
	page
	Authorized bool
	Message    string
}

func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("view render failed", "view", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("view response write failed", "view", name, "error", err)
	}
}
