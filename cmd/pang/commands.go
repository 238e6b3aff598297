package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/app"
	"github.com/dgnsrekt/pang/internal/forms"
	"github.com/dgnsrekt/pang/internal/guard"
	"github.com/dgnsrekt/pang/internal/types"
)

type env struct {
	app    *app.App
	args   []string
	stdin  io.Reader
	stdout io.Writer
}

func (e *env) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(e.stdout, format, a...)
}

type command func(ctx context.Context, e *env) error

var commands = map[string]command{
	"register":  cmdRegister,
	"login":     cmdLogin,
	"forgot":    cmdForgot,
	"protected": cmdProtected,
	"session":   cmdSession,
	"logout":    cmdLogout,
	"analysis":  cmdAnalysis,
	"watch":     cmdWatch,
	"snapshots": cmdSnapshots,
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// readPassword takes the first stdin line when no flag value was given.
func readPassword(e *env, flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func credentialFlags(name string, args []string, e *env) (string, string, error) {
	fs := newFlagSet(name)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password (read from stdin when empty)")
	if err := parse(fs, args); err != nil {
		return "", "", err
	}
	pw, err := readPassword(e, *password)
	return *username, pw, err
}

func cmdRegister(ctx context.Context, e *env) error {
	username, password, err := credentialFlags("register", e.args, e)
	if err != nil {
		return err
	}
	f := forms.NewRegisterForm(e.app.API, e.app.FormRecorder())
	f.Username, f.Password = username, password
	if f.Submit(ctx) != forms.StateSuccess {
		return errors.New(f.Message)
	}
	e.printf("%s\nnext: pang login -username %s\n", f.Message, username)
	return nil
}

func cmdLogin(ctx context.Context, e *env) error {
	username, password, err := credentialFlags("login", e.args, e)
	if err != nil {
		return err
	}
	f := forms.NewLoginForm(e.app.API, e.app.Session, e.app.FormRecorder())
	f.Username, f.Password = username, password
	if f.Submit(ctx) != forms.StateSuccess {
		if f.LoginFailed {
			e.printf("Forgot your password? pang forgot -email <address>\n")
		}
		return errors.New(f.Message)
	}
	e.printf("%s\n", f.Message)
	return nil
}

func cmdForgot(ctx context.Context, e *env) error {
	fs := newFlagSet("forgot")
	email := fs.String("email", "", "account email address")
	if err := parse(fs, e.args); err != nil {
		return err
	}
	f := forms.NewForgotForm(e.app.API, e.app.FormRecorder())
	f.Email = *email
	if f.Submit(ctx) != forms.StateSuccess {
		return errors.New(f.Message)
	}
	e.printf("%s\n", f.Message)
	return nil
}

func cmdProtected(ctx context.Context, e *env) error {
	g := guard.New(e.app.API)
	if g.Activate(ctx); !g.Authorized() {
		return errors.New(g.Alert)
	}
	e.printf("%s\n", g.Message)
	return nil
}

func cmdSession(_ context.Context, e *env) error {
	st := e.app.Session.Describe()
	switch {
	case !st.Present:
		e.printf("no session\n")
	case st.ExpiresAt != nil:
		e.printf("session present, expires %s (expired: %t)\n", st.ExpiresAt.Format(time.RFC3339), st.Expired)
	default:
		e.printf("session present\n")
	}
	return nil
}

func cmdLogout(_ context.Context, e *env) error {
	if err := e.app.Session.Clear(); err != nil {
		return err
	}
	e.printf("logged out\n")
	return nil
}

type analysisFlags struct {
	ticker, period string
}

func (a *analysisFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&a.ticker, "ticker", "", "stock ticker symbol")
	fs.StringVar(&a.period, "period", types.DefaultPeriod, "history window: "+strings.Join(analysis.KnownPeriods, " "))
}

func (a *analysisFlags) query() types.AnalysisQuery {
	return analysis.Normalize(types.AnalysisQuery{Ticker: a.ticker, Period: a.period})
}

func cmdAnalysis(ctx context.Context, e *env) error {
	fs := newFlagSet("analysis")
	var af analysisFlags
	af.bind(fs)
	out := fs.String("out", "", "write the rendered chart to this file")
	save := fs.Bool("save", false, "store the rendered chart as a snapshot")
	formatName := fs.String("format", "", "chart image format: svg or png (default from -out extension, else svg)")
	notes := fs.String("notes", "", "snapshot notes")
	if err := parse(fs, e.args); err != nil {
		return err
	}
	name := *formatName
	if name == "" && strings.HasSuffix(strings.ToLower(*out), ".png") {
		name = string(analysis.FormatPNG)
	}
	format, err := analysis.ParseFormat(name)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var (
		st      analysis.State
		savedID string
	)
	if *save {
		meta, captured, err := e.app.CaptureChart(ctx, af.query(), format, *notes)
		st = captured
		if err != nil {
			printState(e, st)
			return err
		}
		savedID = meta.ID
	} else {
		st = e.app.Pipeline.Trigger(ctx, af.query())
	}

	printState(e, st)
	if st.Status != analysis.StatusReady {
		return errors.New(st.Message)
	}
	if savedID != "" {
		e.printf("saved snapshot %s\n", savedID)
	}
	if *out != "" {
		img, err := st.Image(format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, img, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		e.printf("chart written to %s\n", *out)
	}
	return nil
}

// printState writes the analysis view as text: an error line, a loading line,
// or the title followed by the series table.
func printState(e *env, st analysis.State) {
	switch st.Status {
	case analysis.StatusError:
		e.printf("Error: %s\n", st.Message)
	case analysis.StatusReady:
		e.printf("%s\n", st.Chart.Title)
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "Date\t%s\t%s\n", analysis.TrueSeriesLabel, analysis.PredictedSeriesLabel)
		for i, d := range st.Result.Dates {
			_, _ = fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", d, st.Result.TrueValues[i], st.Result.PredictedValues[i])
		}
		_ = tw.Flush()
	default:
		e.printf("Loading...\n")
	}
}

func cmdWatch(ctx context.Context, e *env) error {
	fs := newFlagSet("watch")
	var af analysisFlags
	af.bind(fs)
	spec := fs.String("cron", "@every 5m", "refresh schedule (cron expression or @every duration)")
	if err := parse(fs, e.args); err != nil {
		return err
	}

	r, err := analysis.NewRefresher(ctx, e.app.Pipeline, af.query(), *spec, func(st analysis.State) {
		e.printf("[%s] seq=%d ", time.Now().Format(time.TimeOnly), st.Seq)
		printState(e, st)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	r.RunNow()
	r.Start()
	<-ctx.Done()
	r.Stop()
	return nil
}

func cmdSnapshots(_ context.Context, e *env) error {
	if len(e.args) == 0 {
		return fmt.Errorf("%w: snapshots needs list, show or delete", errUsage)
	}
	store := e.app.Snapshots
	switch e.args[0] {
	case "list":
		metas, err := store.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTICKER\tPERIOD\tFORMAT\tPOINTS\tCREATED\tNOTES")
		for _, m := range metas {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", m.ID, m.Ticker, m.Period, m.Format, m.Points, m.CreatedAt.Format(time.RFC3339), m.Notes)
		}
		return tw.Flush()
	case "show", "delete":
		if len(e.args) != 2 {
			return fmt.Errorf("%w: snapshots %s needs an ID", errUsage, e.args[0])
		}
		id := e.args[1]
		if e.args[0] == "delete" {
			if err := store.Delete(id); err != nil {
				return err
			}
			e.printf("deleted %s\n", id)
			return nil
		}
		m, err := store.Get(id)
		if err != nil {
			return err
		}
		e.printf("%s %s %s %s points=%d size=%d created=%s %s\n", m.ID, m.Ticker, m.Period, m.Format, m.Points, m.SizeBytes, m.CreatedAt.Format(time.RFC3339), m.Notes)
		return nil
	default:
		return fmt.Errorf("%w: unknown snapshots action %q", errUsage, e.args[0])
	}
}
