package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/pang/internal/app"
	"github.com/dgnsrekt/pang/internal/config"
)

const usage = `usage: pang <command> [flags]

commands:
  register   -username U [-password P]      create an account
  login      -username U [-password P]      log in and store the session token
  forgot     -email E                       request a password reset code
  protected                                 call the protected endpoint with the session
  session                                   show whether a token is stored
  logout                                    clear the stored token
  analysis   -ticker T [-period P] [-out F] [-save] [-format svg|png] [-notes N]
  watch      -ticker T [-period P] [-cron SPEC]
  snapshots  list | show ID | delete ID

A missing -password is read from the first line of stdin.
`

// errUsage marks errors that should be followed by the usage text.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "pang: %v\n", err)
		if errors.Is(err, errUsage) {
			_, _ = io.WriteString(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := app.SetupLogger(cfg.LogLevel, cfg.LogFile, io.Discard); err != nil {
		return fmt.Errorf("logger setup: %w", err)
	}
	slog.Debug("pang command", "command", args[0], "api_base_url", cfg.APIBaseURL)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("client close failed", "error", err)
		}
	}()

	return cmd(ctx, &env{app: a, args: args[1:], stdin: stdin, stdout: stdout})
}
