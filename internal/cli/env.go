package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/engine"
	"github.com/roach88/shoplog/internal/store"
)

// env bundles the per-invocation runtime a command works against.
type env struct {
	engine *engine.Engine
	store  *store.Store
	out    *OutputFormatter
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// openEnv configures logging, loads configuration, opens the store, and
// builds the engine. The caller must close() the returned env.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	eng := engine.New(st, cfg,
		engine.WithConfirmer(confirmer(opts, cmd)),
	)

	return &env{
		engine: eng,
		store:  st,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// confirmer builds the engine's confirmation hook: --yes approves
// everything, otherwise the warning is printed and the answer read from
// stdin. JSON output mode never prompts; without --yes it denies.
func confirmer(opts *RootOptions, cmd *cobra.Command) engine.ConfirmFunc {
	if opts.Yes {
		return func(string) bool { return true }
	}
	if opts.Format == "json" {
		return engine.DenyAll
	}
	return func(warning string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "WARNING: %s\ncontinue? (y/N): ", warning)
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}

// finish renders an engine result or error and maps it to an exit code.
// Rejections print their code and exit 1; other errors exit 2.
func finish(f *OutputFormatter, err error) error {
	if err == nil {
		return nil
	}
	if code := engine.RejectCodeOf(err); code != "" {
		_ = f.Error(string(code), err.Error(), nil)
		return NewExitError(ExitRejected, err.Error())
	}
	_ = f.Error("COMMAND_ERROR", err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}
