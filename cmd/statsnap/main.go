package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"statsnap/config"
	"statsnap/export"
	"statsnap/misc"
	"statsnap/state"
)

// initializeAppContext prepares application context after command line has
// been parsed and before command execution.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if data, err := config.Dump(env.Cfg); err == nil {
			name := "config/effective.yaml"
			if len(configFile) > 0 {
				name = "config/" + filepath.Base(configFile)
			}
			env.Rpt.StoreData(name, data)
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()),
		zap.String("run", env.RunID))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// log is synced, errors must go to stderr directly from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		_ = debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := env.Cfg.Logging.PanicLogName()
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, they are logged here before application
// context is destroyed.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "renders esports tournament statistics into styled PNG tables",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders team and player statistics of tournaments into images",
				OnUsageError: usageErrorHandler,
				Action:       export.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "only", Value: export.OnlyAll,
						Usage: "render only selected `STATS` (" + export.OnlyAll + ", " + export.OnlyTeam + ", " + export.OnlyPlayer + ")"},
					&cli.Int64SliceFlag{Name: "event", Aliases: []string{"e"},
						Usage: "render only tournament with `ID`, may be repeated"},
				},
				CustomHelpTemplate: fmt.Sprintf(`%s
Inputs, stylesheets and output directories are taken from configuration.
Existing images are overwritten. Player statistics are split into pages,
every tournament always produces the same number of player images.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "list",
				Usage:        "Lists tournaments with number of statistics rows",
				OnUsageError: usageErrorHandler,
				Action:       export.List,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "by-name", Usage: "order by event name instead of index order"},
				},
			},
			{
				Name:         "dumpconfig",
				Usage:        "Writes default or effective configuration as YAML",
				OnUsageError: usageErrorHandler,
				Action:       export.DumpConfig,
				ArgsUsage:    "[DESTINATION]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "write configuration embedded into the program"},
				},
				CustomHelpTemplate: fmt.Sprintf(`%s
Without --default the configuration in effect is written: embedded defaults
overlaid with the file given by --config. Output goes to DESTINATION when
present and to standard output otherwise.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log may be not set yet or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
