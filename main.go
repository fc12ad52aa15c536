package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/commands"
	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/logging"
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/data/stores"
	"github.com/colonyops/taskly/internal/store/jsonfile"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tasklyApp = &taskly.App{}
		database  *stores.DB
		bus       *eventbus.EventBus
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskly",
		Usage:     "Task tracking with projects, alarms, and a little XP",
		UsageText: "taskly [global options] command [command options]",
		Description: `Taskly is a task tracker for the terminal: a three-column board,
projects, due dates, one-shot alarms, and a lightweight XP system
that rewards finishing things.

Run 'taskly ls' to see the board.
Run 'taskly add "title"' to create your first task.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKLY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("TASKLY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKLY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKLY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Open the configured persistence backend.
			var store kv.KV
			switch cfg.Storage.Backend {
			case config.BackendSQLite:
				database, err = stores.Open(cfg.DataDir)
				if err != nil {
					return ctx, fmt.Errorf("open database: %w", err)
				}
				store = stores.NewKVStore(database)
			default:
				if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
					return ctx, fmt.Errorf("create data dir: %w", err)
				}
				store = jsonfile.New(filepath.Join(cfg.DataDir, "taskly.json"))
			}

			// The bus runs for the life of the process; commands publish
			// synchronously and the dispatcher drains in the background.
			bus = eventbus.New(64)
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewToastRouter(bus).Register()

			// Toasts land on stderr so piped command output stays clean.
			bus.SubscribeToastPublished(func(p eventbus.ToastPublishedPayload) {
				style := styles.ToastSuccess
				switch p.Level {
				case notify.LevelWarning:
					style = styles.ToastWarning
				case notify.LevelError:
					style = styles.ToastError
				}
				_, _ = fmt.Fprintln(os.Stderr, style.Render(p.Message))
			})

			var sender notify.Notifier = notify.NewDesktop("Taskly")
			if !cfg.Alarms.DesktopEnabled() {
				sender = notify.Noop{}
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*tasklyApp = *taskly.NewApp(store, bus, cfg, sender, log.Logger)
			tasklyApp.Load(ctx)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			tasklyApp.Close()
			// Stop the dispatcher and let it flush anything a command
			// published on its way out (toasts, save failures).
			if busCancel != nil {
				busCancel()
				bus.Wait()
			}
			if database != nil {
				if err := database.Close(); err != nil {
					log.Warn().Err(err).Msg("close database")
				}
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewAddCmd(flags, tasklyApp).Register(app)
	app = commands.NewLsCmd(flags, tasklyApp).Register(app)
	app = commands.NewShowCmd(flags, tasklyApp).Register(app)
	app = commands.NewEditCmd(flags, tasklyApp).Register(app)
	app = commands.NewStatusCmd(flags, tasklyApp).Register(app)
	app = commands.NewRmCmd(flags, tasklyApp).Register(app)
	app = commands.NewProjectCmd(flags, tasklyApp).Register(app)
	app = commands.NewExportCmd(flags, tasklyApp).Register(app)
	app = commands.NewImportCmd(flags, tasklyApp).Register(app)
	app = commands.NewStatsCmd(flags, tasklyApp).Register(app)
	app = commands.NewAlarmCmd(flags, tasklyApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, styles.ToastError.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
