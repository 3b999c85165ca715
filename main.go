package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/commands"
	"github.com/hay-kot/steward/internal/core/config"
	"github.com/hay-kot/steward/internal/core/logging"
	"github.com/hay-kot/steward/internal/core/styles"
	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
	"github.com/hay-kot/steward/internal/store/filestore"
	"github.com/hay-kot/steward/pkg/executil"
	"github.com/hay-kot/steward/pkg/logutils"
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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCloser  func()
		stewardApp = &steward.App{}
	)

	flags := &commands.Flags{}

	app := commands.NewRoot(flags, stewardApp)
	app.Version = build()
	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		logger, closer, err := logutils.New(flags.LogLevel, flags.LogFilePath())
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.Workspace)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		flags.Config = cfg

		// validation rejects unknown names, so the lookup cannot miss
		palette, _ := styles.GetPalette(cfg.Theme)
		styles.SetTheme(palette)

		store := filestore.New(cfg.Workspace)
		if err := store.Init(ctx); err != nil {
			return ctx, fmt.Errorf("init workspace: %w", err)
		}

		// Commands already hold a pointer to the App.
		*stewardApp = *steward.NewApp(cfg, store, &executil.RealExecutor{}, logging.Component("steward"))

		log.Debug().Str("workspace", cfg.Workspace).Msg("workspace ready")
		return printer.NewContext(ctx, printer.New(os.Stdout, os.Stderr)), nil
	}
	app.After = func(ctx context.Context, c *cli.Command) error {
		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		stop()
		os.Exit(1)
	}
}
