// Command parasolcore is the OpenCore host binary: it loads
// configuration, brings up the object/module registries and the event
// loop, registers the built-in SVG/NetSocket/XPath module entries (of
// which only SVG registers an object class), and
// optionally starts the Backstage inspection endpoint when
// --backstage is given a port. Grounded on the teacher's
// cmd/inos-node/main.go for overall shape (plain construction-then-run
// wiring) but using spf13/cobra for flag parsing, since the teacher's
// own CLI has no flag surface to imitate and cobra is the pack's
// demonstrated choice for this (marmos91-dittofs).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kotuku-run/parasol/backstage"
	"github.com/kotuku-run/parasol/core/config"
	"github.com/kotuku-run/parasol/core/eventloop"
	"github.com/kotuku-run/parasol/core/log"
	"github.com/kotuku-run/parasol/core/memory"
	"github.com/kotuku-run/parasol/core/module"
	"github.com/kotuku-run/parasol/core/object"
	"github.com/kotuku-run/parasol/svg"
)

var (
	flagConfigPath  string
	flagBackstage   int
	flagLogLevel    string
)

func main() {
	root := &cobra.Command{
		Use:   "parasolcore",
		Short: "OpenCore host process: object runtime, module loader, event loop",
		RunE:  run,
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to kernel.ini-style configuration file")
	root.PersistentFlags().IntVar(&flagBackstage, "backstage", 0, "enable the Backstage inspection endpoint on this port (0 disables it)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override the configured log level (trace|detail|info|api|warn|error)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseLevel(name string) (log.Level, bool) {
	switch name {
	case "trace":
		return log.Trace, true
	case "detail":
		return log.Detail, true
	case "info":
		return log.Info, true
	case "api":
		return log.API, true
	case "warn":
		return log.Warn, true
	case "error":
		return log.Error, true
	default:
		return log.Info, false
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, ok := parseLevel(flagLogLevel)
	if !ok {
		level, ok = parseLevel(cfg.Logging.Level)
		if !ok {
			level = log.Info
		}
	}
	logger := log.New(log.Config{Level: level, Component: "parasolcore", Colorize: cfg.Logging.Colorize})
	log.SetGlobal(logger)

	objects := object.NewRegistry(memory.NewLedger())
	modules := module.NewRegistry()
	loop := eventloop.New(logger.With("eventloop"))

	registerBuiltins(objects, modules)

	order, err := modules.Order()
	if err != nil {
		return fmt.Errorf("ordering modules: %w", err)
	}
	if err := modules.LoadAll(); err != nil {
		return fmt.Errorf("loading modules: %w", err)
	}
	logger.Info("modules loaded", log.Any("order", order))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := flagBackstage
	if port == 0 && cfg.Backstage.Enabled {
		port = cfg.Backstage.Port
	}
	if port > 0 {
		srv := backstage.New(backstage.Config{
			Port:    port,
			Objects: objects,
			Modules: modules,
			Loop:    loop,
			Logger:  logger.With("backstage"),
		})
		go func() {
			if err := srv.Listen(ctx); err != nil {
				logger.Error("backstage exited", log.Err(err))
			}
		}()
	}

	logger.Info("parasolcore started")
	loop.Run(ctx)
	logger.Info("parasolcore stopped")
	return nil
}

// registerBuiltins registers the module entries for the built-in
// SVG/NetSocket/XPath subsystems. Only the svg entry has an OnLoad hook,
// which registers the SVG class with the object registry, so module
// ordering governs that class's availability the way the original's
// module-load chain did; the netsocket and xpath entries register no
// classes.
func registerBuiltins(objects *object.Registry, modules *module.Registry) {
	modules.Register(module.Entry{
		ID:      "svg",
		Version: module.Version{Major: 1, Minor: 0, Patch: 0},
		OnLoad: func() error {
			objects.RegisterClass(svg.NewClass())
			return nil
		},
	})
	modules.Register(module.Entry{
		ID:      "netsocket",
		Version: module.Version{Major: 1, Minor: 0, Patch: 0},
	})
	modules.Register(module.Entry{
		ID:      "xpath",
		Version: module.Version{Major: 1, Minor: 0, Patch: 0},
	})
}
