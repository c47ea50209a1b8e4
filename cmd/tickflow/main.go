package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/delaneyj/tickflow/config"
	"github.com/delaneyj/tickflow/programs"
	"github.com/delaneyj/tickflow/sched"
	"github.com/delaneyj/tickflow/sink"
	"github.com/delaneyj/tickflow/stats"
	"github.com/urfave/cli/v3"
)

const (
	configKey    = "config"
	logLevelKey  = "log-level"
	fpsKey       = "fps"
	maxDepthKey  = "max-depth"
	stopOnKeyKey = "stop-on-key"
	noColorKey   = "no-color"
	labelKey     = "label"
	statsKey     = "stats"
)

func main() {
	cmd := &cli.Command{
		Name:  "tickflow",
		Usage: "Run reactive channel programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "Path to a config file, defaults to ./" + config.FileName + " when present",
			},
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the built-in programs",
				Action: list,
			},
			{
				Name:      "run",
				Usage:     "Run a built-in program until interrupted",
				ArgsUsage: "<program>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  fpsKey,
						Usage: "Ticks per second",
					},
					&cli.IntFlag{
						Name:  maxDepthKey,
						Usage: "Maximum cascade depth before a run fails as cyclic, 0 disables the check",
					},
					&cli.BoolFlag{
						Name:  stopOnKeyKey,
						Usage: "Stop on the first line read from stdin",
					},
					&cli.BoolFlag{
						Name:  noColorKey,
						Usage: "Disable colored output",
					},
					&cli.StringFlag{
						Name:  labelKey,
						Usage: "Prefix for every rendered value",
					},
					&cli.BoolFlag{
						Name:  statsKey,
						Usage: "Print tick statistics and channels when the run ends",
						Value: true,
					},
				},
				Action: run,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	for _, p := range programs.All() {
		fmt.Printf("%-10s %s\n", p.Name, p.Description)
	}
	return nil
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String(configKey); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet(logLevelKey) {
		cfg.LogLevel = cmd.String(logLevelKey)
	}
	if cmd.IsSet(fpsKey) {
		cfg.FPS = int(cmd.Int(fpsKey))
	}
	if cmd.IsSet(maxDepthKey) {
		depth := int(cmd.Int(maxDepthKey))
		cfg.MaxCascadeDepth = &depth
	}
	if cmd.IsSet(stopOnKeyKey) {
		cfg.StopOnKey = cmd.Bool(stopOnKeyKey)
	}
	if cmd.IsSet(noColorKey) {
		cfg.NoColor = cmd.Bool(noColorKey)
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	prog, ok := programs.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown program %q, see 'tickflow list'", name)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	stop := sched.StopOnSignal(ctx)
	if cfg.StopOnKey {
		stop = sched.AnyOf(stop, sched.StopOnKey(os.Stdin))
	}

	sinkOpts := []sink.Option{sink.WithLabel(cmd.String(labelKey))}
	if cfg.NoColor {
		sinkOpts = append(sinkOpts, sink.WithColors())
	}
	term := sink.NewTerminal(os.Stdout, sinkOpts...)
	collector := stats.New(cfg.StatsSamples)

	rt := sched.New(prog.Body, term,
		sched.WithFPS(cfg.FPS),
		sched.WithStop(stop),
		sched.WithMaxDepth(*cfg.MaxCascadeDepth),
		sched.WithObserver(collector),
		sched.WithLogger(logger),
	)

	start := time.Now()
	log.Printf("Running %s at %d fps", prog.Name, cfg.FPS)
	defer func() {
		log.Printf("Run of %s finished in %v", prog.Name, time.Since(start))
	}()

	err = rt.Run(ctx)
	if cerr := term.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if cmd.Bool(statsKey) {
		collector.Render(os.Stderr, prog.Name)
		stats.WriteChannels(os.Stderr, rt.Proc().Channels())
	}
	return nil
}
