// Command teleporter restores a Pi-hole teleporter backup into gravity.db
// and the resolver's local config stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Resinat/Teleporter/internal/archive"
	"github.com/Resinat/Teleporter/internal/buildinfo"
	"github.com/Resinat/Teleporter/internal/config"
	"github.com/Resinat/Teleporter/internal/gravity"
	"github.com/Resinat/Teleporter/internal/logging"
	"github.com/Resinat/Teleporter/internal/pihole"
	"github.com/Resinat/Teleporter/internal/reconcile"
	"github.com/Resinat/Teleporter/internal/restore"
)

func main() {
	a := &app{fs: afero.NewOsFs(), stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// app carries the process collaborators so tests can swap them.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	// runner overrides the pihole binary when set.
	runner pihole.Runner
}

type options struct {
	file       string
	database   string
	clear      bool
	filters    string
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	strict     bool
	initSchema bool
	version    bool
}

func (a *app) parseFlags(args []string) (*options, map[string]bool, error) {
	fs := flag.NewFlagSet("teleporter", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var opt options
	fs.StringVar(&opt.file, "file", "", "path to the teleporter backup (.tar.gz)")
	fs.StringVar(&opt.file, "f", "", "shorthand for --file")
	fs.StringVar(&opt.database, "database", "", "path to gravity.db (overrides TELEPORTER_DATABASE)")
	fs.StringVar(&opt.database, "d", "", "shorthand for --database")
	fs.BoolVar(&opt.clear, "clear", false, "flush each table and config store before restoring into it")
	fs.BoolVar(&opt.clear, "c", false, "shorthand for --clear")
	fs.StringVar(&opt.filters, "filters", "all", "comma-separated categories to restore: all|"+categoryList())
	fs.StringVar(&opt.configPath, "config", "", "path to a YAML config overlay")
	fs.StringVar(&opt.envFile, "env-file", "", "path to a .env file")
	fs.StringVar(&opt.logLevel, "log-level", "", "log level: debug|info|warn|error")
	fs.StringVar(&opt.logFormat, "log-format", "", "log format: console|json")
	fs.BoolVar(&opt.strict, "strict", false, "abort an entry on its first failing record")
	fs.BoolVar(&opt.initSchema, "init-schema", false, "create missing gravity tables before restoring")
	fs.BoolVar(&opt.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return &opt, set, nil
}

func categoryList() string {
	names := make([]string, len(restore.Categories))
	for i, c := range restore.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "|")
}

// loadConfig layers env (.env first), the YAML overlay and flags, in that
// order of increasing precedence.
func (a *app) loadConfig(opt *options, set map[string]bool) (*config.EnvConfig, error) {
	if opt.envFile != "" {
		if err := config.LoadDotEnv(opt.envFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	if opt.configPath != "" {
		fc, err := config.LoadFile(a.fs, opt.configPath)
		if err != nil {
			return nil, err
		}
		cfg.Apply(fc)
	}

	// CLI overrides config.
	if set["database"] || set["d"] {
		cfg.DatabasePath = opt.database
	}
	if set["log-level"] {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(opt.logLevel))
	}
	if set["log-format"] {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(opt.logFormat))
	}
	if set["strict"] {
		cfg.Strict = opt.strict
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	opt, set, err := a.parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opt.version {
		fmt.Fprintf(a.stdout, "teleporter %s (commit %s, built %s)\n", buildinfo.Version, buildinfo.GitCommit, buildinfo.BuildTime)
		return nil
	}
	if strings.TrimSpace(opt.file) == "" {
		return errors.New("missing required --file")
	}

	filters, err := restore.ParseFilters(opt.filters)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(opt, set)
	if err != nil {
		return err
	}

	logger, err := logging.NewLoggerTo(a.stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Debug("build info",
		zap.String("version", buildinfo.Version),
		zap.String("commit", buildinfo.GitCommit),
		zap.String("date", buildinfo.BuildTime),
	)

	// 1. Datastore
	store := gravity.NewStore(cfg.DatabasePath, gravity.Policy{Strict: cfg.Strict}, logger)
	if opt.initSchema {
		if err := store.InitSchema(); err != nil {
			logger.Error("failed to initialize gravity schema", zap.Error(err))
			return err
		}
	}
	if err := store.Check(ctx); err != nil {
		logger.Error("gravity database unreachable", zap.Error(err))
		return err
	}

	// 2. Archive
	src, err := archive.Open(a.fs, opt.file)
	if err != nil {
		logger.Error("failed to open backup", zap.String("file", opt.file), zap.Error(err))
		return err
	}
	defer src.Close()

	// 3. Control tool and reconcilers
	runner := a.runner
	if runner == nil {
		runner = pihole.NewCLI(cfg.PiholeBin, cfg.CommandTimeout, logger)
	}
	client := pihole.NewClient(runner)
	rec := reconcile.New(a.fs, client, reconcile.Paths{
		StaticDHCP:  cfg.StaticDHCPFile,
		CustomDNS:   cfg.CustomDNSFile,
		CustomCNAME: cfg.CustomCNAMEFile,
	}, logger)

	// 4. Run
	d := restore.NewDispatcher(store, rec, client, restore.Options{Flush: opt.clear, Filters: filters}, logger)
	if _, err := d.Run(ctx, src); err != nil {
		return err
	}
	return nil
}
