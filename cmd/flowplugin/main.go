// ABOUTME: CLI entry point for the example flowplugin launcher plugin
// ABOUTME: Loads config, sets up logging, and serves the host over stdin/stdout

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mauromedda/flow-plugin-go/internal/config"
	"github.com/mauromedda/flow-plugin-go/internal/log"
	"github.com/mauromedda/flow-plugin-go/pkg/jsonrpc"
	"github.com/mauromedda/flow-plugin-go/pkg/plugin"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("flowplugin %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args cliArgs) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if cfg.LogFile != "" {
		f, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	mode, err := plugin.ParseResponseMode(cfg.ResponseMode)
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		log.Warn("stdin is a terminal; flowplugin expects a launcher to drive it over JSON-RPC")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := jsonrpc.New(os.Stdin, os.Stdout,
		jsonrpc.WithMaxLineBytes(cfg.MaxLineBytes),
		jsonrpc.WithCallTimeout(cfg.CallTimeout.Std()),
	)
	reg := newRegistry()
	p := plugin.New(conn, reg, plugin.Options{
		Mode:           mode,
		ContextMenuTTL: cfg.ContextMenuTTL.Std(),
	})
	registerActions(reg, p.API())
	log.Debug("flowplugin %s serving (mode=%s)", version, mode)

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := p.Run(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	// A blocked stdin read only returns once the file is closed.
	g.Go(func() error {
		<-gctx.Done()
		_ = os.Stdin.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadConfig(args cliArgs) (*config.Settings, error) {
	var (
		cfg *config.Settings
		err error
	)
	if args.config != "" {
		cfg, err = config.LoadFile(args.config)
	} else {
		dir := args.dir
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return nil, fmt.Errorf("getting working directory: %w", err)
			}
		}
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, err
	}

	if args.verbose {
		cfg.LogLevel = "debug"
	}
	if args.mode != "" {
		cfg.ResponseMode = args.mode
	}
	return cfg, nil
}
