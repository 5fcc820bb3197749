// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --config, --dir, --verbose, --mode, and --version

package main

import "flag"

type cliArgs struct {
	config  string
	dir     string
	mode    string
	verbose bool
	version bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.config, "config", "", "Read settings from this file instead of the layered config")
	flag.StringVar(&args.dir, "dir", "", "Plugin directory holding .flowplugin/ (default: working directory)")
	flag.StringVar(&args.mode, "mode", "", "Query response mode: legacy or results (overrides config)")
	flag.BoolVar(&args.verbose, "verbose", false, "Log at debug level")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}
