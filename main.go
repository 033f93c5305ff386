// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bep/gitsvn/internal/config"
	"github.com/bep/gitsvn/internal/lib"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfg        lib.Config
		configFile string
	)

	flag.StringVar(&configFile, "config", "", "path to the plugins config (default <root>/config.yml)")
	flag.StringVar(&cfg.Root, "root", "", "directory holding the git/ and svn/ checkouts (default working directory)")
	flag.StringVar(&cfg.Only, "only", "", "glob filter for plugin names")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "suppress all output")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every external command")
	flag.DurationVar(&cfg.Timeout, "timeout", 0, "time limit for each external command (0 means none)")
	flag.Parse()

	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg.Root = wd
	}
	if configFile == "" {
		configFile = filepath.Join(cfg.Root, config.DefaultFilename)
	}

	projects, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg.Projects = projects

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := lib.Sync(ctx, cfg)
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("%d of %d plugins skipped", len(result.Skipped), len(result.Skipped)+len(result.Updated))
	}
	return nil
}
