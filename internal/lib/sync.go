// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type Syncer struct {
	Cfg     Config
	Runner  Runner
	History History

	out      io.Writer
	logger   zerolog.Logger
	warnings []string
}

// NewSyncer creates a Syncer running external tools on the local host.
func NewSyncer(cfg Config) *Syncer {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Quiet {
		out = io.Discard
	}
	return &Syncer{
		Cfg:     cfg,
		Runner:  ExecRunner{Timeout: cfg.Timeout},
		History: GitHistory{},
		out:     out,
		logger:  newLogger(out, cfg.Verbose),
	}
}

// Sync updates every configured project in order and prints a summary.
// Skipped projects are reported in the Result, not as an error.
func Sync(ctx context.Context, cfg Config) (Result, error) {
	s := NewSyncer(cfg)
	result, err := s.Run(ctx)
	if err != nil {
		return result, err
	}
	s.printResult(result)
	return result, nil
}

func (s *Syncer) log(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Syncer) printResult(r Result) {
	if len(r.Updated) > 0 {
		s.log("Updated: %d projects\n", len(r.Updated))
		for _, p := range r.Updated {
			if p.Release != "" {
				s.log("  - %s (tagged %s)\n", p.Name, p.Release)
			} else {
				s.log("  - %s\n", p.Name)
			}
		}
	}

	if len(r.Skipped) > 0 {
		s.log("Skipped: %d projects\n", len(r.Skipped))
		for _, p := range r.Skipped {
			s.log("  - %s (%s)\n", p.Name, p.Outcome)
		}
	}

	if len(r.Warnings) > 0 {
		s.log("Warnings:\n")
		for _, w := range r.Warnings {
			s.log("  - %s\n", w)
		}
	}
}

// Run processes the configured projects one at a time. A project that
// fails never stops the ones after it.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	var result Result
	s.warnings = nil

	projects, err := s.selectProjects()
	if err != nil {
		return result, err
	}

	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		pr := s.SyncProject(ctx, p)
		if pr.Outcome == OutcomeSuccess {
			result.Updated = append(result.Updated, pr)
		} else {
			result.Skipped = append(result.Skipped, pr)
		}
	}
	result.Warnings = s.warnings

	return result, nil
}

func (s *Syncer) selectProjects() ([]Project, error) {
	if s.Cfg.Only == "" {
		return s.Cfg.Projects, nil
	}
	var projects []Project
	for _, p := range s.Cfg.Projects {
		matched, err := filepath.Match(s.Cfg.Only, p.Name)
		if err != nil {
			return nil, err
		}
		if matched {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// SyncProject runs the full pipeline for p:
//
//	mirror sync → svn checkout → copy to trunk → build tools →
//	svn add → tag latest release → svn status → svn commit
//
// Only a failed mirror sync, checkout or commit changes the outcome.
func (s *Syncer) SyncProject(ctx context.Context, p Project) ProjectResult {
	log := s.logger.With().Str("project", p.Name).Logger()
	runner := commandLogger{Runner: s.Runner, log: log}
	mirror := Mirror{Path: p.MirrorDir(s.Cfg.Root), URL: p.OriginURL, Branch: p.OriginBranch, runner: runner, out: s.out}
	wc := WorkingCopy{Path: p.WorkingCopyDir(s.Cfg.Root), URL: p.DistURL, runner: runner, out: s.out}

	if mirror.Exists() {
		log.Info().Str("dir", mirror.Path).Msg("Pulling git repository")
	} else {
		log.Info().Str("dir", mirror.Path).Msg("Cloning git repository")
	}
	if err := mirror.Sync(ctx); err != nil {
		return s.skip(log, p, OutcomeSkippedMirrorFetchFailed, fmt.Errorf("%w: %w", ErrMirrorFetch, err))
	}

	log.Info().Str("dir", wc.Path).Msg("Checking out svn repository")
	if err := wc.Checkout(ctx); err != nil {
		return s.skip(log, p, OutcomeSkippedDistCheckoutFailed, fmt.Errorf("%w: %w", ErrDistCheckout, err))
	}

	log.Info().Msg("Updating svn trunk from latest git commit")
	n, err := NewReplicator(mirror.Path, wc.Trunk()).Copy()
	if err != nil {
		s.warn(log, p, "copy to trunk failed", err)
	} else {
		log.Debug().Int("files", n).Msg("Copied files to trunk")
	}

	s.runBuildTools(ctx, log, runner, wc.Trunk())

	bestEffort(log, wc.AddNew(ctx))

	message, err := s.History.LatestMessage(mirror.Path)
	if err != nil {
		s.warn(log, p, "could not read latest commit message", err)
	}

	var release string
	tag, err := s.History.LatestTag(mirror.Path)
	switch {
	case err != nil:
		s.warn(log, p, "could not determine latest release, not tagging", err)
	case tag == "":
		log.Debug().Msg("No tags found, not tagging")
	default:
		log.Info().Str("release", tag).Msg("Tagging latest release")
		bestEffort(log, wc.RemoveTag(ctx, tag))
		if err := wc.Tag(ctx, tag); err != nil {
			s.warn(log, p, "tagging failed", err)
		} else {
			release = tag
		}
	}

	bestEffort(log, wc.Status(ctx))

	log.Info().Str("message", message).Msg("Committing to svn repository")
	if err := wc.Commit(ctx, message); err != nil {
		pr := s.skip(log, p, OutcomeSkippedCommitFailed, fmt.Errorf("%w: %w", ErrCommit, err))
		pr.Release = release
		return pr
	}

	log.Info().Msg("Success: project has been updated")
	return ProjectResult{Name: p.Name, Outcome: OutcomeSuccess, Release: release}
}

func (s *Syncer) skip(log zerolog.Logger, p Project, o Outcome, err error) ProjectResult {
	log.Warn().Err(err).Str("outcome", o.String()).Msg("Warning: skipping updates")
	return ProjectResult{Name: p.Name, Outcome: o, Err: err}
}

func (s *Syncer) warn(log zerolog.Logger, p Project, msg string, err error) {
	log.Warn().Err(err).Msg(msg)
	s.warnings = append(s.warnings, msg+": "+p.Name+": "+err.Error())
}

// bestEffort discards res. It marks steps whose failure must not change a
// project's outcome: build tools, svn add, tag removal and svn status.
func bestEffort(log zerolog.Logger, res ExecResult) {
	if !res.OK() {
		log.Debug().Int("exit", res.ExitCode).Msg("Ignoring failed best-effort command")
	}
}

// commandLogger logs every command at debug level.
type commandLogger struct {
	Runner
	log zerolog.Logger
}

func (r commandLogger) Run(ctx context.Context, c Command) ExecResult {
	r.log.Debug().Str("dir", c.Dir).Msgf("Running %s", c)
	return r.Runner.Run(ctx, c)
}
