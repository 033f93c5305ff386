// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"errors"
	"io"
	"path/filepath"
	"time"
)

var (
	ErrMirrorFetch  = errors.New("could not fetch git repository")
	ErrDistCheckout = errors.New("could not check out svn repository")
	ErrCommit       = errors.New("could not commit to svn repository")
)

type Config struct {
	Root     string
	Projects []Project
	Quiet    bool
	Verbose  bool
	Only     string        // glob filter on project names (optional)
	Timeout  time.Duration // per external command, 0 means no limit
	Out      io.Writer     // defaults to os.Stderr
}

// Project is one entry of the plugins configuration.
type Project struct {
	Name         string
	OriginURL    string
	OriginBranch string // empty means the origin's default branch
	DistURL      string
}

func (p Project) MirrorDir(root string) string {
	return filepath.Join(root, "git", p.Name)
}

func (p Project) WorkingCopyDir(root string) string {
	return filepath.Join(root, "svn", p.Name)
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkippedMirrorFetchFailed
	OutcomeSkippedDistCheckoutFailed
	OutcomeSkippedCommitFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkippedMirrorFetchFailed:
		return "skipped: git fetch failed"
	case OutcomeSkippedDistCheckoutFailed:
		return "skipped: svn checkout failed"
	case OutcomeSkippedCommitFailed:
		return "skipped: svn commit failed"
	}
	return "unknown"
}

type ProjectResult struct {
	Name    string
	Outcome Outcome
	Release string // tag created under tags/, empty if none
	Err     error
}

type Result struct {
	Updated  []ProjectResult
	Skipped  []ProjectResult
	Warnings []string
}

// Failed reports whether any project was skipped.
func (r Result) Failed() bool {
	return len(r.Skipped) > 0
}
