// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"context"
	"io"
	"os"
)

// Mirror is the local clone of a project's git origin.
type Mirror struct {
	Path   string
	URL    string
	Branch string
	runner Runner
	out    io.Writer
}

func (m Mirror) Exists() bool {
	_, err := os.Stat(m.Path)
	return err == nil
}

// Sync clones the origin if the mirror does not exist yet and pulls
// otherwise. A directory left behind by a failed clone is pulled into on
// the next run.
func (m Mirror) Sync(ctx context.Context) error {
	if m.Exists() {
		return m.pull(ctx)
	}
	return m.clone(ctx)
}

func (m Mirror) clone(ctx context.Context) error {
	args := []string{"clone", m.URL, m.Path}
	if m.Branch != "" {
		args = append(args, "--branch", m.Branch)
	}
	_, err := m.run(ctx, "", args...)
	return err
}

func (m Mirror) pull(ctx context.Context) error {
	args := []string{"pull", m.URL}
	if m.Branch != "" {
		args = append(args, m.Branch)
	}
	_, err := m.run(ctx, m.Path, args...)
	return err
}

func (m Mirror) run(ctx context.Context, dir string, args ...string) (ExecResult, error) {
	c := Command{Dir: dir, Name: "git", Args: args, Stdout: m.out, Stderr: m.out}
	res := m.runner.Run(ctx, c)
	return res, res.Error(c)
}
