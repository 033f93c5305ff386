// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"context"
	"io"
	"path"
	"path/filepath"
)

// WorkingCopy is the local svn checkout of a project's distribution
// repository.
type WorkingCopy struct {
	Path   string
	URL    string
	runner Runner
	out    io.Writer
}

func (w WorkingCopy) Trunk() string {
	return filepath.Join(w.Path, "trunk")
}

// Checkout runs svn checkout unconditionally; svn updates an existing
// checkout of the same URL in place.
func (w WorkingCopy) Checkout(ctx context.Context) error {
	c := Command{Name: "svn", Args: []string{"checkout", w.URL, w.Path}, Stdout: w.out, Stderr: w.out}
	return w.runner.Run(ctx, c).Error(c)
}

// AddNew schedules every unversioned path below trunk for addition.
// Stderr is not shown: svn complains about paths that are already
// versioned.
func (w WorkingCopy) AddNew(ctx context.Context) ExecResult {
	return w.runner.Run(ctx, Command{Dir: w.Path, Name: "svn", Args: []string{"add", "--force", "trunk"}, Stdout: w.out})
}

// RemoveTag schedules tags/<release> for deletion.
func (w WorkingCopy) RemoveTag(ctx context.Context, release string) ExecResult {
	return w.runner.Run(ctx, w.command(nil, "rm", "--force", tagPath(release)))
}

// Tag copies the current trunk to tags/<release>.
func (w WorkingCopy) Tag(ctx context.Context, release string) error {
	c := w.command(w.out, "copy", "trunk", tagPath(release))
	return w.runner.Run(ctx, c).Error(c)
}

func (w WorkingCopy) Status(ctx context.Context) ExecResult {
	return w.runner.Run(ctx, w.command(w.out, "status"))
}

func (w WorkingCopy) Commit(ctx context.Context, message string) error {
	c := w.command(w.out, "commit", "-m", message)
	return w.runner.Run(ctx, c).Error(c)
}

func (w WorkingCopy) command(out io.Writer, args ...string) Command {
	return Command{Dir: w.Path, Name: "svn", Args: args, Stdout: out, Stderr: out}
}

func tagPath(release string) string {
	return path.Join("tags", release)
}
