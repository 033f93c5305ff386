// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Command describes one external tool invocation.
// Stdout and Stderr, if set, receive the output in addition to it being
// captured in the ExecResult.
type Command struct {
	Dir    string
	Name   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (r ExecResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Error returns a descriptive error for a failed invocation, or nil.
// The last line written to stderr is usually the one that explains it.
func (r ExecResult) Error(c Command) error {
	if r.OK() {
		return nil
	}
	err := r.Err
	if err == nil {
		err = fmt.Errorf("exit status %d", r.ExitCode)
	}
	if msg := lastLine(r.Stderr); msg != "" {
		return fmt.Errorf("%s: %w: %s", c, err, msg)
	}
	return fmt.Errorf("%s: %w", c, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

type Runner interface {
	Run(ctx context.Context, c Command) ExecResult
}

const waitDelay = 5 * time.Second

// ExecRunner runs commands on the local host without a shell.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, c Command) ExecResult {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Children such as ssh may hold the output pipes open after git is
	// killed.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	outw, errw := c.Stdout, c.Stderr
	if outw != nil && outw == errw {
		// os/exec copies each stream in its own goroutine.
		outw = &lockedWriter{w: outw}
		errw = outw
	}
	cmd.Stdout = teeTo(&stdout, outw)
	cmd.Stderr = teeTo(&stderr, errw)

	err := cmd.Run()
	res := ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}

	var exitErr *exec.ExitError
	var execErr *exec.Error
	switch {
	case err == nil:
	case errors.As(err, &execErr):
		res.ExitCode = 127
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
	}
	if err != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}
	return res
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
