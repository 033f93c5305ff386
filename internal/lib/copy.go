// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const gitMetaDir = ".git"

// Replicator copies a mirror's tree into a trunk directory.
// Files and directories are created or overwritten; nothing in the
// destination is ever removed. Entries named .git are skipped at any depth.
type Replicator struct {
	Src billy.Filesystem
	Dst billy.Filesystem
}

func NewReplicator(srcDir, dstDir string) Replicator {
	return Replicator{Src: osfs.New(srcDir), Dst: osfs.New(dstDir)}
}

// Copy walks Src and returns the number of regular files written.
func (r Replicator) Copy() (int, error) {
	var n int
	err := util.Walk(r.Src, "", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if name == "" {
			return r.Dst.MkdirAll("", 0o755)
		}
		if filepath.Base(name) == gitMetaDir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case info.IsDir():
			return r.Dst.MkdirAll(name, info.Mode().Perm()|0o700)
		case info.Mode()&os.ModeSymlink != 0:
			return r.copySymlink(name)
		case info.Mode().IsRegular():
			n++
			return r.copyFile(name, info.Mode().Perm())
		}
		return nil
	})
	return n, err
}

func (r Replicator) copyFile(name string, perm os.FileMode) error {
	if fi, err := r.Dst.Lstat(name); err == nil && !fi.Mode().IsRegular() {
		if err := util.RemoveAll(r.Dst, name); err != nil {
			return err
		}
	}

	src, err := r.Src.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := r.Dst.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return err
	}

	// OpenFile only applies perm to new files.
	if ch, ok := r.Dst.(billy.Change); ok {
		return ch.Chmod(name, perm)
	}
	return nil
}

func (r Replicator) copySymlink(name string) error {
	target, err := r.Src.Readlink(name)
	if err != nil {
		return err
	}
	if _, err := r.Dst.Lstat(name); err == nil {
		if err := util.RemoveAll(r.Dst, name); err != nil {
			return err
		}
	}
	return r.Dst.Symlink(target, name)
}
