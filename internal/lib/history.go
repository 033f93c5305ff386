// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// History answers the questions the pipeline asks about a mirror.
type History interface {
	// LatestMessage returns the message of the HEAD commit.
	LatestMessage(dir string) (string, error)
	// LatestTag returns the tag pointing at the most recently committed
	// tagged commit. The empty string means the repository has no tags.
	LatestTag(dir string) (string, error)
}

// GitHistory reads mirror history with go-git.
type GitHistory struct{}

func (GitHistory) LatestMessage(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("read HEAD commit: %w", err)
	}
	return strings.TrimSpace(commit.Message), nil
}

type tagCandidate struct {
	name      string
	committed time.Time
	annotated bool
	tagged    time.Time
}

// newerThan orders candidates the way git rev-list --tags --max-count=1
// followed by git describe --tags picks a release: newest commit first,
// then annotated over lightweight, then the newest tagger date.
func (c tagCandidate) newerThan(o tagCandidate) bool {
	if !c.committed.Equal(o.committed) {
		return c.committed.After(o.committed)
	}
	if c.annotated != o.annotated {
		return c.annotated
	}
	if !c.tagged.Equal(o.tagged) {
		return c.tagged.After(o.tagged)
	}
	return c.name > o.name
}

func (GitHistory) LatestTag(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", dir, err)
	}
	refs, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}
	defer refs.Close()

	var best *tagCandidate
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		c, ok, err := resolveTag(repo, ref)
		if err != nil || !ok {
			return err
		}
		if best == nil || c.newerThan(*best) {
			best = &c
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve tags: %w", err)
	}
	if best == nil {
		return "", nil
	}
	return best.name, nil
}

// resolveTag peels ref down to a commit. Tags pointing at trees or blobs
// are ignored.
func resolveTag(repo *git.Repository, ref *plumbing.Reference) (tagCandidate, bool, error) {
	c := tagCandidate{name: ref.Name().Short()}

	var commit *object.Commit
	tag, err := repo.TagObject(ref.Hash())
	switch err {
	case nil:
		c.annotated = true
		c.tagged = tag.Tagger.When
		commit, err = tag.Commit()
		if err == object.ErrUnsupportedObject {
			return c, false, nil
		}
	case plumbing.ErrObjectNotFound:
		commit, err = repo.CommitObject(ref.Hash())
		if err == plumbing.ErrObjectNotFound {
			return c, false, nil
		}
	}
	if err != nil {
		return c, false, fmt.Errorf("tag %s: %w", c.name, err)
	}
	c.committed = commit.Committer.When
	return c, true, nil
}
