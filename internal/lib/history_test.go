// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo}
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@example.org", When: when}
}

func (r *testRepo) commit(file, message string, when time.Time) plumbing.Hash {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.dir, file), []byte(message), 0o644))
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add(file)
	require.NoError(r.t, err)
	hash, err := wt.Commit(message, &git.CommitOptions{Author: signature(when), Committer: signature(when)})
	require.NoError(r.t, err)
	return hash
}

func (r *testRepo) tag(name string, hash plumbing.Hash, annotatedAt *time.Time) {
	r.t.Helper()
	var opts *git.CreateTagOptions
	if annotatedAt != nil {
		opts = &git.CreateTagOptions{Tagger: signature(*annotatedAt), Message: "Release " + name}
	}
	_, err := r.repo.CreateTag(name, hash, opts)
	require.NoError(r.t, err)
}

var day = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestGitHistoryLatestMessage(t *testing.T) {
	r := newTestRepo(t)
	r.commit("a.txt", "First", day)
	r.commit("b.txt", "Release 1.1\n\nWith a body.\n", day.Add(time.Hour))

	msg, err := GitHistory{}.LatestMessage(r.dir)
	require.NoError(t, err)
	assert.Equal(t, "Release 1.1\n\nWith a body.", msg)
}

func TestGitHistoryLatestTag(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit("a.txt", "First", day)
	second := r.commit("b.txt", "Second", day.AddDate(0, 1, 0))
	r.commit("c.txt", "Untagged work", day.AddDate(0, 2, 0))

	// Tag names sort the other way round to make sure order comes from
	// the commits.
	r.tag("v1.1", first, nil)
	r.tag("v1.0", second, nil)

	tag, err := GitHistory{}.LatestTag(r.dir)
	require.NoError(t, err)
	assert.Equal(t, "v1.0", tag)
}

func TestGitHistoryLatestTagAnnotated(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit("a.txt", "First", day)
	second := r.commit("b.txt", "Second", day.Add(time.Hour))

	tagged := day.Add(2 * time.Hour)
	r.tag("v1.0", first, &tagged)
	r.tag("v1.1", second, &tagged)
	// Same commit: the annotated tag wins over the lightweight one.
	r.tag("latest", second, nil)

	tag, err := GitHistory{}.LatestTag(r.dir)
	require.NoError(t, err)
	assert.Equal(t, "v1.1", tag)
}

func TestGitHistoryNoTags(t *testing.T) {
	r := newTestRepo(t)
	r.commit("a.txt", "First", day)

	tag, err := GitHistory{}.LatestTag(r.dir)
	require.NoError(t, err)
	assert.Empty(t, tag)
}

func TestGitHistoryNotARepository(t *testing.T) {
	dir := t.TempDir()

	_, err := GitHistory{}.LatestTag(dir)
	assert.Error(t, err)
	_, err = GitHistory{}.LatestMessage(dir)
	assert.Error(t, err)
}

func TestTagCandidateNewerThan(t *testing.T) {
	older := tagCandidate{name: "b", committed: day}
	newer := tagCandidate{name: "a", committed: day.Add(time.Second)}
	assert.True(t, newer.newerThan(older))
	assert.False(t, older.newerThan(newer))

	light := tagCandidate{name: "z", committed: day}
	annotated := tagCandidate{name: "a", committed: day, annotated: true}
	assert.True(t, annotated.newerThan(light))

	early := tagCandidate{name: "z", committed: day, annotated: true, tagged: day}
	late := tagCandidate{name: "a", committed: day, annotated: true, tagged: day.Add(time.Minute)}
	assert.True(t, late.newerThan(early))

	assert.True(t, tagCandidate{name: "v2"}.newerThan(tagCandidate{name: "v1"}))
}
