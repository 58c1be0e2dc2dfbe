// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitRepo initializes a non-bare Git repository in dir.
func InitRepo(t testing.TB, dir string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init git repository in %s: %v", dir, err)
	}
	return repo
}

// StageFiles adds the given worktree-relative, slash-separated paths to the index.
func StageFiles(t testing.TB, repo *git.Repository, paths ...string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			t.Fatalf("failed to stage %s: %v", p, err)
		}
	}
}

// Commit records the current index with a fixed author.
func Commit(t testing.TB, repo *git.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "modhook test",
			Email: "test@example.com",
			When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}
