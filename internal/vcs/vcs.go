// Package vcs reads version control state of a project root.
// It never writes to the repository.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultBranch is reported whenever the branch cannot be determined.
const DefaultBranch = "main"

// Status is a read-only summary of a repository.
type Status struct {
	Branch    string `json:"branch"`
	Head      string `json:"head,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Modified  int    `json:"modified"`
	Untracked int    `json:"untracked"`
}

// Clean reports whether the worktree has no changes.
func (s *Status) Clean() bool {
	return s.Modified == 0 && s.Untracked == 0
}

func open(root string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
}

// CurrentBranch returns the checked-out branch of the repository containing
// root. It returns DefaultBranch for detached heads, non-repositories and any
// other failure.
func CurrentBranch(root string) string {
	repo, err := open(root)
	if err != nil {
		return DefaultBranch
	}
	return branchOf(repo)
}

func branchOf(repo *git.Repository) string {
	// unresolved so that an unborn branch still reports its name
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return DefaultBranch
	}
	if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
		return ref.Target().Short()
	}
	return DefaultBranch
}

// GetStatus summarises the repository containing root. The worktree scan can
// be slow on large trees, so it runs until ctx is done.
func GetStatus(ctx context.Context, root string) (*Status, error) {
	type result struct {
		st  *Status
		err error
	}
	ch := make(chan result, 1)
	go func() {
		st, err := status(root)
		ch <- result{st, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.st, r.err
	}
}

func status(root string) (*Status, error) {
	repo, err := open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	st := &Status{Branch: branchOf(repo)}

	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// no commits yet
	case err != nil:
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	default:
		st.Head = head.Hash().String()[:7]
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			st.Subject = firstLine(commit.Message)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repository
		return st, nil
	}
	files, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}
	for _, fs := range files {
		switch {
		case fs.Worktree == git.Untracked:
			st.Untracked++
		case fs.Worktree != git.Unmodified || fs.Staging != git.Unmodified:
			st.Modified++
		}
	}
	return st, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
