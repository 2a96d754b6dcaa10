package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/vcs"
)

// GitProvider reports branch, head commit and worktree state in-process.
type GitProvider struct {
	timeout time.Duration
}

// NewGitProvider creates a git provider.
func NewGitProvider(timeout time.Duration) *GitProvider {
	return &GitProvider{timeout: timeout}
}

// Name implements Provider.
func (g *GitProvider) Name() string { return NameGit }

// Timeout implements Provider.
func (g *GitProvider) Timeout() time.Duration { return g.timeout }

// Info implements Provider.
func (g *GitProvider) Info(ctx context.Context, root string) (*Info, error) {
	st, err := vcs.GetStatus(ctx, root)
	if err != nil {
		return nil, err
	}

	head := "no commits"
	if st.Head != "" {
		head = st.Head
		if st.Subject != "" {
			head += " " + st.Subject
		}
	}
	lines := []string{
		fmt.Sprintf("Branch: %s", st.Branch),
		fmt.Sprintf("HEAD: %s", head),
	}
	if st.Clean() {
		lines = append(lines, "Worktree: clean")
	} else {
		lines = append(lines, fmt.Sprintf("Worktree: %d modified, %d untracked", st.Modified, st.Untracked))
	}

	return &Info{Name: NameGit, Data: st, Lines: lines}, nil
}
