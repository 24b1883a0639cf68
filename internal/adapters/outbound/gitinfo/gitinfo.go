package gitinfo

import "github.com/go-git/go-git/v5"

// GitInfoAdapter implements domain.CommitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

// Head returns the HEAD commit and branch name. Both are empty outside a
// repository or before the first commit; branch is empty on a detached HEAD.
func (g *GitInfoAdapter) Head(projectPath string) (commit, branch string) {
	repo, err := open(projectPath)
	if err != nil {
		return "", ""
	}
	head, err := repo.Head()
	if err != nil {
		return "", ""
	}
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return head.Hash().String(), branch
}

// open finds the repository containing projectPath, so auditing a
// subdirectory of a checkout still reports its commit.
func open(projectPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
}
