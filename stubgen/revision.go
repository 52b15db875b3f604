package stubgen

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/teranos/stubgen/errors"
)

// SourceRevision describes the checked-out commit of the git repository
// containing dir, e.g. "main@1a2b3c4". It returns "" without error when dir
// is not inside a repository or the repository has no commits yet.
func SourceRevision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to open repository at %s", dir)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", errors.Wrap(err, "failed to resolve HEAD")
	}

	hash := ref.Hash().String()[:7]
	if ref.Name().IsBranch() {
		return ref.Name().Short() + "@" + hash, nil
	}
	return hash, nil
}
