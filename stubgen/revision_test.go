package stubgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRevision_NotARepository(t *testing.T) {
	rev, err := SourceRevision(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestSourceRevision_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := SourceRevision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestSourceRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("FreeCAD\n"), 0o644))
	_, err = wt.Add("README")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// Subdirectories resolve to the enclosing repository.
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))

	rev, err := SourceRevision(sub)
	require.NoError(t, err)
	assert.Equal(t, "master@"+hash.String()[:7], rev)
}
