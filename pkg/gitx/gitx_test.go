package gitx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a scratch repository with one committed file.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	ctx := context.Background()
	mustGit := func(args ...string) {
		t.Helper()
		_, err := Output(ctx, dir, args...)
		require.NoError(t, err)
	}

	mustGit("init", "-q")
	mustGit("config", "user.email", "test@example.com")
	mustGit("config", "user.name", "test")
	mustGit("config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.txt"), []byte("base\n"), 0o644))
	mustGit("add", "base.txt")
	mustGit("commit", "-q", "-m", "init")
	return dir
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTopLevelAndGitDir(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	top, err := TopLevel(ctx, dir)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, top)

	gitDir, err := GitDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, ".git"), gitDir)

	hooks, err := HooksPath(ctx, dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(hooks))
	assert.Equal(t, "hooks", filepath.Base(hooks))
}

func TestTopLevelOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := TopLevel(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestStagedFiles(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	write(t, dir, "staged.py", "x = 1\n")
	write(t, dir, "unstaged.py", "y = 2\n")
	_, err := Output(ctx, dir, "add", "staged.py")
	require.NoError(t, err)

	files, err := StagedFiles(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"staged.py"}, files)
}

func TestStagedFilesExcludesDeletions(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	_, err := Output(ctx, dir, "rm", "-q", "base.txt")
	require.NoError(t, err)

	files, err := StagedFiles(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIntentToAddFiles(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	write(t, dir, "later.go", "package later\n")
	_, err := Output(ctx, dir, "add", "--intent-to-add", "later.go")
	require.NoError(t, err)

	files, err := IntentToAddFiles(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"later.go"}, files)
}

func TestAllFiles(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	write(t, dir, "second.md", "# two\n")
	_, err := Output(ctx, dir, "add", "second.md")
	require.NoError(t, err)
	_, err = Output(ctx, dir, "commit", "-q", "-m", "second")
	require.NoError(t, err)

	files, err := AllFiles(ctx, dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"base.txt", "second.md"}, files)
}

func TestChangedFiles(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	write(t, dir, "feature.go", "package feature\n")
	_, err := Output(ctx, dir, "add", "feature.go")
	require.NoError(t, err)
	_, err = Output(ctx, dir, "commit", "-q", "-m", "feature")
	require.NoError(t, err)

	files, err := ChangedFiles(ctx, dir, "HEAD~1", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature.go"}, files)
}

func TestWorktreeDiffDetectsModification(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	before, err := WorktreeDiff(ctx, dir)
	require.NoError(t, err)

	write(t, dir, "base.txt", "changed\n")

	after, err := WorktreeDiff(ctx, dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}
