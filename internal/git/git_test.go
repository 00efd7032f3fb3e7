package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepository(t *testing.T, remoteURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.c"), []byte("int main(void) { return 0; }\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("src/main.c")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "scanio", Email: "scanio@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	if remoteURL != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remoteURL}})
		require.NoError(t, err)
	}
	return dir, hash.String()
}

func TestCollectRepositoryMetadata(t *testing.T) {
	dir, hash := initRepository(t, "git@github.com:octo/demo.git")

	md, err := CollectRepositoryMetadata(filepath.Join(dir, "src"))
	require.NoError(t, err)

	require.NotNil(t, md.CommitHash)
	assert.Equal(t, hash, *md.CommitHash)
	require.NotNil(t, md.BranchName)
	assert.Equal(t, "master", *md.BranchName)
	require.NotNil(t, md.RemoteURL)
	assert.Equal(t, "git@github.com:octo/demo.git", *md.RemoteURL)
	require.NotNil(t, md.Origin)
	assert.Equal(t, "octo", md.Origin.Owner)
	assert.Equal(t, "demo", md.Origin.Repository)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	root, err := filepath.EvalSymlinks(md.RepoRootFolder)
	require.NoError(t, err)
	assert.Equal(t, resolved, root)
}

func TestCollectRepositoryMetadataWithoutRemote(t *testing.T) {
	dir, _ := initRepository(t, "")

	md, err := CollectRepositoryMetadata(dir)
	require.NoError(t, err)
	assert.NotNil(t, md.CommitHash)
	assert.Nil(t, md.RemoteURL)
	assert.Nil(t, md.Origin)
}

func TestCollectRepositoryMetadataNotARepository(t *testing.T) {
	_, err := CollectRepositoryMetadata(t.TempDir())
	assert.Error(t, err)

	_, err = CollectRepositoryMetadata("")
	assert.Error(t, err)
}

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{name: "https", url: "https://github.com/octo/demo", owner: "octo", repo: "demo"},
		{name: "https with suffix", url: "https://github.com/octo/demo.git", owner: "octo", repo: "demo"},
		{name: "scp-like", url: "git@github.com:octo/demo.git", owner: "octo", repo: "demo"},
		{name: "ssh scheme", url: "ssh://git@github.com/octo/demo.git", owner: "octo", repo: "demo"},
		{name: "enterprise host", url: "https://git.example.com/platform/api.git", owner: "platform", repo: "api"},
		{name: "no repository", url: "https://git.example.com/platform", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, err := ParseOrigin(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, origin.Owner)
			assert.Equal(t, tt.repo, origin.Repository)
		})
	}
}
