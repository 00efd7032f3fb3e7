// Package git reads metadata of the local checkout the scan ran against.
package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the checkout. Pointer fields are nil when unknown.
type RepositoryMetadata struct {
	BranchName     *string
	CommitHash     *string
	RemoteURL      *string
	Origin         *Origin
	RepoRootFolder string
}

// CollectRepositoryMetadata opens the repository containing sourceFolder and reads
// the HEAD commit, the current branch and the origin remote.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return &RepositoryMetadata{}, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	md := &RepositoryMetadata{
		RepoRootFolder: filepath.Clean(sourceFolder),
	}

	repoRootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return md, err
	}
	md.RepoRootFolder = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			remoteURL := cfg.URLs[0]
			md.RemoteURL = &remoteURL
			if origin, err := ParseOrigin(remoteURL); err == nil {
				md.Origin = origin
			}
		}
	}

	return md, nil
}
