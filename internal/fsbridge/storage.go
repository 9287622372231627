// Package fsbridge adapts the native fs.Filesystem to go-billy and lays
// git storage out on it.
package fsbridge

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// MinCacheSize is used when a non-positive cache size is requested.
const MinCacheSize = 100

// NewStorage creates git object storage on fs with an LRU object cache.
func NewStorage(fs billy.Filesystem, cacheSize int) *filesystem.Storage {
	if cacheSize <= 0 {
		cacheSize = MinCacheSize
	}
	return filesystem.NewStorage(fs, cache.NewObjectLRU(cache.FileSize(cacheSize)))
}

// Layout is the storage and optional worktree of one repository.
type Layout struct {
	Storage  *filesystem.Storage
	Worktree billy.Filesystem
}

// Scope chroots fs to dir. Bare repositories keep their storage at the root,
// others in a .git subdirectory next to the worktree.
func Scope(fs billy.Filesystem, dir string, bare bool, cacheSize int) (Layout, error) {
	scoped, err := fs.Chroot(dir)
	if err != nil {
		return Layout{}, err
	}
	if bare {
		return Layout{Storage: NewStorage(scoped, cacheSize)}, nil
	}

	dotGit, err := scoped.Chroot(".git")
	if err != nil {
		return Layout{}, err
	}
	return Layout{Storage: NewStorage(dotGit, cacheSize), Worktree: scoped}, nil
}
