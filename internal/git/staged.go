package git

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// getStagedPatches returns the changes staged in the index relative to HEAD
func (s *Service) getStagedPatches() ([]*Patch, error) {
	s.logger.Debug("Starting getStagedPatches")

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	headTree, err := s.headTree()
	if err != nil {
		return nil, err
	}

	// Status is a map; sort for a stable patch order
	paths := make([]string, 0, len(status))
	for path, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified || fileStatus.Staging == git.Untracked {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	patches := make([]*Patch, 0, len(paths))
	for _, path := range paths {
		fileStatus := status[path]
		changeType := getChangeType(fileStatus.Staging)

		oldPath := path
		if changeType == ChangeTypeRenamed && fileStatus.Extra != "" {
			oldPath = fileStatus.Extra
		}

		if changeType == ChangeTypeDeleted {
			patches = append(patches, NewPatch(s.root, "", path, changeType))
			continue
		}

		patch, err := s.stagedPatch(headTree, path, oldPath, changeType)
		if err != nil {
			s.logger.Warn("Failed to read staged file", "path", path, "error", err)
			continue
		}
		patches = append(patches, patch)
	}

	s.logger.Debug("Completed getStagedPatches", "files_found", len(patches))
	return patches, nil
}

// headTree returns the tree of HEAD, or nil for a repository without commits
func (s *Service) headTree() (*object.Tree, error) {
	headRef, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}

	headCommit, err := s.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	tree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD tree: %w", err)
	}
	return tree, nil
}

func (s *Service) stagedPatch(headTree *object.Tree, path, oldPath string, changeType ChangeType) (*Patch, error) {
	staged, err := s.indexContent(path)
	if err != nil {
		return nil, err
	}

	previous := ""
	if headTree != nil && changeType != ChangeTypeAdded {
		file, err := headTree.File(oldPath)
		switch {
		case err == nil:
			if previous, err = file.Contents(); err != nil {
				return nil, fmt.Errorf("getting HEAD file content: %w", err)
			}
		case errors.Is(err, object.ErrFileNotFound):
		default:
			return nil, fmt.Errorf("getting file from HEAD: %w", err)
		}
	}

	patch := NewPatch(s.root, path, oldPath, changeType)
	if changeType == ChangeTypeAdded {
		patch.oldPath = ""
	}

	newLine := 1
	for _, d := range diff.Do(previous, staged) {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			newLine += len(splitLines(d.Text))
		case diffmatchpatch.DiffInsert:
			for _, line := range splitLines(d.Text) {
				patch.AddLine(newLine, line)
				newLine++
			}
		}
	}

	return patch, nil
}

// indexContent reads the staged blob for path
func (s *Service) indexContent(path string) (string, error) {
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("reading index: %w", err)
	}

	entry, err := idx.Entry(path)
	if err != nil {
		return "", fmt.Errorf("finding index entry: %w", err)
	}

	blob, err := s.repo.BlobObject(entry.Hash)
	if err != nil {
		return "", fmt.Errorf("getting staged blob: %w", err)
	}

	file := object.NewFile(path, entry.Mode, blob)
	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reading staged blob: %w", err)
	}
	return content, nil
}

// getChangeType converts go-git StatusCode to our ChangeType
func getChangeType(code git.StatusCode) ChangeType {
	switch code {
	case git.Added, git.Copied:
		return ChangeTypeAdded
	case git.Modified, git.UpdatedButUnmerged:
		return ChangeTypeModified
	case git.Deleted:
		return ChangeTypeDeleted
	case git.Renamed:
		return ChangeTypeRenamed
	default:
		return ChangeTypeModified
	}
}
