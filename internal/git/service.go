package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/tildaslashalef/nestlint/internal/loggy"
)

// ErrNotRepository is returned when no Git working tree encloses a directory
var ErrNotRepository = errors.New("not inside a git working tree")

// Service provides Git operations
type Service struct {
	logger *loggy.Logger
	repo   *git.Repository
	root   string
}

// NewService creates a new Git service
func NewService(logger *loggy.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// discover opens the repository enclosing path, walking up parent directories
func discover(path string) (*git.Repository, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, "", fmt.Errorf("opening git repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, "", fmt.Errorf("%w: %s is a bare repository", ErrNotRepository, abs)
		}
		return nil, "", fmt.Errorf("getting worktree: %w", err)
	}

	return repo, worktree.Filesystem.Root(), nil
}

// InitRepo opens the repository enclosing repoPath for later diff operations
func (s *Service) InitRepo(repoPath string) error {
	repo, root, err := discover(repoPath)
	if err != nil {
		return err
	}

	s.repo = repo
	s.root = root
	s.logger.Debug("Opened git repository", "path", repoPath, "root", root)
	return nil
}

// Root returns the working tree root of the opened repository
func (s *Service) Root() string {
	return s.root
}

// WorkTreeRoot returns the root of the working tree enclosing dir
func (s *Service) WorkTreeRoot(dir string) (string, error) {
	if s.repo != nil && s.root != "" && isWithin(s.root, dir) {
		return s.root, nil
	}

	_, root, err := discover(dir)
	if err != nil {
		return "", err
	}
	return root, nil
}

func isWithin(root, dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ensureRepo ensures the repository is initialized before performing operations
func (s *Service) ensureRepo() error {
	if s.repo == nil {
		return fmt.Errorf("git repository not initialized")
	}
	return nil
}

// HasGitRepo checks if the provided path is inside a Git working tree
func (s *Service) HasGitRepo(path string) bool {
	if _, _, err := discover(path); err != nil {
		s.logger.Debug("Not a valid Git repository", "path", path, "error", err)
		return false
	}

	return true
}

// RemoteURL returns the first configured URL of the named remote
func (s *Service) RemoteURL(name string) (string, error) {
	if err := s.ensureRepo(); err != nil {
		return "", err
	}

	remote, err := s.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", name)
	}
	return urls[0], nil
}

// GetPatches returns the change set described by the request
func (s *Service) GetPatches(req DiffRequest) ([]*Patch, error) {
	if req.DiffType == DiffTypeUnified {
		return s.getUnifiedPatches(req.DiffFile)
	}

	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	switch req.DiffType {
	case DiffTypeStaged:
		return s.getStagedPatches()
	case DiffTypeCommit:
		return s.getCommitPatches(req.CommitID)
	case DiffTypeBranch:
		return s.getBranchPatches(req.BranchOne, req.BranchTwo)
	default:
		return nil, fmt.Errorf("unsupported diff type: %s", req.DiffType)
	}
}

// getCommitPatches returns the changes introduced by a commit
func (s *Service) getCommitPatches(commitID string) ([]*Patch, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(commitID))
	if err != nil {
		return nil, fmt.Errorf("resolving commit %s: %w", commitID, err)
	}

	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}

	s.logger.Debug("Processing commit",
		"hash", commit.Hash.String(),
		"author", commit.Author.Name)

	currentTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting current tree: %w", err)
	}

	// For the initial commit, diff against an empty tree so files show up as insertions
	parentTree := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("getting parent commit: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("getting parent tree: %w", err)
		}
	}

	changes, err := parentTree.Diff(currentTree)
	if err != nil {
		return nil, fmt.Errorf("getting changes: %w", err)
	}

	return s.processChanges(changes)
}

// getBranchPatches returns the changes on branch since it diverged from base
func (s *Service) getBranchPatches(base, branch string) ([]*Patch, error) {
	if branch == "" {
		head, err := s.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("getting HEAD: %w", err)
		}
		branch = head.Name().Short()
	}

	baseCommit, err := s.branchCommit(base)
	if err != nil {
		return nil, fmt.Errorf("getting base branch: %w", err)
	}

	branchCommit, err := s.branchCommit(branch)
	if err != nil {
		return nil, fmt.Errorf("getting target branch: %w", err)
	}

	// Compare against the merge base so changes made on base since the fork are ignored
	if bases, err := baseCommit.MergeBase(branchCommit); err == nil && len(bases) > 0 {
		baseCommit = bases[0]
	} else if err != nil {
		s.logger.Debug("Failed to compute merge base, using branch tip", "base", base, "error", err)
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting base tree: %w", err)
	}

	branchTree, err := branchCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting branch tree: %w", err)
	}

	changes, err := baseTree.Diff(branchTree)
	if err != nil {
		return nil, fmt.Errorf("getting diff: %w", err)
	}

	return s.processChanges(changes)
}

func (s *Service) branchCommit(name string) (*object.Commit, error) {
	ref, err := s.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return nil, fmt.Errorf("getting reference for %s: %w", name, err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit for %s: %w", name, err)
	}
	return commit, nil
}

// processChanges converts go-git Changes to patches
func (s *Service) processChanges(changes object.Changes) ([]*Patch, error) {
	patches := make([]*Patch, 0, len(changes))

	s.logger.Debug("Starting to process changes", "total_changes", len(changes))

	for _, change := range changes {
		patch, err := s.processChange(change)
		if err != nil {
			s.logger.Error("Failed to process change",
				"error", err,
				"from_name", change.From.Name,
				"to_name", change.To.Name)
			continue
		}

		patches = append(patches, patch)
	}

	return patches, nil
}

// processChange converts a single go-git Change to a Patch
func (s *Service) processChange(change *object.Change) (*Patch, error) {
	changeType := getChangeTypeFromChange(change)

	newPath := change.To.Name
	if changeType == ChangeTypeDeleted {
		newPath = ""
	}
	oldPath := change.From.Name

	patch := NewPatch(s.root, newPath, oldPath, changeType)
	if changeType == ChangeTypeDeleted {
		return patch, nil
	}

	filePatch, err := change.Patch()
	if err != nil {
		return nil, fmt.Errorf("generating patch: %w", err)
	}

	for _, fp := range filePatch.FilePatches() {
		if fp.IsBinary() {
			continue
		}

		newLine := 1
		for _, chunk := range fp.Chunks() {
			switch chunk.Type() {
			case fdiff.Equal:
				newLine += len(splitLines(chunk.Content()))
			case fdiff.Add:
				for _, line := range splitLines(chunk.Content()) {
					patch.AddLine(newLine, line)
					newLine++
				}
			}
		}
	}

	s.logger.Debug("Processed change",
		"path", newPath,
		"old_path", oldPath,
		"change_type", changeType,
		"additions", patch.Additions())

	return patch, nil
}

// splitLines splits text into lines without their terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return lines
}

// getChangeTypeFromChange determines the type of change from a git object.Change
func getChangeTypeFromChange(change *object.Change) ChangeType {
	// If From is empty (zero hash) and To exists, it's an addition
	if change.From.TreeEntry.Hash.IsZero() && !change.To.TreeEntry.Hash.IsZero() {
		return ChangeTypeAdded
	}

	// If To is empty (zero hash) and From exists, it's a deletion
	if !change.From.TreeEntry.Hash.IsZero() && change.To.TreeEntry.Hash.IsZero() {
		return ChangeTypeDeleted
	}

	if change.From.Name != "" && change.To.Name != "" && change.From.Name != change.To.Name {
		return ChangeTypeRenamed
	}

	return ChangeTypeModified
}
