package gitfixture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	defaultAuthorNameConstant           = "Gitstamp Fixture"
	defaultAuthorEmailConstant          = "fixture@example.com"
	defaultCommitMessageConstant        = "initial commit"
	defaultFileNameConstant             = "README.md"
	defaultFileContentConstant          = "fixture\n"
	fixtureFilePermissionsConstant      = 0o644
	fixtureDirectoryPermissionsConstant = 0o755
	pacificOffsetSecondsConstant        = -8 * 60 * 60
)

// CommitDate is the committer date recorded on every fixture commit.
var CommitDate = time.Date(2016, time.January, 11, 11, 50, 59, 0, time.FixedZone("", pacificOffsetSecondsConstant))

// CommitDateText is CommitDate rendered the way `git log --pretty=format:%cd` prints it.
const CommitDateText = "Mon Jan 11 11:50:59 2016 -0800"

// DefaultBranch is the branch go-git initializes repositories with.
const DefaultBranch = "master"

// Options configures the initial commit of a fixture repository.
type Options struct {
	Files map[string]string
}

// Repository is a git repository rooted in a test temporary directory.
type Repository struct {
	Path       string
	repository *git.Repository
}

// NewRepository initializes a repository with a single commit containing the provided files.
func NewRepository(testInstance testing.TB, options Options) *Repository {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()
	resolvedPath, resolveError := filepath.EvalSymlinks(repositoryPath)
	require.NoError(testInstance, resolveError)

	repository, initError := git.PlainInit(resolvedPath, false)
	require.NoError(testInstance, initError)

	fixture := &Repository{Path: resolvedPath, repository: repository}

	files := options.Files
	if len(files) == 0 {
		files = map[string]string{defaultFileNameConstant: defaultFileContentConstant}
	}
	fixture.Commit(testInstance, defaultCommitMessageConstant, files)
	return fixture
}

// Commit writes the files, stages them, and records a commit. It returns the commit hash.
func (fixture *Repository) Commit(testInstance testing.TB, message string, files map[string]string) string {
	testInstance.Helper()

	worktree, worktreeError := fixture.repository.Worktree()
	require.NoError(testInstance, worktreeError)

	for fileName, content := range files {
		fixture.WriteFile(testInstance, fileName, content)
		_, addError := worktree.Add(fileName)
		require.NoError(testInstance, addError)
	}

	signature := &object.Signature{Name: defaultAuthorNameConstant, Email: defaultAuthorEmailConstant, When: CommitDate}
	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{Author: signature, Committer: signature})
	require.NoError(testInstance, commitError)
	return commitHash.String()
}

// WriteFile writes content to a path relative to the repository root without staging it.
func (fixture *Repository) WriteFile(testInstance testing.TB, relativePath string, content string) {
	testInstance.Helper()

	absolutePath := filepath.Join(fixture.Path, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), fixtureFilePermissionsConstant))
}

// RemoveFile deletes a path relative to the repository root.
func (fixture *Repository) RemoveFile(testInstance testing.TB, relativePath string) {
	testInstance.Helper()
	require.NoError(testInstance, os.Remove(filepath.Join(fixture.Path, filepath.FromSlash(relativePath))))
}

// HeadHash returns the commit hash HEAD points at.
func (fixture *Repository) HeadHash(testInstance testing.TB) string {
	testInstance.Helper()

	head, headError := fixture.repository.Head()
	require.NoError(testInstance, headError)
	return head.Hash().String()
}

// CreateBranch creates a branch at HEAD and checks it out.
func (fixture *Repository) CreateBranch(testInstance testing.TB, branchName string) {
	testInstance.Helper()

	worktree, worktreeError := fixture.repository.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
		Create: true,
		Keep:   true,
	}))
}

// DetachHead checks out the provided commit hash directly.
func (fixture *Repository) DetachHead(testInstance testing.TB, commitHash string) {
	testInstance.Helper()

	worktree, worktreeError := fixture.repository.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.Checkout(&git.CheckoutOptions{
		Hash: plumbing.NewHash(commitHash),
		Keep: true,
	}))
}

// GitDirectory returns the repository's .git directory.
func (fixture *Repository) GitDirectory() string {
	return filepath.Join(fixture.Path, git.GitDirName)
}
