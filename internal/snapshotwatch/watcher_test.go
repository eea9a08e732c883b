package snapshotwatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/gitrepo"
)

const (
	testDebounceConstant        = 20 * time.Millisecond
	testWaitTimeoutConstant     = 5 * time.Second
	testQuietPeriodConstant     = 300 * time.Millisecond
	testFilePermissionsConstant = 0o644
)

type scriptedCollectorResponse struct {
	snapshot gitrepo.Snapshot
	err      error
}

type scriptedCollector struct {
	mutex     sync.Mutex
	responses []scriptedCollectorResponse
	calls     int
}

func (collector *scriptedCollector) Collect(_ context.Context, _ string) (gitrepo.Snapshot, error) {
	collector.mutex.Lock()
	defer collector.mutex.Unlock()

	collector.calls++
	if len(collector.responses) == 0 {
		return gitrepo.Snapshot{}, errors.New("no scripted response")
	}
	next := collector.responses[0]
	if len(collector.responses) > 1 {
		collector.responses = collector.responses[1:]
	}
	return next.snapshot, next.err
}

func (collector *scriptedCollector) callCount() int {
	collector.mutex.Lock()
	defer collector.mutex.Unlock()
	return collector.calls
}

func snapshotWithCount(root string, commitCount uint64) gitrepo.Snapshot {
	return gitrepo.NewSnapshot(gitrepo.SnapshotValues{
		CommitHash:   "abc",
		Branch:       "main",
		CommitDate:   "date",
		CommitCount:  commitCount,
		WatchedFiles: []string{filepath.Join(root, ".git", "index")},
	})
}

func newRepositoryDirectory(testInstance *testing.T) string {
	testInstance.Helper()

	root := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(root, ".git", "index"), []byte("initial"), testFilePermissionsConstant))
	return root
}

type runHarness struct {
	cancel    context.CancelFunc
	snapshots chan gitrepo.Snapshot
	result    chan error
}

func startWatcher(testInstance *testing.T, collector SnapshotCollector, root string) runHarness {
	testInstance.Helper()

	watcher, err := NewWatcher(Dependencies{Collector: collector, Logger: zap.NewNop(), Debounce: testDebounceConstant})
	require.NoError(testInstance, err)

	executionContext, cancel := context.WithCancel(context.Background())
	harness := runHarness{cancel: cancel, snapshots: make(chan gitrepo.Snapshot, 16), result: make(chan error, 1)}
	go func() {
		harness.result <- watcher.Run(executionContext, root, func(snapshot gitrepo.Snapshot) error {
			harness.snapshots <- snapshot
			return nil
		})
	}()
	testInstance.Cleanup(cancel)
	return harness
}

func (harness runHarness) nextSnapshot(testInstance *testing.T) gitrepo.Snapshot {
	testInstance.Helper()

	select {
	case snapshot := <-harness.snapshots:
		return snapshot
	case runError := <-harness.result:
		testInstance.Fatalf("watcher stopped early: %v", runError)
	case <-time.After(testWaitTimeoutConstant):
		testInstance.Fatalf("timed out waiting for snapshot")
	}
	return gitrepo.Snapshot{}
}

func (harness runHarness) stop(testInstance *testing.T) error {
	testInstance.Helper()

	harness.cancel()
	select {
	case runError := <-harness.result:
		return runError
	case <-time.After(testWaitTimeoutConstant):
		testInstance.Fatalf("watcher did not stop")
	}
	return nil
}

func touch(testInstance *testing.T, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte(content), testFilePermissionsConstant))
}

func TestNewWatcherValidatesDependencies(t *testing.T) {
	_, err := NewWatcher(Dependencies{Logger: zap.NewNop()})
	require.ErrorIs(t, err, ErrCollectorNotConfigured)

	_, err = NewWatcher(Dependencies{Collector: &scriptedCollector{}})
	require.ErrorIs(t, err, ErrLoggerNotConfigured)

	watcher, err := NewWatcher(Dependencies{Collector: &scriptedCollector{}, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.Equal(t, DefaultDebounce, watcher.debounce)
}

func TestRunReportsInitialAndChangedSnapshots(t *testing.T) {
	root := newRepositoryDirectory(t)
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{
		{snapshot: snapshotWithCount(root, 1)},
		{snapshot: snapshotWithCount(root, 2)},
	}}
	harness := startWatcher(t, collector, root)

	require.Equal(t, uint64(1), harness.nextSnapshot(t).CommitCount())

	touch(t, filepath.Join(root, ".git", "index"), "updated")
	require.Equal(t, uint64(2), harness.nextSnapshot(t).CommitCount())

	require.NoError(t, harness.stop(t))
}

func TestRunReportsChangesMadeDuringInitialReport(t *testing.T) {
	root := newRepositoryDirectory(t)
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{
		{snapshot: snapshotWithCount(root, 1)},
		{snapshot: snapshotWithCount(root, 2)},
	}}
	watcher, err := NewWatcher(Dependencies{Collector: collector, Logger: zap.NewNop(), Debounce: testDebounceConstant})
	require.NoError(t, err)

	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	reported := make(chan uint64, 4)
	result := make(chan error, 1)
	go func() {
		result <- watcher.Run(executionContext, root, func(snapshot gitrepo.Snapshot) error {
			if snapshot.CommitCount() == 1 {
				if writeError := os.WriteFile(filepath.Join(root, ".git", "index"), []byte("staged during report"), testFilePermissionsConstant); writeError != nil {
					return writeError
				}
			}
			reported <- snapshot.CommitCount()
			return nil
		})
	}()

	for _, expectedCount := range []uint64{1, 2} {
		select {
		case commitCount := <-reported:
			require.Equal(t, expectedCount, commitCount)
		case runError := <-result:
			t.Fatalf("watcher stopped early: %v", runError)
		case <-time.After(testWaitTimeoutConstant):
			t.Fatalf("timed out waiting for snapshot %d, collector calls=%d", expectedCount, collector.callCount())
		}
	}

	cancel()
	require.NoError(t, <-result)
}

func TestRunRecollectsAfterRegisteringNewDirectories(t *testing.T) {
	root := newRepositoryDirectory(t)
	referenceDirectory := filepath.Join(root, ".git", "refs", "heads")
	require.NoError(t, os.MkdirAll(referenceDirectory, 0o755))

	snapshotWithReference := func(commitCount uint64) gitrepo.Snapshot {
		return gitrepo.NewSnapshot(gitrepo.SnapshotValues{
			CommitHash:   "abc",
			Branch:       "main",
			CommitDate:   "date",
			CommitCount:  commitCount,
			WatchedFiles: []string{filepath.Join(referenceDirectory, "main"), filepath.Join(root, ".git", "index")},
		})
	}
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{
		{snapshot: snapshotWithReference(1)},
		{snapshot: snapshotWithReference(2)},
	}}
	harness := startWatcher(t, collector, root)

	require.Equal(t, uint64(1), harness.nextSnapshot(t).CommitCount())
	require.Equal(t, uint64(2), harness.nextSnapshot(t).CommitCount())

	time.Sleep(testQuietPeriodConstant)
	require.Equal(t, 2, collector.callCount())
	require.NoError(t, harness.stop(t))
}

func TestRunSuppressesUnchangedSnapshots(t *testing.T) {
	root := newRepositoryDirectory(t)
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{
		{snapshot: snapshotWithCount(root, 1)},
		{snapshot: snapshotWithCount(root, 1)},
		{snapshot: snapshotWithCount(root, 3)},
	}}
	harness := startWatcher(t, collector, root)
	harness.nextSnapshot(t)

	touch(t, filepath.Join(root, ".git", "index"), "same state")
	require.Eventually(t, func() bool { return collector.callCount() >= 2 }, testWaitTimeoutConstant, testDebounceConstant)

	touch(t, filepath.Join(root, ".git", "index"), "new state")
	require.Equal(t, uint64(3), harness.nextSnapshot(t).CommitCount())
	require.NoError(t, harness.stop(t))
}

func TestRunIgnoresUnrelatedMetadataFiles(t *testing.T) {
	root := newRepositoryDirectory(t)
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{{snapshot: snapshotWithCount(root, 1)}}}
	harness := startWatcher(t, collector, root)
	harness.nextSnapshot(t)

	touch(t, filepath.Join(root, ".git", "COMMIT_EDITMSG"), "message")
	time.Sleep(testQuietPeriodConstant)
	require.Equal(t, 1, collector.callCount())
	require.NoError(t, harness.stop(t))
}

func TestRunReturnsCollectionErrors(t *testing.T) {
	root := newRepositoryDirectory(t)
	collectFailure := gitrepo.GitRunFailedError{ExitCode: 128}
	collector := &scriptedCollector{responses: []scriptedCollectorResponse{
		{snapshot: snapshotWithCount(root, 1)},
		{err: collectFailure},
	}}
	harness := startWatcher(t, collector, root)
	harness.nextSnapshot(t)

	touch(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/other\n")

	select {
	case runError := <-harness.result:
		var runFailure gitrepo.GitRunFailedError
		require.ErrorAs(t, runError, &runFailure)
	case <-time.After(testWaitTimeoutConstant):
		t.Fatal("watcher did not report the collection failure")
	}
}

func TestRunReturnsInitialFailures(t *testing.T) {
	root := newRepositoryDirectory(t)
	watcher, err := NewWatcher(Dependencies{Collector: &scriptedCollector{responses: []scriptedCollectorResponse{{err: gitrepo.InvalidCommitCountError{Root: root}}}}, Logger: zap.NewNop()})
	require.NoError(t, err)

	runError := watcher.Run(context.Background(), root, func(gitrepo.Snapshot) error { return nil })
	require.ErrorAs(t, runError, &gitrepo.InvalidCommitCountError{})

	callbackFailure := errors.New("callback failed")
	watcher, err = NewWatcher(Dependencies{Collector: &scriptedCollector{responses: []scriptedCollectorResponse{{snapshot: snapshotWithCount(root, 1)}}}, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.ErrorIs(t, watcher.Run(context.Background(), root, func(gitrepo.Snapshot) error { return callbackFailure }), callbackFailure)

	require.ErrorIs(t, watcher.Run(context.Background(), root, nil), ErrCallbackNotConfigured)
}

func TestWatchedDirectoriesDeduplicates(t *testing.T) {
	root := filepath.Join("/", "repository")
	directories := watchedDirectories(root, []string{
		filepath.Join(root, ".git", "refs", "heads", "main"),
		filepath.Join(root, ".git", "index"),
		filepath.Join(root, ".git", "packed-refs"),
	})
	require.Equal(t, []string{
		filepath.Join(root, ".git"),
		filepath.Join(root, ".git", "refs", "heads"),
	}, directories)
}

type recordingDirectoryWatcher struct {
	added   []string
	removed []string
}

func (watcher *recordingDirectoryWatcher) Add(name string) error {
	if filepath.Base(name) == "missing" {
		return os.ErrNotExist
	}
	watcher.added = append(watcher.added, name)
	return nil
}

func (watcher *recordingDirectoryWatcher) Remove(name string) error {
	watcher.removed = append(watcher.removed, name)
	return nil
}

func TestDirectoryRegistrationsUpdate(t *testing.T) {
	recorder := &recordingDirectoryWatcher{}
	registrations := newDirectoryRegistrations(recorder, zap.NewNop())

	added, err := registrations.update([]string{"/r/.git", "/r/.git/refs/heads", "/r/missing"})
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, []string{"/r/.git", "/r/.git/refs/heads"}, recorder.added)
	require.Equal(t, []string{"/r/.git", "/r/.git/refs/heads"}, registrations.list())

	added, err = registrations.update([]string{"/r/.git", "/r/.git/refs/heads/feature"})
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, []string{"/r/.git/refs/heads"}, recorder.removed)
	require.Equal(t, []string{"/r/.git", "/r/.git/refs/heads/feature"}, registrations.list())

	added, err = registrations.update([]string{"/r/.git"})
	require.NoError(t, err)
	require.False(t, added)
	require.Equal(t, []string{"/r/.git"}, registrations.list())
}
