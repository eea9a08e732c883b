package snapshotwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/gitrepo"
)

const (
	// DefaultDebounce is the quiet period applied when no debounce is configured.
	DefaultDebounce = 200 * time.Millisecond

	gitMetadataDirectoryNameConstant    = ".git"
	headFileNameConstant                = "HEAD"
	indexFileNameConstant               = "index"
	packedRefsFileNameConstant          = "packed-refs"
	collectorMissingMessageConstant     = "snapshot collector not configured"
	loggerMissingMessageConstant        = "logger not configured"
	callbackMissingMessageConstant      = "snapshot callback not configured"
	createWatcherErrorTemplateConstant  = "create filesystem watcher: %w"
	watchDirectoryErrorTemplateConstant = "watch %s: %w"
	watcherFailureErrorTemplateConstant = "filesystem watcher failed: %w"
	watcherClosedMessageConstant        = "filesystem watcher closed unexpectedly"
	logMessageWatchingConstant          = "watching repository metadata"
	logMessageChangeDetectedConstant    = "repository metadata changed"
	logMessageSnapshotUnchangedConstant = "snapshot unchanged"
	logMessageUnwatchFailedConstant     = "could not stop watching directory"
	logMessageDirectoriesAddedConstant  = "watching new metadata directories, re-checking snapshot"
	logFieldRootConstant                = "root"
	logFieldDirectoriesConstant         = "directories"
	logFieldPathConstant                = "path"
	logFieldOperationConstant           = "operation"
)

// ErrCollectorNotConfigured indicates the watcher was created without a collector.
var ErrCollectorNotConfigured = errors.New(collectorMissingMessageConstant)

// ErrLoggerNotConfigured indicates the watcher was created without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCallbackNotConfigured indicates Run was called without a snapshot callback.
var ErrCallbackNotConfigured = errors.New(callbackMissingMessageConstant)

var errWatcherClosed = errors.New(watcherClosedMessageConstant)

// SnapshotCollector gathers repository snapshots.
type SnapshotCollector interface {
	Collect(executionContext context.Context, root string) (gitrepo.Snapshot, error)
}

// Dependencies enumerates collaborators required by the Watcher.
type Dependencies struct {
	Collector SnapshotCollector
	Logger    *zap.Logger
	Debounce  time.Duration
}

// Watcher reports repository snapshots whenever the watched git files change.
type Watcher struct {
	collector SnapshotCollector
	logger    *zap.Logger
	debounce  time.Duration
}

// NewWatcher validates dependencies and constructs a Watcher.
func NewWatcher(dependencies Dependencies) (*Watcher, error) {
	if dependencies.Collector == nil {
		return nil, ErrCollectorNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	debounce := dependencies.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{collector: dependencies.Collector, logger: dependencies.Logger, debounce: debounce}, nil
}

// Run reports the current snapshot, then reports every subsequent distinct snapshot until
// the context is cancelled. Collection and callback errors stop the watch and are returned.
func (watcher *Watcher) Run(executionContext context.Context, root string, onSnapshot func(gitrepo.Snapshot) error) error {
	if onSnapshot == nil {
		return ErrCallbackNotConfigured
	}

	fileSystemWatcher, createError := fsnotify.NewWatcher()
	if createError != nil {
		return fmt.Errorf(createWatcherErrorTemplateConstant, createError)
	}
	defer fileSystemWatcher.Close()

	registrations := newDirectoryRegistrations(fileSystemWatcher, watcher.logger)
	if _, registerError := registrations.update(watchedDirectories(root, nil)); registerError != nil {
		return registerError
	}

	current, collectError := watcher.collector.Collect(executionContext, root)
	if collectError != nil {
		return collectError
	}
	pendingCollection, registerError := watcher.register(registrations, root, current)
	if registerError != nil {
		return registerError
	}
	watcher.logger.Debug(logMessageWatchingConstant, zap.String(logFieldRootConstant, root), zap.Strings(logFieldDirectoriesConstant, registrations.list()))

	if callbackError := onSnapshot(current); callbackError != nil {
		return callbackError
	}

	relevant := relevantPaths(root, current.WatchedFiles())

	for {
		select {
		case <-executionContext.Done():
			return nil
		case event, ok := <-fileSystemWatcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if _, watched := relevant[filepath.Clean(event.Name)]; !watched {
				continue
			}
			watcher.logger.Debug(logMessageChangeDetectedConstant, zap.String(logFieldPathConstant, event.Name), zap.String(logFieldOperationConstant, event.Op.String()))
			pendingCollection = time.After(watcher.debounce)
		case watchError, ok := <-fileSystemWatcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			return fmt.Errorf(watcherFailureErrorTemplateConstant, watchError)
		case <-pendingCollection:
			pendingCollection = nil

			next, nextError := watcher.collector.Collect(executionContext, root)
			if nextError != nil {
				if executionContext.Err() != nil {
					return nil
				}
				return nextError
			}

			followUp, registerError := watcher.register(registrations, root, next)
			if registerError != nil {
				return registerError
			}
			pendingCollection = followUp
			relevant = relevantPaths(root, next.WatchedFiles())

			if next.Equal(current) {
				watcher.logger.Debug(logMessageSnapshotUnchangedConstant, zap.String(logFieldRootConstant, root))
				current = next
				continue
			}
			current = next
			if callbackError := onSnapshot(current); callbackError != nil {
				return callbackError
			}
		}
	}
}

// register watches the directories snapshot depends on. When a directory was added, changes
// made inside it before registration went unseen, so the returned channel schedules a
// follow-up collection; otherwise it is nil.
func (watcher *Watcher) register(registrations *directoryRegistrations, root string, snapshot gitrepo.Snapshot) (<-chan time.Time, error) {
	added, registerError := registrations.update(watchedDirectories(root, snapshot.WatchedFiles()))
	if registerError != nil || !added {
		return nil, registerError
	}
	watcher.logger.Debug(logMessageDirectoriesAddedConstant, zap.String(logFieldRootConstant, root), zap.Strings(logFieldDirectoriesConstant, registrations.list()))
	return time.After(watcher.debounce), nil
}

// watchedDirectories returns the .git directory plus the parent of every watched file.
// With no watched files it returns only the .git directory, which holds HEAD, index and packed-refs.
// Git replaces files by renaming lock files, so directories are watched instead of files.
func watchedDirectories(root string, watchedFiles []string) []string {
	gitDirectory := filepath.Join(root, gitMetadataDirectoryNameConstant)
	directories := []string{gitDirectory}
	seen := map[string]struct{}{gitDirectory: {}}
	for _, watchedFile := range watchedFiles {
		directory := filepath.Dir(watchedFile)
		if _, duplicate := seen[directory]; duplicate {
			continue
		}
		seen[directory] = struct{}{}
		directories = append(directories, directory)
	}
	return directories
}

// relevantPaths lists the paths whose events trigger re-collection: the watched files plus
// the top-level metadata files that may appear later.
func relevantPaths(root string, watchedFiles []string) map[string]struct{} {
	gitDirectory := filepath.Join(root, gitMetadataDirectoryNameConstant)
	paths := map[string]struct{}{
		filepath.Join(gitDirectory, headFileNameConstant):       {},
		filepath.Join(gitDirectory, indexFileNameConstant):      {},
		filepath.Join(gitDirectory, packedRefsFileNameConstant): {},
	}
	for _, watchedFile := range watchedFiles {
		paths[filepath.Clean(watchedFile)] = struct{}{}
	}
	return paths
}
