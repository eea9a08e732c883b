package snapshotwatch

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"
)

type directoryWatcher interface {
	Add(name string) error
	Remove(name string) error
}

type directoryRegistrations struct {
	watcher     directoryWatcher
	logger      *zap.Logger
	directories map[string]struct{}
}

func newDirectoryRegistrations(watcher directoryWatcher, logger *zap.Logger) *directoryRegistrations {
	return &directoryRegistrations{watcher: watcher, logger: logger, directories: map[string]struct{}{}}
}

// update adds newly required directories and drops directories no longer needed. It reports
// whether any directory was added. Directories that do not exist yet are skipped.
func (registrations *directoryRegistrations) update(required []string) (bool, error) {
	added := false
	requiredSet := make(map[string]struct{}, len(required))
	for _, directory := range required {
		requiredSet[directory] = struct{}{}
		if _, registered := registrations.directories[directory]; registered {
			continue
		}
		if addError := registrations.watcher.Add(directory); addError != nil {
			if errors.Is(addError, fs.ErrNotExist) {
				continue
			}
			return added, fmt.Errorf(watchDirectoryErrorTemplateConstant, directory, addError)
		}
		registrations.directories[directory] = struct{}{}
		added = true
	}

	for directory := range registrations.directories {
		if _, stillRequired := requiredSet[directory]; stillRequired {
			continue
		}
		if removeError := registrations.watcher.Remove(directory); removeError != nil {
			registrations.logger.Debug(logMessageUnwatchFailedConstant, zap.String(logFieldPathConstant, directory), zap.Error(removeError))
		}
		delete(registrations.directories, directory)
	}
	return added, nil
}

func (registrations *directoryRegistrations) list() []string {
	directories := make([]string, 0, len(registrations.directories))
	for directory := range registrations.directories {
		directories = append(directories, directory)
	}
	sort.Strings(directories)
	return directories
}
