// Package pathutils expands user supplied paths before they reach git or the file system.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant     = "~"
	homeSlashPrefixConstant  = homeShortcutConstant + "/"
	homeNativePrefixConstant = homeShortcutConstant + string(os.PathSeparator)
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading "~" with the user's home directory. The home
// directory is looked up once, on first use.
type HomeExpander struct {
	lookupHomeDirectory HomeDirectoryProvider
	lookupOnce          sync.Once
	homeDirectory       string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom home directory lookup.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{lookupHomeDirectory: provider}
}

// Expand resolves "~", "~/rest" and the OS-native "~\rest" form. Other inputs, including
// "~user" and paths whose home directory cannot be determined, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil {
		return candidatePath
	}

	remainder, hasHomePrefix := splitHomePrefix(candidatePath)
	if !hasHomePrefix {
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	if len(remainder) == 0 {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, remainder)
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.lookupOnce.Do(func() {
		homeDirectory, lookupError := expander.lookupHomeDirectory()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}

func splitHomePrefix(candidatePath string) (string, bool) {
	if candidatePath == homeShortcutConstant {
		return "", true
	}
	for _, prefix := range []string{homeSlashPrefixConstant, homeNativePrefixConstant} {
		if remainder, found := strings.CutPrefix(candidatePath, prefix); found {
			return remainder, true
		}
	}
	return "", false
}
