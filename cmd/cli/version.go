package cli

import (
	"context"
	"runtime/debug"
)

const (
	developmentVersionConstant  = "dev"
	develBuildVersionConstant   = "(devel)"
	vcsRevisionSettingConstant  = "vcs.revision"
	vcsModifiedSettingConstant  = "vcs.modified"
	vcsModifiedTrueConstant     = "true"
	dirtyVersionSuffixConstant  = "-dirty"
	shortRevisionLengthConstant = 12
)

// resolveBuildVersion reports the module version, falling back to the embedded VCS revision
// and finally to "dev" when no build metadata is available.
func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}

	moduleVersion := buildInformation.Main.Version
	if len(moduleVersion) > 0 && moduleVersion != develBuildVersionConstant {
		return moduleVersion
	}

	revision := ""
	modified := false
	for _, setting := range buildInformation.Settings {
		switch setting.Key {
		case vcsRevisionSettingConstant:
			revision = setting.Value
		case vcsModifiedSettingConstant:
			modified = setting.Value == vcsModifiedTrueConstant
		}
	}
	if len(revision) == 0 {
		return developmentVersionConstant
	}
	if len(revision) > shortRevisionLengthConstant {
		revision = revision[:shortRevisionLengthConstant]
	}
	if modified {
		revision += dirtyVersionSuffixConstant
	}
	return revision
}
