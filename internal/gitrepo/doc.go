// Package gitrepo captures a point-in-time snapshot of a git repository.
//
// RepositoryLocator resolves any path inside a working tree to the repository
// root. Collector runs the fixed sequence of git queries against that root and
// assembles an immutable Snapshot together with the .git metadata files whose
// modification invalidates it. Every failure is reported as one of
// GitRunFailedError, CouldNotReadFileError or InvalidCommitCountError.
package gitrepo
