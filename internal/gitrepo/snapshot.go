package gitrepo

// SnapshotValues carries the fields used to construct a Snapshot.
type SnapshotValues struct {
	CommitHash   string
	Branch       string
	Dirty        bool
	CommitDate   string
	CommitCount  uint64
	WatchedFiles []string
}

// Snapshot is an immutable record of repository state at collection time.
type Snapshot struct {
	commitHash   string
	branch       string
	dirty        bool
	commitDate   string
	commitCount  uint64
	watchedFiles []string
}

// NewSnapshot builds a Snapshot, copying the watched file list.
func NewSnapshot(values SnapshotValues) Snapshot {
	return Snapshot{
		commitHash:   values.CommitHash,
		branch:       values.Branch,
		dirty:        values.Dirty,
		commitDate:   values.CommitDate,
		commitCount:  values.CommitCount,
		watchedFiles: append([]string{}, values.WatchedFiles...),
	}
}

// CommitHash returns the full hash of HEAD.
func (snapshot Snapshot) CommitHash() string {
	return snapshot.commitHash
}

// Branch returns the abbreviated ref name of HEAD, or "HEAD" when detached.
func (snapshot Snapshot) Branch() string {
	return snapshot.branch
}

// IsDirty reports whether the working tree had staged, modified or untracked changes.
func (snapshot Snapshot) IsDirty() bool {
	return snapshot.dirty
}

// CommitDate returns the committer date of HEAD exactly as git printed it.
func (snapshot Snapshot) CommitDate() string {
	return snapshot.commitDate
}

// CommitCount returns the number of commits reachable from HEAD.
func (snapshot Snapshot) CommitCount() uint64 {
	return snapshot.commitCount
}

// WatchedFiles returns a copy of the .git files whose modification invalidates the snapshot.
func (snapshot Snapshot) WatchedFiles() []string {
	return append([]string{}, snapshot.watchedFiles...)
}

// Values returns the snapshot fields as a mutable copy.
func (snapshot Snapshot) Values() SnapshotValues {
	return SnapshotValues{
		CommitHash:   snapshot.commitHash,
		Branch:       snapshot.branch,
		Dirty:        snapshot.dirty,
		CommitDate:   snapshot.commitDate,
		CommitCount:  snapshot.commitCount,
		WatchedFiles: snapshot.WatchedFiles(),
	}
}

// Equal compares repository state and ignores the watched file list.
func (snapshot Snapshot) Equal(other Snapshot) bool {
	return snapshot.commitHash == other.commitHash &&
		snapshot.branch == other.branch &&
		snapshot.dirty == other.dirty &&
		snapshot.commitDate == other.commitDate &&
		snapshot.commitCount == other.commitCount
}
