// Package snapshotwatch re-collects repository snapshots when the git metadata files
// they depend on change, and reports each distinct snapshot.
package snapshotwatch
